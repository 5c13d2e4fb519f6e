package duel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"arena/lib/platform"
)

var (
	ErrChannelBusy  = errors.New("a duel is already running in this channel")
	ErrUnknownMatch = errors.New("no duel registered for this channel")
)

const eventQueueSize = 64

// Registry tracks every live match keyed by channel ID. Each match gets its
// own event queue drained by a single goroutine, so events within one match
// are processed in arrival order while separate matches run concurrently.
type Registry struct {
	mu        sync.RWMutex
	active    map[string]*Match
	completed map[string]*Match
	queues    map[string]chan *platform.Event
}

func NewRegistry() *Registry {
	return &Registry{
		active:    make(map[string]*Match),
		completed: make(map[string]*Match),
		queues:    make(map[string]chan *platform.Event),
	}
}

// Register claims the channel for a match and starts its event queue. One
// channel hosts at most one active match.
func (r *Registry) Register(ctx context.Context, m *Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.active[m.ChannelID]; busy {
		return ErrChannelBusy
	}

	queue := make(chan *platform.Event, eventQueueSize)
	r.active[m.ChannelID] = m
	r.queues[m.ChannelID] = queue

	go func() {
		for event := range queue {
			m.Dispatch(ctx, event)
		}
	}()

	return nil
}

// HandleEvent routes an inbound gateway event to the match owning its
// channel. Events for channels without a live match are dropped.
func (r *Registry) HandleEvent(ctx context.Context, event *platform.Event) {
	r.mu.RLock()
	queue, ok := r.queues[event.ChannelID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case queue <- event:
	default:
		slog.Warn("Registry : event queue full, dropping event",
			"channel_id", event.ChannelID, "kind", event.Kind)
	}
}

// Complete moves a finished match out of the active set and shuts down its
// event queue. Late events for the channel are dropped from then on.
func (r *Registry) Complete(channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.active[channelID]
	if !ok {
		return ErrUnknownMatch
	}

	delete(r.active, channelID)
	r.completed[channelID] = m

	if queue, ok := r.queues[channelID]; ok {
		close(queue)
		delete(r.queues, channelID)
	}
	return nil
}

// Active returns the live match on a channel, if any.
func (r *Registry) Active(channelID string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.active[channelID]
	return m, ok
}

// Completed returns the finished match that ran on a channel, if any.
func (r *Registry) Completed(channelID string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.completed[channelID]
	return m, ok
}

func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// EvictIdle abandons active matches with no inbound event for longer than
// idleAfter. Off by default; the server only runs it when explicitly
// configured, since matches otherwise have no timeout.
func (r *Registry) EvictIdle(idleAfter time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-idleAfter)
	var evicted []string
	for channel_id, m := range r.active {
		if m.LastActivity().Before(cutoff) {
			delete(r.active, channel_id)
			if queue, ok := r.queues[channel_id]; ok {
				close(queue)
				delete(r.queues, channel_id)
			}
			evicted = append(evicted, channel_id)
			slog.Info("Registry : evicted idle duel", "channel_id", channel_id, "match_id", m.ID)
		}
	}
	return evicted
}
