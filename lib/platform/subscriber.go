package platform

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"arena/lib/services"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNilHandler = errors.New("event handler cannot be nil")
)

var (
	GatewayEventChannel = "gateway:event:*"
)

// Subscriber listens for inbound platform events published by the chat
// gateway and hands them to the event handler.
type Subscriber struct {
	handler   EventHandler
	channel   string
	pubsub    *redis.PubSub
	mu        sync.Mutex
	is_active bool
}

// NewSubscriber creates a new subscriber bound to an event handler
func NewSubscriber(handler EventHandler) (*Subscriber, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	return &Subscriber{
		handler:   handler,
		channel:   GatewayEventChannel,
		is_active: false,
	}, nil
}

// Subscribe starts listening for gateway events
func (s *Subscriber) Subscribe(ctx context.Context, cache *services.Cache) error {
	s.mu.Lock()
	if s.is_active {
		s.mu.Unlock()
		return errors.New("subscriber is already active")
	}

	slog.Debug("Subscribing to the gateway event channel", "channel", s.channel)
	s.pubsub = cache.Db.PSubscribe(ctx, s.channel)
	s.is_active = true
	s.mu.Unlock()

	// Start message processing in a separate goroutine
	go func() {
		ch := s.pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					slog.Info("pubsub channel closed")
					return
				}

				channel_id := strings.TrimPrefix(msg.Channel, "gateway:event:")

				if err := s.processMessage(ctx, msg.Payload, channel_id); err != nil {
					slog.Error("failed to process gateway event",
						"error", err,
						"channel", msg.Channel)
					continue
				}

			case <-ctx.Done():
				slog.Info("context cancelled, stopping subscriber")
				s.UnSubscribe(context.Background())
				return
			}
		}
	}()

	return nil
}

// UnSubscribe stops listening for gateway events
func (s *Subscriber) UnSubscribe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.is_active {
		return nil
	}

	slog.Debug("Unsubscribing from the gateway event channel", "channel", s.channel)
	if err := s.pubsub.PUnsubscribe(ctx, s.channel); err != nil {
		return err
	}

	if err := s.pubsub.Close(); err != nil {
		return err
	}

	s.is_active = false
	return nil
}

func (s *Subscriber) processMessage(ctx context.Context, message string, channel_id string) error {
	if message == "" {
		return errors.New("empty event received")
	}

	var event Event
	if err := json.Unmarshal([]byte(message), &event); err != nil {
		return err
	}
	event.ChannelID = channel_id

	s.handler.HandleEvent(ctx, &event)
	return nil
}
