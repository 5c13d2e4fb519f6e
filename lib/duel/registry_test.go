package duel

import (
	"context"
	"testing"
	"time"

	"arena/lib/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryMatch(t *testing.T) *Match {
	t.Helper()
	m, err := NewMatch("channel-1", twoPlayers(), 3, VariantNormal, testDex(), &fakeMessenger{}, testSettings(), nil)
	require.NoError(t, err)
	return m
}

func TestRegistryOneMatchPerChannel(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()

	first := registryMatch(t)
	require.NoError(t, registry.Register(ctx, first))
	assert.Equal(t, 1, registry.ActiveCount())

	second := registryMatch(t)
	assert.ErrorIs(t, registry.Register(ctx, second), ErrChannelBusy)

	got, ok := registry.Active("channel-1")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistryRoutesEventsToOwningMatch(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	m := registryMatch(t)
	require.NoError(t, registry.Register(ctx, m))

	registry.HandleEvent(ctx, &platform.Event{
		Kind:      platform.EventReactionAdded,
		ChannelID: "channel-1",
		ActorID:   "p1",
		Emoji:     platform.ReadyEmoji,
	})

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.participants[0].ready
	}, 2*time.Second, time.Millisecond)

	// Events for unknown channels are dropped, not queued.
	registry.HandleEvent(ctx, &platform.Event{
		Kind:      platform.EventReactionAdded,
		ChannelID: "channel-unknown",
		ActorID:   "p1",
		Emoji:     platform.ReadyEmoji,
	})
}

func TestRegistryComplete(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	m := registryMatch(t)
	require.NoError(t, registry.Register(ctx, m))

	require.NoError(t, registry.Complete("channel-1"))
	assert.Equal(t, 0, registry.ActiveCount())

	_, active := registry.Active("channel-1")
	assert.False(t, active)
	got, done := registry.Completed("channel-1")
	require.True(t, done)
	assert.Same(t, m, got)

	// The channel is free for a new duel.
	assert.NoError(t, registry.Register(ctx, registryMatch(t)))

	assert.ErrorIs(t, registry.Complete("channel-2"), ErrUnknownMatch)
}

func TestRegistryEvictIdle(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()

	stale := registryMatch(t)
	stale.SetClock(func() time.Time { return time.Now().Add(-time.Hour) })
	stale.mu.Lock()
	stale.lastActivity = time.Now().Add(-time.Hour)
	stale.mu.Unlock()
	require.NoError(t, registry.Register(ctx, stale))

	fresh, err := NewMatch("channel-2", twoPlayers(), 3, VariantNormal, testDex(), &fakeMessenger{}, testSettings(), nil)
	require.NoError(t, err)
	require.NoError(t, registry.Register(ctx, fresh))

	evicted := registry.EvictIdle(30 * time.Minute)
	assert.Equal(t, []string{"channel-1"}, evicted)
	assert.Equal(t, 1, registry.ActiveCount())
	_, ok := registry.Active("channel-2")
	assert.True(t, ok)
}
