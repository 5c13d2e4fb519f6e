package platform

import "context"

type EventKind string

const (
	EventReactionAdded EventKind = "reaction_added"
	EventMessagePosted EventKind = "message_posted"
)

// Event is one inbound platform occurrence, as published by the gateway on
// gateway:event:<channel_id>.
type Event struct {
	Kind      EventKind `json:"kind"`
	ChannelID string    `json:"channel_id"`
	ActorID   string    `json:"actor_id"`
	MessageID string    `json:"message_id,omitempty"`
	Emoji     string    `json:"emoji,omitempty"`
	Content   string    `json:"content,omitempty"`
}

// EventHandler consumes inbound events. The duel registry implements it.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event)
}
