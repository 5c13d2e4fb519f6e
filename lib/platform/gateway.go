package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"arena/lib/services"

	"github.com/google/uuid"
)

var (
	ErrNilCache = errors.New("cache cannot be nil")
)

// ControlChannel carries operations that are not yet bound to a channel.
const ControlChannel = "control"

// WhisperDeleteAfter is how long the public fallback notice survives, in seconds.
const WhisperDeleteAfter = 10

type OpKind string

const (
	OpCreateChannel  OpKind = "create_channel"
	OpSendMessage    OpKind = "send_message"
	OpEditMessage    OpKind = "edit_message"
	OpDeleteMessage  OpKind = "delete_message"
	OpReadyCheck     OpKind = "ready_check"
	OpWhisper        OpKind = "whisper"
	OpUploadImage    OpKind = "upload_image"
	OpSetPermissions OpKind = "set_permissions"
	OpRenameChannel  OpKind = "rename_channel"
)

// Op is the outbound envelope published to gateway:op:<channel_id>. IDs for
// channels and messages are minted here so the core never waits on a
// round-trip; the gateway maps them onto the platform's own identifiers.
type Op struct {
	ID           string   `json:"id"`
	Kind         OpKind   `json:"kind"`
	ChannelID    string   `json:"channel_id,omitempty"`
	MessageID    string   `json:"message_id,omitempty"`
	Content      string   `json:"content,omitempty"`
	Name         string   `json:"name,omitempty"`
	Participants []string `json:"participants,omitempty"`
	TargetID     string   `json:"target_id,omitempty"`
	Emoji        string   `json:"emoji,omitempty"`
	DeleteAfter  int      `json:"delete_after,omitempty"`
	Filename     string   `json:"filename,omitempty"`
	Image        []byte   `json:"image,omitempty"`
	Writable     bool     `json:"writable,omitempty"`
}

// RedisGateway bridges the core to the chat gateway process over Redis
// pub/sub. It implements Messenger.
type RedisGateway struct {
	cache *services.Cache
}

func NewRedisGateway(cache *services.Cache) (*RedisGateway, error) {
	if cache == nil || cache.Db == nil {
		return nil, ErrNilCache
	}
	return &RedisGateway{cache: cache}, nil
}

func (g *RedisGateway) publish(ctx context.Context, op *Op) error {
	op.ID = uuid.New().String()

	target := op.ChannelID
	if target == "" {
		target = ControlChannel
	}

	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway op: %w", err)
	}

	channel := fmt.Sprintf("gateway:op:%s", target)
	if err := g.cache.Db.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish gateway op: %w", err)
	}
	return nil
}

// bestEffort publishes an op and downgrades any failure to a log line.
// Cosmetic platform operations must not block the selection pipeline.
func (g *RedisGateway) bestEffort(ctx context.Context, op *Op) {
	if err := g.publish(ctx, op); err != nil {
		slog.Warn("Gateway : dropped platform operation", "kind", op.Kind, "channel_id", op.ChannelID, "error", err)
	}
}

func (g *RedisGateway) CreateMatchChannel(ctx context.Context, name string, participantIDs []string) (string, error) {
	channel_id := uuid.New().String()
	err := g.publish(ctx, &Op{
		Kind:         OpCreateChannel,
		Name:         name,
		Participants: participantIDs,
		// The gateway binds this ID to the real platform channel.
		TargetID: channel_id,
	})
	if err != nil {
		return "", err
	}
	return channel_id, nil
}

func (g *RedisGateway) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	message_id := uuid.New().String()
	g.bestEffort(ctx, &Op{
		Kind:      OpSendMessage,
		ChannelID: channelID,
		MessageID: message_id,
		Content:   content,
	})
	return message_id, nil
}

func (g *RedisGateway) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	g.bestEffort(ctx, &Op{
		Kind:      OpEditMessage,
		ChannelID: channelID,
		MessageID: messageID,
		Content:   content,
	})
	return nil
}

func (g *RedisGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	g.bestEffort(ctx, &Op{
		Kind:      OpDeleteMessage,
		ChannelID: channelID,
		MessageID: messageID,
	})
	return nil
}

func (g *RedisGateway) AttachReadyCheck(ctx context.Context, channelID, content string) (string, error) {
	message_id := uuid.New().String()
	g.bestEffort(ctx, &Op{
		Kind:      OpReadyCheck,
		ChannelID: channelID,
		MessageID: message_id,
		Content:   content,
		Emoji:     ReadyEmoji,
	})
	return message_id, nil
}

func (g *RedisGateway) Whisper(ctx context.Context, channelID, participantID, content string) error {
	g.bestEffort(ctx, &Op{
		Kind:      OpWhisper,
		ChannelID: channelID,
		TargetID:  participantID,
		Content:   content,
		// Fallback when the platform cannot deliver privately.
		DeleteAfter: WhisperDeleteAfter,
	})
	return nil
}

func (g *RedisGateway) UploadImage(ctx context.Context, channelID, caption, filename string, png []byte) error {
	g.bestEffort(ctx, &Op{
		Kind:      OpUploadImage,
		ChannelID: channelID,
		Content:   caption,
		Filename:  filename,
		Image:     png,
	})
	return nil
}

func (g *RedisGateway) SetChannelWritable(ctx context.Context, channelID string, participantIDs []string, writable bool) error {
	g.bestEffort(ctx, &Op{
		Kind:         OpSetPermissions,
		ChannelID:    channelID,
		Participants: participantIDs,
		Writable:     writable,
	})
	return nil
}

func (g *RedisGateway) RenameChannel(ctx context.Context, channelID, name string) error {
	g.bestEffort(ctx, &Op{
		Kind:      OpRenameChannel,
		ChannelID: channelID,
		Name:      name,
	})
	return nil
}
