package platform

import "context"

// Messenger is the capability set the duel core requires from the chat
// platform. Calls block until the gateway bridge has accepted the operation,
// but every operation is cosmetic from the core's point of view: a failure is
// logged by the implementation and must never halt match logic.
type Messenger interface {
	// CreateMatchChannel provisions an isolated channel readable and writable
	// only by the given participants and returns its ID.
	CreateMatchChannel(ctx context.Context, name string, participantIDs []string) (string, error)

	// SendMessage posts to a channel and returns the new message ID.
	SendMessage(ctx context.Context, channelID, content string) (string, error)

	EditMessage(ctx context.Context, channelID, messageID, content string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// AttachReadyCheck posts a message carrying a reaction-based acknowledgment
	// control and returns the message ID acknowledgments will reference.
	AttachReadyCheck(ctx context.Context, channelID, content string) (string, error)

	// Whisper sends a notice visible only to one participant. Ephemeral
	// delivery is best-effort: when the platform has no private channel the
	// gateway falls back to an auto-deleting public mention.
	Whisper(ctx context.Context, channelID, participantID, content string) error

	// UploadImage attaches a rendered PNG to a channel message.
	UploadImage(ctx context.Context, channelID, caption, filename string, png []byte) error

	// SetChannelWritable flips send permission for the participants while
	// keeping the channel readable.
	SetChannelWritable(ctx context.Context, channelID string, participantIDs []string, writable bool) error

	RenameChannel(ctx context.Context, channelID, name string) error
}

// ReadyEmoji is the acknowledgment reaction the gateway listens for.
const ReadyEmoji = "✅"
