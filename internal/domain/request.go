package domain

import "errors"

// Request is one incoming user message, scoped to a single handler invocation.
type Request struct {
	// UserID is the Telegram ID of the sender.
	UserID int64

	// ChatID is the conversation every reply is addressed to.
	ChatID int64

	// MessageID of the incoming message.
	MessageID int

	// Text is the trimmed message text.
	Text string

	// Quality is the sender's preference, resolved once on receipt.
	Quality Quality
}

var (
	// ErrInvalidLink is returned when a message is not an acceptable link.
	ErrInvalidLink = errors.New("invalid link")

	// ErrEmptyThread is returned when thread expansion yields nothing.
	ErrEmptyThread = errors.New("no videos found in thread")

	// ErrNotAuthorized is returned when the sender is not a member of the required channel.
	ErrNotAuthorized = errors.New("not a member of the required channel")
)
