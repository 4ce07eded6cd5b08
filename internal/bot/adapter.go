// Package bot is the conversational front-end for the lead pipeline. It
// connects to a chat platform through an Adapter, drives the add-lead dialog
// per conversation, and exposes the lead actions (open, draft, simulated
// send) as message buttons.
package bot

import (
	"context"
	"time"
)

// Adapter is the interface platform-specific implementations must satisfy.
// Each adapter handles connection management and message I/O for a single
// chat platform.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Listen returns a channel of inbound messages from the platform.
	// The channel is closed when the context is cancelled or the adapter
	// is closed. Listen must only be called after Connect.
	Listen(ctx context.Context) (<-chan InboundMessage, error)

	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg OutboundMessage) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// InboundMessage represents a user event received from the chat platform:
// either plain text or a button press carrying action data.
type InboundMessage struct {
	Platform  string    // e.g. "discord", "slack"
	ChatID    string    // platform-specific conversation identifier
	MessageID string    // platform-specific id of the message (for edits)
	UserID    string    // platform-specific user identifier
	UserName  string    // human-readable username
	Text      string    // raw message text (empty for button presses)
	Action    string    // button action data, e.g. "lead:3:open" (empty for text)
	Timestamp time.Time // when the event occurred
}

// OutboundMessage represents a message to be sent to the chat platform.
// An empty ChatID targets the adapter's configured default channel.
type OutboundMessage struct {
	ChatID           string     // target conversation
	ReplaceMessageID string     // when set, edit this message instead of posting
	Text             string     // message text
	Buttons          [][]Button // button rows rendered under the message
}

// Button is a single pressable element. Its Action value comes back as
// InboundMessage.Action when pressed.
type Button struct {
	Label  string
	Action string
}

// BotUserIDer is an optional interface that adapters can implement to
// expose the bot's own user ID. This enables self-message filtering.
type BotUserIDer interface {
	BotUserID() string
}
