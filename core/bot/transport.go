package bot

import (
	"context"

	"github.com/m3rciful/moovbot/core/telegram/keyboard"
)

// ParseModeHTML asks the transport to render HTML tags in message text.
const ParseModeHTML = "HTML"

// MenuCommand is one entry of the command menu shown by Telegram clients.
type MenuCommand struct {
	Text        string
	Description string
}

// SendOptions carries per-message presentation settings.
type SendOptions struct {
	ParseMode string
	Keyboard  keyboard.Markup
}

// PollOptions carries poll creation settings.
type PollOptions struct {
	Anonymous       bool
	MultipleAnswers bool
}

// Transport is the outbound messaging collaborator. Implementations wrap a
// concrete Telegram client; engines depend on this interface only.
type Transport interface {
	// Send posts a new message and returns its message id.
	Send(ctx context.Context, chatID int64, text string, opts *SendOptions) (int, error)

	// Edit replaces the text and keyboard of an existing message.
	Edit(ctx context.Context, chatID int64, messageID int, text string, opts *SendOptions) (int, error)

	// SendPoll creates a native poll and returns its poll id and the id of
	// the message carrying it.
	SendPoll(ctx context.Context, chatID int64, question string, options []string, opts PollOptions) (pollID string, messageID int, err error)

	// Delete removes a message from a chat.
	Delete(ctx context.Context, chatID int64, messageID int) error

	// Administrators returns the set of admin user ids of a group chat.
	Administrators(ctx context.Context, chatID int64) (map[int64]bool, error)
}
