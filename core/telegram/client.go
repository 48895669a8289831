package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m3rciful/moovbot/core/bot"
	"github.com/m3rciful/moovbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Client implements bot.Transport over a telebot instance.
type Client struct {
	bot *tele.Bot
}

// NewClient wraps a constructed telebot bot.
func NewClient(b *tele.Bot) *Client {
	return &Client{bot: b}
}

var _ bot.Transport = (*Client)(nil)

// Send posts a new message to the chat and returns its message id.
func (c *Client) Send(ctx context.Context, chatID int64, text string, opts *bot.SendOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg, err := c.bot.Send(tele.ChatID(chatID), text, sendOptions(opts))
	if err != nil {
		return 0, fmt.Errorf("telegram: send to %d: %w", chatID, err)
	}
	return msg.ID, nil
}

// Edit replaces the text and keyboard of an existing message.
func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, text string, opts *bot.SendOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ref := editable(chatID, messageID)
	msg, err := c.bot.Edit(ref, text, sendOptions(opts))
	if err != nil {
		return 0, fmt.Errorf("telegram: edit %d in %d: %w", messageID, chatID, err)
	}
	return msg.ID, nil
}

// SendPoll creates a regular non-anonymous poll in the chat.
func (c *Client) SendPoll(ctx context.Context, chatID int64, question string, options []string, opts bot.PollOptions) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	poll := &tele.Poll{
		Type:            tele.PollRegular,
		Question:        question,
		Anonymous:       opts.Anonymous,
		MultipleAnswers: opts.MultipleAnswers,
	}
	poll.AddOptions(options...)

	msg, err := c.bot.Send(tele.ChatID(chatID), poll)
	if err != nil {
		return "", 0, fmt.Errorf("telegram: send poll to %d: %w", chatID, err)
	}
	if msg.Poll == nil {
		return "", msg.ID, fmt.Errorf("telegram: poll message %d has no poll payload", msg.ID)
	}
	return msg.Poll.ID, msg.ID, nil
}

// Delete removes a message from the chat.
func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.bot.Delete(editable(chatID, messageID)); err != nil {
		return fmt.Errorf("telegram: delete %d in %d: %w", messageID, chatID, err)
	}
	return nil
}

// Administrators returns the admin user ids of a group chat.
func (c *Client) Administrators(ctx context.Context, chatID int64) (map[int64]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	members, err := c.bot.AdminsOf(&tele.Chat{ID: chatID})
	if err != nil {
		return nil, fmt.Errorf("telegram: admins of %d: %w", chatID, err)
	}
	admins := make(map[int64]bool, len(members))
	for _, m := range members {
		if m.User != nil {
			admins[m.User.ID] = true
		}
	}
	return admins, nil
}

func sendOptions(opts *bot.SendOptions) *tele.SendOptions {
	out := &tele.SendOptions{}
	if opts == nil {
		return out
	}
	out.ParseMode = tele.ParseMode(opts.ParseMode)
	out.ReplyMarkup = keyboard.ToTelebot(opts.Keyboard)
	return out
}

func editable(chatID int64, messageID int) tele.Editable {
	return &tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
}
