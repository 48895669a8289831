package telegram

import (
	"fmt"
	"strings"

	"github.com/m3rciful/moovbot/core/bot"

	tele "gopkg.in/telebot.v4"
)

// NormalizeUpdate converts a raw telebot update into one event of the
// normalized union. Updates of unsupported kinds return bot.ErrBadRequest.
func NormalizeUpdate(u tele.Update) (bot.Event, error) {
	switch {
	case u.Message != nil:
		m := u.Message
		return bot.MessageEvent{
			Chat:      normalizeChat(m.Chat),
			Sender:    normalizeUser(m.Sender),
			MessageID: m.ID,
			Text:      m.Text,
		}, nil

	case u.Callback != nil:
		cb := u.Callback
		ev := bot.CallbackEvent{
			Sender: normalizeUser(cb.Sender),
			Data:   strings.TrimPrefix(cb.Data, "\f"),
		}
		if cb.Message != nil {
			ev.Chat = normalizeChat(cb.Message.Chat)
			ev.MessageID = cb.Message.ID
		}
		return ev, nil

	case u.PollAnswer != nil:
		pa := u.PollAnswer
		return bot.PollAnswerEvent{
			PollID:    pa.PollID,
			Sender:    normalizeUser(pa.Sender),
			OptionIDs: append([]int(nil), pa.Options...),
		}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported update %d", bot.ErrBadRequest, u.ID)
	}
}

func normalizeChat(c *tele.Chat) bot.Chat {
	if c == nil {
		return bot.Chat{}
	}
	return bot.Chat{
		ID:       c.ID,
		Private:  c.Type == tele.ChatPrivate,
		Title:    c.Title,
		Username: c.Username,
	}
}

func normalizeUser(u *tele.User) bot.User {
	if u == nil {
		return bot.User{}
	}
	return bot.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
	}
}
