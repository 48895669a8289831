package telegram

import (
	"errors"
	"testing"

	"github.com/m3rciful/moovbot/core/bot"

	tele "gopkg.in/telebot.v4"
)

func TestNormalizeUpdateMessage(t *testing.T) {
	u := tele.Update{
		ID: 10,
		Message: &tele.Message{
			Text:   "/getList",
			Chat:   &tele.Chat{ID: 55, Type: tele.ChatPrivate},
			Sender: &tele.User{ID: 7, FirstName: "Ann", Username: "ann"},
		},
	}
	ev, err := NormalizeUpdate(u)
	if err != nil {
		t.Fatalf("NormalizeUpdate: %v", err)
	}
	msg, ok := ev.(bot.MessageEvent)
	if !ok {
		t.Fatalf("event type %T, want MessageEvent", ev)
	}
	if msg.Text != "/getList" || msg.Chat.ID != 55 || !msg.Chat.Private || msg.Sender.ID != 7 {
		t.Errorf("unexpected event: %+v", msg)
	}
}

func TestNormalizeUpdateCallbackStripsPrefix(t *testing.T) {
	u := tele.Update{
		ID: 11,
		Callback: &tele.Callback{
			Data:    "\flist_add",
			Sender:  &tele.User{ID: 7},
			Message: &tele.Message{ID: 33, Chat: &tele.Chat{ID: -100, Type: tele.ChatGroup}},
		},
	}
	ev, err := NormalizeUpdate(u)
	if err != nil {
		t.Fatalf("NormalizeUpdate: %v", err)
	}
	cb, ok := ev.(bot.CallbackEvent)
	if !ok {
		t.Fatalf("event type %T, want CallbackEvent", ev)
	}
	if cb.Data != "list_add" {
		t.Errorf("Data = %q, want list_add", cb.Data)
	}
	if cb.MessageID != 33 || cb.Chat.ID != -100 || cb.Chat.Private {
		t.Errorf("unexpected event: %+v", cb)
	}
}

func TestNormalizeUpdatePollAnswer(t *testing.T) {
	u := tele.Update{
		ID: 12,
		PollAnswer: &tele.PollAnswer{
			PollID:  "poll-1",
			Sender:  &tele.User{ID: 9},
			Options: []int{0},
		},
	}
	ev, err := NormalizeUpdate(u)
	if err != nil {
		t.Fatalf("NormalizeUpdate: %v", err)
	}
	pa, ok := ev.(bot.PollAnswerEvent)
	if !ok {
		t.Fatalf("event type %T, want PollAnswerEvent", ev)
	}
	if pa.PollID != "poll-1" || pa.Sender.ID != 9 || len(pa.OptionIDs) != 1 || pa.OptionIDs[0] != 0 {
		t.Errorf("unexpected event: %+v", pa)
	}
}

func TestNormalizeUpdateUnsupported(t *testing.T) {
	_, err := NormalizeUpdate(tele.Update{ID: 13})
	if !errors.Is(err, bot.ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}
