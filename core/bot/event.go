// Package bot defines the conversation engine boundary shared by all bots:
// the normalized inbound event union, the command/callback dispatcher, and
// the outbound transport contract. Domain packages consume these types and
// stay free of any Telegram library dependency.
package bot

import (
	"context"
	"errors"
)

// ErrBadRequest reports an event that could not be classified. Handlers must
// not have mutated any state when it is returned.
var ErrBadRequest = errors.New("bot: bad request")

// User identifies the acting user of an event.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// Chat identifies the chat an event originated from.
type Chat struct {
	ID       int64
	Private  bool
	Title    string
	Username string
}

// Event is one normalized inbound update. Exactly one concrete variant is
// delivered per invocation.
type Event interface {
	isEvent()
}

// MessageEvent is a typed text message, which may or may not be a command.
type MessageEvent struct {
	Chat      Chat
	Sender    User
	MessageID int
	Text      string
}

// CallbackEvent is an inline keyboard button press. MessageID addresses the
// message carrying the keyboard so handlers can edit it in place.
type CallbackEvent struct {
	Chat      Chat
	Sender    User
	MessageID int
	Data      string
}

// PollAnswerEvent is a user's (possibly retracted) answer to a poll.
// An empty OptionIDs slice means the answer was withdrawn.
type PollAnswerEvent struct {
	PollID    string
	Sender    User
	OptionIDs []int
}

func (MessageEvent) isEvent()    {}
func (CallbackEvent) isEvent()   {}
func (PollAnswerEvent) isEvent() {}

// Handler consumes one normalized event per invocation.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}
