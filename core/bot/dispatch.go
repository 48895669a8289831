package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// MessageFunc handles a text message event.
type MessageFunc func(ctx context.Context, ev MessageEvent) error

// CallbackFunc handles a callback event. For pattern routes, args holds the
// capture groups of the matched expression; for literal routes it is nil.
type CallbackFunc func(ctx context.Context, ev CallbackEvent, args []string) error

// PollAnswerFunc handles a poll answer event.
type PollAnswerFunc func(ctx context.Context, ev PollAnswerEvent) error

type commandRoute struct {
	name string
	re   *regexp.Regexp
	fn   MessageFunc
}

type callbackRoute struct {
	literal string
	re      *regexp.Regexp
	fn      CallbackFunc
}

// Dispatcher classifies normalized events and routes them to registered
// handlers. Matching is case-sensitive and anchored: /play never matches a
// route registered for /playit. Routes are tried in registration order and
// the first match wins; for callbacks, all literal routes are tried before
// any pattern route.
type Dispatcher struct {
	botName    string
	commands   []commandRoute
	callbacks  []callbackRoute
	text       MessageFunc
	pollAnswer PollAnswerFunc
}

// NewDispatcher builds an empty dispatcher. botName, when non-empty, lets
// commands match the /cmd@botname form used in group chats.
func NewDispatcher(botName string) *Dispatcher {
	return &Dispatcher{botName: strings.TrimPrefix(botName, "@")}
}

// Command registers a handler for /name, optionally suffixed with @botname.
func (d *Dispatcher) Command(name string, fn MessageFunc) {
	expr := "^/" + regexp.QuoteMeta(name)
	if d.botName != "" {
		expr += "(?:@" + regexp.QuoteMeta(d.botName) + ")?"
	}
	expr += "$"
	d.commands = append(d.commands, commandRoute{
		name: name,
		re:   regexp.MustCompile(expr),
		fn:   fn,
	})
}

// Callback registers a handler for an exact callback token.
func (d *Dispatcher) Callback(literal string, fn CallbackFunc) {
	d.callbacks = append(d.callbacks, callbackRoute{literal: literal, fn: fn})
}

// CallbackPattern registers a handler for callback tokens matching expr.
// The expression should be anchored; capture groups are passed to fn.
func (d *Dispatcher) CallbackPattern(expr string, fn CallbackFunc) {
	d.callbacks = append(d.callbacks, callbackRoute{
		re: regexp.MustCompile(expr),
		fn: fn,
	})
}

// Text registers the fallback handler for messages that match no command.
func (d *Dispatcher) Text(fn MessageFunc) {
	d.text = fn
}

// PollAnswer registers the handler for poll answer events.
func (d *Dispatcher) PollAnswer(fn PollAnswerFunc) {
	d.pollAnswer = fn
}

// Dispatch routes one event. Unroutable events return ErrBadRequest without
// side effects; an event whose route simply has no registered handler is
// dropped silently.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case MessageEvent:
		return d.dispatchMessage(ctx, e)
	case CallbackEvent:
		return d.dispatchCallback(ctx, e)
	case PollAnswerEvent:
		if d.pollAnswer == nil {
			return nil
		}
		return d.pollAnswer(ctx, e)
	default:
		return fmt.Errorf("%w: unknown event %T", ErrBadRequest, ev)
	}
}

func (d *Dispatcher) dispatchMessage(ctx context.Context, ev MessageEvent) error {
	text := strings.TrimSpace(ev.Text)
	if strings.HasPrefix(text, "/") {
		for _, r := range d.commands {
			if r.re.MatchString(text) {
				return r.fn(ctx, ev)
			}
		}
	}
	if d.text == nil {
		return nil
	}
	return d.text(ctx, ev)
}

func (d *Dispatcher) dispatchCallback(ctx context.Context, ev CallbackEvent) error {
	data := strings.TrimSpace(ev.Data)
	for _, r := range d.callbacks {
		if r.re == nil && r.literal == data {
			return r.fn(ctx, ev, nil)
		}
	}
	for _, r := range d.callbacks {
		if r.re == nil {
			continue
		}
		if m := r.re.FindStringSubmatch(data); m != nil {
			return r.fn(ctx, ev, m[1:])
		}
	}
	return fmt.Errorf("%w: unroutable callback %q", ErrBadRequest, data)
}
