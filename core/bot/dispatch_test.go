package bot

import (
	"context"
	"errors"
	"testing"
)

func TestDispatchCommandAnchored(t *testing.T) {
	d := NewDispatcher("testbot")
	var got string
	d.Command("play", func(_ context.Context, ev MessageEvent) error {
		got = "play:" + ev.Text
		return nil
	})
	d.Text(func(_ context.Context, ev MessageEvent) error {
		got = "text:" + ev.Text
		return nil
	})

	cases := []struct {
		text string
		want string
	}{
		{"/play", "play:/play"},
		{"/play@testbot", "play:/play@testbot"},
		{"/playit", "text:/playit"},
		{"/play@otherbot", "text:/play@otherbot"},
		{"/Play", "text:/Play"},
		{"hello", "text:hello"},
	}
	for _, tc := range cases {
		got = ""
		if err := d.Dispatch(context.Background(), MessageEvent{Text: tc.text}); err != nil {
			t.Fatalf("Dispatch(%q): %v", tc.text, err)
		}
		if got != tc.want {
			t.Errorf("Dispatch(%q) routed to %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDispatchCallbackPriority(t *testing.T) {
	d := NewDispatcher("")
	var got string
	d.Callback("list_remove", func(_ context.Context, _ CallbackEvent, _ []string) error {
		got = "literal"
		return nil
	})
	d.CallbackPattern(`^remove_(\d+)$`, func(_ context.Context, _ CallbackEvent, args []string) error {
		got = "pattern:" + args[0]
		return nil
	})

	if err := d.Dispatch(context.Background(), CallbackEvent{Data: "list_remove"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != "literal" {
		t.Errorf("literal token routed to %q", got)
	}

	if err := d.Dispatch(context.Background(), CallbackEvent{Data: "remove_2"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != "pattern:2" {
		t.Errorf("pattern token routed to %q", got)
	}
}

func TestDispatchUnroutableCallback(t *testing.T) {
	d := NewDispatcher("")
	d.Callback("known", func(_ context.Context, _ CallbackEvent, _ []string) error { return nil })

	err := d.Dispatch(context.Background(), CallbackEvent{Data: "unknown"})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestDispatchNoTextHandler(t *testing.T) {
	d := NewDispatcher("")
	if err := d.Dispatch(context.Background(), MessageEvent{Text: "hello"}); err != nil {
		t.Fatalf("plain text without handler should be dropped, got %v", err)
	}
}
