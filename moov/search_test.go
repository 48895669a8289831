package moov

import (
	"context"
	"strings"
	"testing"

	"github.com/m3rciful/moovbot/moov/streamsearch"
)

type fakeSearcher struct {
	results []streamsearch.Result
	details map[int64]*streamsearch.Details
}

func (f *fakeSearcher) Search(_ context.Context, _ string) ([]streamsearch.Result, error) {
	return f.results, nil
}

func (f *fakeSearcher) Details(_ context.Context, id int64) (*streamsearch.Details, error) {
	return f.details[id], nil
}

func newSearchEngine(tr *fakeTransport, st Store, s Searcher) *Engine {
	return NewEngine(Config{
		BotName:   "moovbot",
		Limits:    Limits{MaxMovies: 3, MaxTitleLength: 100, MaxVoteOptions: 10},
		Transport: tr,
		Store:     st,
		Searcher:  s,
	})
}

func TestSearchFlow(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	searcher := &fakeSearcher{
		results: []streamsearch.Result{
			{ID: 3657, Title: "Interstellar", Info: "2014"},
			{ID: 512, Title: "The Prestige", Info: "2006"},
		},
		details: map[int64]*streamsearch.Details{
			3657: {ID: 3657, Title: "Interstellar", Rating: "8.6", Description: "Space."},
		},
	}
	e := newSearchEngine(tr, st, searcher)

	if err := e.Handle(ctx, privateMessage(7, "/search")); err != nil {
		t.Fatalf("search: %v", err)
	}
	prompt := tr.last(t)
	if prompt.Text != msgSearchPrompt {
		t.Errorf("prompt = %q", prompt.Text)
	}
	rec, _, _ := e.states.Chat(ctx, 7)
	if rec.WaitForStreamingInput != prompt.MessageID {
		t.Errorf("pending flag = %d, want %d", rec.WaitForStreamingInput, prompt.MessageID)
	}

	if err := e.Handle(ctx, privateMessage(7, "interstellar")); err != nil {
		t.Fatalf("query: %v", err)
	}
	listing := tr.last(t)
	if !listing.Edited || listing.MessageID != prompt.MessageID {
		t.Errorf("results should edit the prompt message, got %+v", listing)
	}
	if len(listing.Buttons) != 2 || listing.Buttons[0] != "3657" || listing.Buttons[1] != "512" {
		t.Errorf("result buttons = %v", listing.Buttons)
	}
	rec, _, _ = e.states.Chat(ctx, 7)
	if rec.WaitForStreamingInput != 0 {
		t.Errorf("pending flag not cleared: %d", rec.WaitForStreamingInput)
	}

	if err := e.Handle(ctx, callback(7, listing.MessageID, "3657")); err != nil {
		t.Fatalf("details: %v", err)
	}
	detail := tr.last(t)
	if !strings.Contains(detail.Text, "Interstellar") || !strings.Contains(detail.Text, "8.6") {
		t.Errorf("detail text = %q", detail.Text)
	}
}

func TestSearchNoResults(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	e := newSearchEngine(tr, st, &fakeSearcher{})

	if err := e.Handle(ctx, privateMessage(7, "/search")); err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := e.Handle(ctx, privateMessage(7, "nothing here")); err != nil {
		t.Fatalf("query: %v", err)
	}
	if tr.last(t).Text != msgSearchEmpty {
		t.Errorf("text = %q", tr.last(t).Text)
	}
}

func TestSearchDisabledWithoutSearcher(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	e := newTestEngine(tr, st)
	e.rhymeReply = func(string) string { return "" }

	if err := e.Handle(ctx, privateMessage(7, "/search")); err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, m := range tr.messages {
		if m.Text == msgSearchPrompt {
			t.Error("search route must be absent without a searcher")
		}
	}
}
