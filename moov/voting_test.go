package moov

import (
	"context"
	"strings"
	"testing"

	"github.com/m3rciful/moovbot/core/bot"
)

func seedWatcherPoll(t *testing.T, e *Engine, tr *fakeTransport, chatID int64) string {
	t.Helper()
	ctx := context.Background()
	tr.admins[1] = true
	if err := e.Handle(ctx, groupMessage(chatID, 1, 100, "/voteWatch")); err != nil {
		t.Fatalf("voteWatch: %v", err)
	}
	if len(tr.polls) != 1 {
		t.Fatalf("polls sent = %d, want 1", len(tr.polls))
	}
	return tr.polls[0].PollID
}

func TestVoteWatchAdminGate(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	e := newTestEngine(tr, st)

	if err := e.Handle(ctx, groupMessage(-100, 2, 50, "/voteWatch")); err != nil {
		t.Fatalf("voteWatch: %v", err)
	}
	if len(tr.polls) != 0 {
		t.Error("non-admin must not open a poll")
	}
	if tr.last(t).Text != msgAdminsOnly {
		t.Errorf("gate message = %q", tr.last(t).Text)
	}
}

func TestVoteWatchOpensPoll(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	e := newTestEngine(tr, st)

	pollID := seedWatcherPoll(t, e, tr, -100)

	poll := tr.polls[0]
	if poll.Question != msgWatchPoll {
		t.Errorf("question = %q", poll.Question)
	}
	if len(poll.Options) != 3 || poll.Options[0] != "Yes, I do!" {
		t.Errorf("options = %v", poll.Options)
	}
	if len(tr.deleted) != 1 || tr.deleted[0] != 100 {
		t.Errorf("trigger message not deleted: %v", tr.deleted)
	}

	group, found, err := e.states.Group(ctx, -100)
	if err != nil || !found {
		t.Fatalf("group record: found=%v err=%v", found, err)
	}
	p := group.Votes.Participants
	if !p.Active || p.PollID != pollID || len(p.UserIDs) != 0 {
		t.Errorf("participants = %+v", p)
	}
}

func TestWatcherAggregation(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	e := newTestEngine(tr, st)

	pollID := seedWatcherPoll(t, e, tr, -100)

	answer := func(userID int64, options ...int) {
		t.Helper()
		err := e.Handle(ctx, bot.PollAnswerEvent{
			PollID:    pollID,
			Sender:    bot.User{ID: userID},
			OptionIDs: options,
		})
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
	}

	answer(11, 0)
	answer(11, 0) // repeated affirmative answers stay idempotent
	answer(12, 1) // "Nope" does not join
	answer(13)    // retraction is ignored
	answer(14, 0)

	group, _, err := e.states.Group(ctx, -100)
	if err != nil {
		t.Fatalf("group record: %v", err)
	}
	ids := group.Votes.Participants.UserIDs
	if len(ids) != 2 || ids[0] != 11 || ids[1] != 14 {
		t.Errorf("watchers = %v, want [11 14]", ids)
	}
}

func TestWatcherAnswerUnknownPoll(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	e := newTestEngine(tr, st)

	err := e.Handle(ctx, bot.PollAnswerEvent{
		PollID:    "poll-unknown",
		Sender:    bot.User{ID: 11},
		OptionIDs: []int{0},
	})
	if err != nil {
		t.Fatalf("unknown poll answer must be dropped, got %v", err)
	}
}

func TestVoteMovieNoWatchers(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	e := newTestEngine(tr, st)
	tr.admins[1] = true

	if err := e.Handle(ctx, groupMessage(-100, 1, 101, "/voteMovie")); err != nil {
		t.Fatalf("voteMovie: %v", err)
	}
	if tr.last(t).Text != msgNobodyWants {
		t.Errorf("text = %q", tr.last(t).Text)
	}
}

func TestVoteMovieSingleCandidate(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	e := newTestEngine(tr, st)

	pollID := seedWatcherPoll(t, e, tr, -100)
	if err := e.Handle(ctx, privateMessage(11, "/start")); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.states.AppendMovie(ctx, 11, "Alien", 3); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := e.Handle(ctx, bot.PollAnswerEvent{PollID: pollID, Sender: bot.User{ID: 11}, OptionIDs: []int{0}})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	if err := e.Handle(ctx, groupMessage(-100, 1, 101, "/voteMovie")); err != nil {
		t.Fatalf("voteMovie: %v", err)
	}
	if len(tr.polls) != 1 {
		t.Errorf("single candidate must not open a second poll, polls = %d", len(tr.polls))
	}
	last := tr.last(t)
	if !strings.Contains(last.Text, msgUpToYou) || !strings.Contains(last.Text, "Alien") {
		t.Errorf("text = %q", last.Text)
	}
}

func TestVoteMovieSamplesPool(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	st := newFakeStore()
	e := newTestEngine(tr, st)

	pollID := seedWatcherPoll(t, e, tr, -100)

	titles := map[int64][]string{
		11: {"A1", "A2", "A3"},
		12: {"B1", "B2", "B3"},
		13: {"C1", "C2", "C3"},
		14: {"D1", "D2", "D3"},
	}
	for userID, list := range titles {
		if err := e.Handle(ctx, privateMessage(userID, "/start")); err != nil {
			t.Fatalf("start: %v", err)
		}
		for _, title := range list {
			if _, err := e.states.AppendMovie(ctx, userID, title, 3); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		err := e.Handle(ctx, bot.PollAnswerEvent{PollID: pollID, Sender: bot.User{ID: userID}, OptionIDs: []int{0}})
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
	}

	if err := e.Handle(ctx, groupMessage(-100, 1, 101, "/voteMovie")); err != nil {
		t.Fatalf("voteMovie: %v", err)
	}
	if len(tr.polls) != 2 {
		t.Fatalf("movie poll not sent, polls = %d", len(tr.polls))
	}

	poll := tr.polls[1]
	if poll.Question != msgMoviePoll {
		t.Errorf("question = %q", poll.Question)
	}
	// 12 candidates, so exactly MaxVoteOptions distinct options.
	if len(poll.Options) != 10 {
		t.Fatalf("options = %d, want 10", len(poll.Options))
	}
	seen := map[string]bool{}
	for _, opt := range poll.Options {
		if seen[opt] {
			t.Errorf("option %q drawn twice", opt)
		}
		seen[opt] = true
	}
	for _, opt := range poll.Options {
		owner := opt[:1]
		if owner != "A" && owner != "B" && owner != "C" && owner != "D" {
			t.Errorf("option %q not from the watcher pool", opt)
		}
	}
}

func TestSamplePoolBounds(t *testing.T) {
	e := newTestEngine(newFakeTransport(), newFakeStore())

	pool := []string{"a", "b", "c"}
	picks := e.samplePool(pool)
	if len(picks) != 3 {
		t.Errorf("small pool should be taken whole, got %v", picks)
	}

	big := make([]string, 25)
	for i := range big {
		big[i] = strings.Repeat("x", i+1)
	}
	picks = e.samplePool(big)
	if len(picks) != 10 {
		t.Errorf("picks = %d, want 10", len(picks))
	}
	seen := map[string]bool{}
	for _, p := range picks {
		if seen[p] {
			t.Errorf("element %q drawn twice", p)
		}
		seen[p] = true
	}
}
