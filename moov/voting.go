package moov

import (
	"context"
	"log/slog"

	"github.com/m3rciful/moovbot/core/bot"
	"github.com/m3rciful/moovbot/core/logger"

	"golang.org/x/sync/errgroup"
)

// handleVoteWatch opens the watcher poll in a group chat. Only group admins
// may start it. The poll and the removal of the triggering command message
// are independent effects and run concurrently.
func (e *Engine) handleVoteWatch(ctx context.Context, ev bot.MessageEvent) error {
	if ev.Chat.Private {
		return nil
	}
	chatID := ev.Chat.ID

	ok, err := e.senderIsAdmin(ctx, chatID, ev.Sender.ID)
	if err != nil {
		return e.fail(ctx, chatID, 0, "vote.watch", err)
	}
	if !ok {
		_, err := e.transport.Send(ctx, chatID, msgAdminsOnly, nil)
		if err != nil {
			return e.fail(ctx, chatID, 0, "vote.watch", err)
		}
		return nil
	}

	if _, err := e.states.EnsureGroup(ctx, ev.Chat); err != nil {
		return e.fail(ctx, chatID, 0, "vote.watch", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pollID, _, err := e.transport.SendPoll(gctx, chatID, msgWatchPoll, watchPollOptions, bot.PollOptions{})
		if err != nil {
			return err
		}
		return e.states.OpenPoll(gctx, chatID, pollID)
	})
	g.Go(func() error {
		return e.transport.Delete(gctx, chatID, ev.MessageID)
	})
	if err := g.Wait(); err != nil {
		return e.fail(ctx, chatID, 0, "vote.watch", err)
	}

	e.logOutcome(ctx, "vote.watch", slog.Int64("chat_id", chatID))
	return nil
}

// handlePollAnswer aggregates watcher poll answers. Only answers that pick
// the affirmative option count; retractions and other options are ignored.
// Answers to polls no group record points at are dropped.
func (e *Engine) handlePollAnswer(ctx context.Context, ev bot.PollAnswerEvent) error {
	if !affirmative(ev.OptionIDs) {
		return nil
	}

	chatID, group, found, err := e.states.GroupByPoll(ctx, ev.PollID)
	if err != nil {
		logger.LogEvent(ctx, logger.ENG, slog.LevelError, "vote.answer",
			slog.String("status", "error"),
			slog.String("err", err.Error()),
		)
		return nil
	}
	if !found || !group.Votes.Participants.Active {
		return nil
	}

	if err := e.states.AddWatcher(ctx, chatID, ev.Sender.ID); err != nil {
		logger.LogEvent(ctx, logger.ENG, slog.LevelError, "vote.answer",
			slog.String("status", "error"),
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return nil
	}
	e.logOutcome(ctx, "vote.answer",
		slog.Int64("chat_id", chatID),
		slog.Int64("user_id", ev.Sender.ID),
	)
	return nil
}

// handleVoteMovie samples the watchers' combined movie lists into a poll.
// With no watchers there is nothing to vote on; with a single candidate a
// poll makes no sense and the title is announced directly.
func (e *Engine) handleVoteMovie(ctx context.Context, ev bot.MessageEvent) error {
	if ev.Chat.Private {
		return nil
	}
	chatID := ev.Chat.ID

	ok, err := e.senderIsAdmin(ctx, chatID, ev.Sender.ID)
	if err != nil {
		return e.fail(ctx, chatID, 0, "vote.movie", err)
	}
	if !ok {
		if _, err := e.transport.Send(ctx, chatID, msgAdminsOnly, nil); err != nil {
			return e.fail(ctx, chatID, 0, "vote.movie", err)
		}
		return nil
	}

	group, found, err := e.states.Group(ctx, chatID)
	if err != nil {
		return e.fail(ctx, chatID, 0, "vote.movie", err)
	}
	participants := Participants{}
	if found {
		participants = group.Votes.Participants
	}
	if !participants.Active || len(participants.UserIDs) == 0 {
		if _, err := e.transport.Send(ctx, chatID, msgNobodyWants, nil); err != nil {
			return e.fail(ctx, chatID, 0, "vote.movie", err)
		}
		return nil
	}

	chats, err := e.states.WatcherChats(ctx, participants.UserIDs)
	if err != nil {
		return e.fail(ctx, chatID, 0, "vote.movie", err)
	}
	pool := moviePool(participants.UserIDs, chats)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.transport.Delete(gctx, chatID, ev.MessageID)
	})
	g.Go(func() error {
		switch len(pool) {
		case 0:
			// Watchers joined but nobody saved a movie.
			_, err := e.transport.Send(gctx, chatID, msgUpToYou, nil)
			return err
		case 1:
			_, err := e.transport.Send(gctx, chatID, msgUpToYou+"\n\n"+pool[0], nil)
			return err
		default:
			options := e.samplePool(pool)
			_, _, err := e.transport.SendPoll(gctx, chatID, msgMoviePoll, options, bot.PollOptions{MultipleAnswers: true})
			return err
		}
	})
	if err := g.Wait(); err != nil {
		return e.fail(ctx, chatID, 0, "vote.movie", err)
	}

	e.logOutcome(ctx, "vote.movie",
		slog.Int64("chat_id", chatID),
		slog.Int("count", len(pool)),
	)
	return nil
}

func (e *Engine) senderIsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	admins, err := e.transport.Administrators(ctx, chatID)
	if err != nil {
		return false, err
	}
	return admins[userID], nil
}

// affirmative reports whether the answer picks only the "yes" option. An
// empty answer is a retraction.
func affirmative(optionIDs []int) bool {
	if len(optionIDs) == 0 {
		return false
	}
	for _, id := range optionIDs {
		if id != yesOptionIndex {
			return false
		}
	}
	return true
}

// moviePool concatenates the watchers' lists in watcher order. Titles are
// not deduplicated: a movie saved by two watchers gets two entries and a
// proportionally larger chance of being drawn.
func moviePool(userIDs []int64, chats map[int64]*ChatRecord) []string {
	var pool []string
	for _, id := range userIDs {
		if rec, ok := chats[id]; ok {
			pool = append(pool, rec.Movies...)
		}
	}
	return pool
}

// samplePool draws up to MaxVoteOptions entries uniformly without
// replacement.
func (e *Engine) samplePool(pool []string) []string {
	n := e.limits.MaxVoteOptions
	if n > len(pool) {
		n = len(pool)
	}
	rest := append([]string(nil), pool...)
	picks := make([]string, 0, n)
	for len(picks) < n {
		i := e.randInt(len(rest))
		picks = append(picks, rest[i])
		rest[i] = rest[len(rest)-1]
		rest = rest[:len(rest)-1]
	}
	return picks
}
