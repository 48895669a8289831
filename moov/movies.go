package moov

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/moovbot/core/bot"
	"github.com/m3rciful/moovbot/core/logger"
)

// handleStart provisions the chat record and shows the list menu. In group
// chats it only provisions the group record; the list lives in private
// chats.
func (e *Engine) handleStart(ctx context.Context, ev bot.MessageEvent) error {
	if !ev.Chat.Private {
		if _, err := e.states.EnsureGroup(ctx, ev.Chat); err != nil {
			return e.fail(ctx, ev.Chat.ID, 0, "start", err)
		}
		e.logOutcome(ctx, "start", slog.Int64("chat_id", ev.Chat.ID))
		return nil
	}

	rec, err := e.states.EnsureChat(ctx, ev.Chat.ID, ev.Sender)
	if err != nil {
		return e.fail(ctx, ev.Chat.ID, 0, "start", err)
	}
	return e.showList(ctx, ev.Chat.ID, 0, rec.Movies, "start")
}

// handleGetList shows the movie list with the add/remove menu.
func (e *Engine) handleGetList(ctx context.Context, ev bot.MessageEvent) error {
	if !ev.Chat.Private {
		return nil
	}
	rec, err := e.states.EnsureChat(ctx, ev.Chat.ID, ev.Sender)
	if err != nil {
		return e.fail(ctx, ev.Chat.ID, 0, "list.show", err)
	}
	return e.showList(ctx, ev.Chat.ID, 0, rec.Movies, "list.show")
}

func (e *Engine) showList(ctx context.Context, chatID int64, editTarget int, movies []string, event string) error {
	_, err := e.reply(ctx, chatID, editTarget, listText(movies), listKeyboard(len(movies), e.limits.MaxMovies))
	if err != nil {
		return e.fail(ctx, chatID, 0, event, err)
	}
	e.logOutcome(ctx, event,
		slog.Int64("chat_id", chatID),
		slog.Int("count", len(movies)),
	)
	return nil
}

// handleListAdd turns the list message into an input prompt and raises the
// pending-input flag with the prompt's id as the edit target.
func (e *Engine) handleListAdd(ctx context.Context, ev bot.CallbackEvent, _ []string) error {
	chatID := ev.Chat.ID
	rec, err := e.states.EnsureChat(ctx, chatID, ev.Sender)
	if err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "list.add", err)
	}
	if len(rec.Movies) >= e.limits.MaxMovies {
		return e.showStatusList(ctx, chatID, ev.MessageID, capMessage(e.limits.MaxMovies), rec.Movies, "list.add")
	}

	msgID, err := e.reply(ctx, chatID, ev.MessageID, msgAddPrompt, addCancelKeyboard())
	if err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "list.add", err)
	}
	if err := e.states.SetPendingMovieInput(ctx, chatID, msgID); err != nil {
		return e.fail(ctx, chatID, msgID, "list.add", err)
	}
	e.logOutcome(ctx, "list.add", slog.Int64("chat_id", chatID))
	return nil
}

// addMovie consumes a pending movie title. The flag is cleared in every
// outcome, including a refused append: the typed input always terminates the
// pending state.
func (e *Engine) addMovie(ctx context.Context, chatID int64, raw string, editTarget int) error {
	if err := e.states.SetPendingMovieInput(ctx, chatID, 0); err != nil {
		return e.fail(ctx, chatID, editTarget, "movie.add", err)
	}

	title := truncateTitle(raw, e.limits.MaxTitleLength)
	if title == "" {
		rec, _, err := e.states.Chat(ctx, chatID)
		if err != nil {
			return e.fail(ctx, chatID, editTarget, "movie.add", err)
		}
		return e.showList(ctx, chatID, editTarget, rec.Movies, "movie.add")
	}

	added, err := e.states.AppendMovie(ctx, chatID, title, e.limits.MaxMovies)
	if err != nil {
		return e.fail(ctx, chatID, editTarget, "movie.add", err)
	}

	rec, _, err := e.states.Chat(ctx, chatID)
	if err != nil {
		return e.fail(ctx, chatID, editTarget, "movie.add", err)
	}

	status := msgMovieAdded
	if !added {
		status = capMessage(e.limits.MaxMovies)
	}
	if err := e.showStatusList(ctx, chatID, editTarget, status, rec.Movies, "movie.add"); err != nil {
		return err
	}
	if !added {
		logger.LogEvent(ctx, logger.ENG, slog.LevelWarn, "movie.add",
			slog.String("status", "refused"),
			slog.Int64("chat_id", chatID),
			slog.Int("count", len(rec.Movies)),
		)
	}
	return nil
}

// handleListRemove turns the list message into a removal menu.
func (e *Engine) handleListRemove(ctx context.Context, ev bot.CallbackEvent, _ []string) error {
	chatID := ev.Chat.ID
	rec, err := e.states.EnsureChat(ctx, chatID, ev.Sender)
	if err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "list.remove", err)
	}
	if len(rec.Movies) == 0 {
		return e.showList(ctx, chatID, ev.MessageID, rec.Movies, "list.remove")
	}
	if _, err := e.reply(ctx, chatID, ev.MessageID, msgRemovePrompt, removeKeyboard(rec.Movies)); err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "list.remove", err)
	}
	e.logOutcome(ctx, "list.remove", slog.Int64("chat_id", chatID))
	return nil
}

// handleRemoveAt removes the list entry picked on the removal menu. A stale
// index from an outdated keyboard refreshes the list instead of failing.
func (e *Engine) handleRemoveAt(ctx context.Context, ev bot.CallbackEvent, args []string) error {
	chatID := ev.Chat.ID
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return bot.ErrBadRequest
	}

	rec, found, err := e.states.Chat(ctx, chatID)
	if err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "movie.remove", err)
	}
	if !found || index >= len(rec.Movies) {
		movies := []string{}
		if found {
			movies = rec.Movies
		}
		return e.showList(ctx, chatID, ev.MessageID, movies, "movie.remove")
	}

	if err := e.states.RemoveMovie(ctx, chatID, index); err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "movie.remove", err)
	}
	rec, _, err = e.states.Chat(ctx, chatID)
	if err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "movie.remove", err)
	}
	return e.showStatusList(ctx, chatID, ev.MessageID, msgMovieRemoved, rec.Movies, "movie.remove")
}

// handleAddCancel clears the pending-input flag and restores the list view.
func (e *Engine) handleAddCancel(ctx context.Context, ev bot.CallbackEvent, _ []string) error {
	chatID := ev.Chat.ID
	if err := e.states.SetPendingMovieInput(ctx, chatID, 0); err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "add.cancel", err)
	}
	rec, _, err := e.states.Chat(ctx, chatID)
	if err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "add.cancel", err)
	}
	movies := []string{}
	if rec != nil {
		movies = rec.Movies
	}
	return e.showList(ctx, chatID, ev.MessageID, movies, "add.cancel")
}

// handleRemoveCancel restores the list view without removing anything.
func (e *Engine) handleRemoveCancel(ctx context.Context, ev bot.CallbackEvent, _ []string) error {
	chatID := ev.Chat.ID
	rec, _, err := e.states.Chat(ctx, chatID)
	if err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "remove.cancel", err)
	}
	movies := []string{}
	if rec != nil {
		movies = rec.Movies
	}
	return e.showList(ctx, chatID, ev.MessageID, movies, "remove.cancel")
}

// handleText consumes typed input. Pending flags win over everything else;
// without one, private chats get the rhyme easter egg.
func (e *Engine) handleText(ctx context.Context, ev bot.MessageEvent) error {
	if !ev.Chat.Private {
		return nil
	}
	chatID := ev.Chat.ID

	rec, found, err := e.states.Chat(ctx, chatID)
	if err != nil {
		return e.fail(ctx, chatID, 0, "text", err)
	}
	if found && rec.WaitForMovieInput != 0 {
		return e.addMovie(ctx, chatID, ev.Text, rec.WaitForMovieInput)
	}
	if found && rec.WaitForStreamingInput != 0 {
		return e.runSearch(ctx, chatID, ev.Text, rec.WaitForStreamingInput)
	}

	reply := e.rhymeReply(strings.TrimSpace(ev.Text))
	if reply == "" {
		return nil
	}
	if _, err := e.transport.Send(ctx, chatID, reply, nil); err != nil {
		return e.fail(ctx, chatID, 0, "text.rhyme", err)
	}
	return nil
}

func (e *Engine) showStatusList(ctx context.Context, chatID int64, editTarget int, status string, movies []string, event string) error {
	_, err := e.reply(ctx, chatID, editTarget, statusListText(status, movies), listKeyboard(len(movies), e.limits.MaxMovies))
	if err != nil {
		return e.fail(ctx, chatID, 0, event, err)
	}
	e.logOutcome(ctx, event,
		slog.Int64("chat_id", chatID),
		slog.Int("count", len(movies)),
	)
	return nil
}
