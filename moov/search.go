package moov

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/moovbot/core/bot"
)

// handleSearch prompts for a search query and raises the streaming
// pending-input flag with the prompt's id as the edit target.
func (e *Engine) handleSearch(ctx context.Context, ev bot.MessageEvent) error {
	if !ev.Chat.Private {
		return nil
	}
	chatID := ev.Chat.ID
	if _, err := e.states.EnsureChat(ctx, chatID, ev.Sender); err != nil {
		return e.fail(ctx, chatID, 0, "search.prompt", err)
	}

	msgID, err := e.transport.Send(ctx, chatID, msgSearchPrompt, nil)
	if err != nil {
		return e.fail(ctx, chatID, 0, "search.prompt", err)
	}
	if err := e.states.SetPendingStreamInput(ctx, chatID, msgID); err != nil {
		return e.fail(ctx, chatID, msgID, "search.prompt", err)
	}
	e.logOutcome(ctx, "search.prompt", slog.Int64("chat_id", chatID))
	return nil
}

// runSearch consumes a pending search query. Like movie input, the flag is
// cleared no matter how the lookup ends.
func (e *Engine) runSearch(ctx context.Context, chatID int64, raw string, editTarget int) error {
	if err := e.states.SetPendingStreamInput(ctx, chatID, 0); err != nil {
		return e.fail(ctx, chatID, editTarget, "search.run", err)
	}

	query := strings.TrimSpace(raw)
	if query == "" {
		if _, err := e.reply(ctx, chatID, editTarget, msgSearchEmpty, nil); err != nil {
			return e.fail(ctx, chatID, 0, "search.run", err)
		}
		return nil
	}

	results, err := e.searcher.Search(ctx, query)
	if err != nil {
		return e.fail(ctx, chatID, editTarget, "search.run", err)
	}
	if len(results) == 0 {
		if _, err := e.reply(ctx, chatID, editTarget, msgSearchEmpty, nil); err != nil {
			return e.fail(ctx, chatID, 0, "search.run", err)
		}
		e.logOutcome(ctx, "search.run", slog.Int64("chat_id", chatID), slog.Int("count", 0))
		return nil
	}

	if _, err := e.reply(ctx, chatID, editTarget, msgSearchHeader, searchKeyboard(results)); err != nil {
		return e.fail(ctx, chatID, 0, "search.run", err)
	}
	e.logOutcome(ctx, "search.run",
		slog.Int64("chat_id", chatID),
		slog.Int("count", len(results)),
	)
	return nil
}

// handleDetails expands a picked search result in place.
func (e *Engine) handleDetails(ctx context.Context, ev bot.CallbackEvent, args []string) error {
	chatID := ev.Chat.ID
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return bot.ErrBadRequest
	}

	details, err := e.searcher.Details(ctx, id)
	if err != nil {
		return e.fail(ctx, chatID, ev.MessageID, "search.details", err)
	}
	if _, err := e.reply(ctx, chatID, ev.MessageID, detailText(details), nil); err != nil {
		return e.fail(ctx, chatID, 0, "search.details", err)
	}
	e.logOutcome(ctx, "search.details",
		slog.Int64("chat_id", chatID),
		slog.Int64("user_id", ev.Sender.ID),
	)
	return nil
}
