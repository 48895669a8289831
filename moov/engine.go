package moov

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/m3rciful/moovbot/core/bot"
	"github.com/m3rciful/moovbot/core/logger"
	"github.com/m3rciful/moovbot/core/telegram/keyboard"
	"github.com/m3rciful/moovbot/moov/streamsearch"
	"github.com/m3rciful/moovbot/rhyme"
)

// Searcher looks up titles on the streaming site.
type Searcher interface {
	Search(ctx context.Context, query string) ([]streamsearch.Result, error)
	Details(ctx context.Context, id int64) (*streamsearch.Details, error)
}

// Limits bounds user-visible list and poll sizes.
type Limits struct {
	MaxMovies      int
	MaxTitleLength int
	MaxVoteOptions int
}

// Config carries the engine collaborators. Transport and Store are required;
// a nil Searcher disables the streaming search flow.
type Config struct {
	BotName   string
	Limits    Limits
	Transport bot.Transport
	Store     Store
	Searcher  Searcher
}

// Engine routes normalized events to the movie list, voting and search
// flows. One event is handled per invocation; every durable effect goes
// through the injected store.
type Engine struct {
	limits     Limits
	transport  bot.Transport
	states     *States
	searcher   Searcher
	dispatcher *bot.Dispatcher
	randInt    func(n int) int
	rhymeReply func(phrase string) string
}

// NewEngine wires an engine and registers its routes.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		limits:     cfg.Limits,
		transport:  cfg.Transport,
		states:     NewStates(cfg.Store),
		searcher:   cfg.Searcher,
		randInt:    rand.IntN,
		rhymeReply: rhyme.Reply,
	}

	d := bot.NewDispatcher(cfg.BotName)
	d.Command("start", e.handleStart)
	d.Command("getList", e.handleGetList)
	d.Command("voteWatch", e.handleVoteWatch)
	d.Command("voteMovie", e.handleVoteMovie)
	if e.searcher != nil {
		d.Command("search", e.handleSearch)
	}
	d.Callback(cbListAdd, e.handleListAdd)
	d.Callback(cbListRemove, e.handleListRemove)
	d.Callback(cbAddCancel, e.handleAddCancel)
	d.Callback(cbRemoveCancel, e.handleRemoveCancel)
	d.CallbackPattern(`^remove_(\d+)$`, e.handleRemoveAt)
	if e.searcher != nil {
		d.CallbackPattern(`^(\d+)$`, e.handleDetails)
	}
	d.Text(e.handleText)
	d.PollAnswer(e.handlePollAnswer)
	e.dispatcher = d

	return e
}

// Handle routes one event through the dispatcher.
func (e *Engine) Handle(ctx context.Context, ev bot.Event) error {
	return e.dispatcher.Dispatch(ctx, ev)
}

// Menu lists the commands the engine responds to, for the client command
// menu.
func (e *Engine) Menu() []bot.MenuCommand {
	menu := []bot.MenuCommand{
		{Text: "start", Description: "Show your movie list"},
		{Text: "getList", Description: "Show your movie list"},
		{Text: "voteWatch", Description: "Ask the group who joins tonight"},
		{Text: "voteMovie", Description: "Vote for tonight's movie"},
	}
	if e.searcher != nil {
		menu = append(menu, bot.MenuCommand{Text: "search", Description: "Find a movie online"})
	}
	return menu
}

// reply edits the message identified by editTarget, or sends a new message
// when editTarget is zero. Handlers triggered by a button press pass the
// pressed message's id; handlers triggered by typed input pass zero unless a
// pending-input flag carried an edit target.
func (e *Engine) reply(ctx context.Context, chatID int64, editTarget int, text string, kb keyboard.Markup) (int, error) {
	opts := &bot.SendOptions{ParseMode: bot.ParseModeHTML, Keyboard: kb}
	if editTarget != 0 {
		return e.transport.Edit(ctx, chatID, editTarget, text, opts)
	}
	return e.transport.Send(ctx, chatID, text, opts)
}

// fail logs a collaborator failure and shows the generic failure notice.
// The original error is swallowed: a single failed invocation must never
// take the bot down or leave the user without feedback.
func (e *Engine) fail(ctx context.Context, chatID int64, editTarget int, event string, err error) error {
	logger.LogEvent(ctx, logger.ENG, slog.LevelError, event,
		slog.String("status", "error"),
		slog.Int64("chat_id", chatID),
		slog.String("err", err.Error()),
	)
	if _, sendErr := e.reply(ctx, chatID, editTarget, msgSomethingWrong, nil); sendErr != nil {
		logger.LogEvent(ctx, logger.ENG, slog.LevelError, event,
			slog.String("status", "error"),
			slog.Int64("chat_id", chatID),
			slog.String("err", fmt.Sprintf("failure notice: %v", sendErr)),
		)
	}
	return nil
}

func (e *Engine) logOutcome(ctx context.Context, event string, attrs ...slog.Attr) {
	attrs = append([]slog.Attr{slog.String("status", "ok")}, attrs...)
	logger.LogEvent(ctx, logger.ENG, slog.LevelInfo, event, attrs...)
}
