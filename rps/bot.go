package rps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/moovbot/core/bot"
	"github.com/m3rciful/moovbot/core/logger"
	"github.com/m3rciful/moovbot/core/telegram/keyboard"
)

const (
	msgInvite = "Let's play! Make your move:"
)

// Config carries the game bot collaborators.
type Config struct {
	BotName   string
	Transport bot.Transport
}

// Bot routes game events. It keeps no state between invocations: the score
// rides along in each button's payload.
type Bot struct {
	transport  bot.Transport
	dispatcher *bot.Dispatcher
	randInt    func(n int) int
}

// NewBot wires a game bot and registers its routes.
func NewBot(cfg Config, randInt func(n int) int) *Bot {
	b := &Bot{
		transport: cfg.Transport,
		randInt:   randInt,
	}

	d := bot.NewDispatcher(cfg.BotName)
	d.Command("play", b.handlePlay)
	d.CallbackPattern(`^\{.*\}$`, b.handleMove)
	b.dispatcher = d

	return b
}

// Handle routes one event through the dispatcher.
func (b *Bot) Handle(ctx context.Context, ev bot.Event) error {
	return b.dispatcher.Dispatch(ctx, ev)
}

// Menu lists the commands for the client command menu.
func (b *Bot) Menu() []bot.MenuCommand {
	return []bot.MenuCommand{{Text: "play", Description: "Play rock-paper-scissors"}}
}

func (b *Bot) handlePlay(ctx context.Context, ev bot.MessageEvent) error {
	kb, err := moveKeyboard([2]int{0, 0})
	if err != nil {
		return b.fail(ctx, ev.Chat.ID, "rps.play", err)
	}
	if _, err := b.transport.Send(ctx, ev.Chat.ID, msgInvite, &bot.SendOptions{Keyboard: kb}); err != nil {
		return b.fail(ctx, ev.Chat.ID, "rps.play", err)
	}
	return nil
}

func (b *Bot) handleMove(ctx context.Context, ev bot.CallbackEvent, _ []string) error {
	payload, err := DecodePayload(ev.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", bot.ErrBadRequest, err)
	}
	player, ok := MoveIndex(payload.Roll)
	if !ok {
		return fmt.Errorf("%w: unknown move %q", bot.ErrBadRequest, payload.Roll)
	}

	botMove := b.randInt(len(Moves))
	score := payload.Prev
	outcome := Judge(player, botMove)
	switch outcome {
	case PlayerWins:
		score[0]++
	case BotWins:
		score[1]++
	}

	kb, err := moveKeyboard(score)
	if err != nil {
		return b.fail(ctx, ev.Chat.ID, "rps.move", err)
	}
	text := roundText(player, botMove, outcome, score)
	if _, err := b.transport.Edit(ctx, ev.Chat.ID, ev.MessageID, text, &bot.SendOptions{Keyboard: kb}); err != nil {
		return b.fail(ctx, ev.Chat.ID, "rps.move", err)
	}

	logger.LogEvent(ctx, logger.ENG, slog.LevelInfo, "rps.move",
		slog.String("status", "ok"),
		slog.Int64("chat_id", ev.Chat.ID),
	)
	return nil
}

func (b *Bot) fail(ctx context.Context, chatID int64, event string, err error) error {
	logger.LogEvent(ctx, logger.ENG, slog.LevelError, event,
		slog.String("status", "error"),
		slog.Int64("chat_id", chatID),
		slog.String("err", err.Error()),
	)
	return nil
}

// moveKeyboard builds one button per move, each carrying the running score.
func moveKeyboard(score [2]int) (keyboard.Markup, error) {
	row := make([]keyboard.Button, 0, len(Moves))
	for _, m := range Moves {
		data, err := EncodePayload(Payload{Roll: m, Prev: score})
		if err != nil {
			return nil, err
		}
		row = append(row, keyboard.Button{Text: m, Data: data})
	}
	return keyboard.Rows(row), nil
}

func roundText(player, botMove int, outcome Outcome, score [2]int) string {
	var verdict string
	switch outcome {
	case PlayerWins:
		verdict = "You win this round!"
	case BotWins:
		verdict = "I win this round!"
	default:
		verdict = "Draw!"
	}
	return fmt.Sprintf("%s vs %s. %s\nScore: you %d - me %d",
		Moves[player], Moves[botMove], verdict, score[0], score[1])
}
