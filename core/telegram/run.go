package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/m3rciful/moovbot/core/bot"
	coreconfig "github.com/m3rciful/moovbot/core/config"
	"github.com/m3rciful/moovbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RunOptions controls Run.
type RunOptions struct {
	Config *coreconfig.Config

	// NewHandler builds the event handler once the transport exists.
	NewHandler func(transport bot.Transport) (bot.Handler, error)

	// Menu, when non-empty, is published via setMyCommands on start. When
	// empty and the handler exposes Menu(), that menu is published instead.
	Menu []bot.MenuCommand

	// OnStart runs after the bot is constructed, before updates flow.
	OnStart func(ctx context.Context, transport bot.Transport) error
}

// Run composes a Telegram bot around the given handler and runs it until the
// context is done. Every supported update kind is normalized and passed to
// the handler; panics and handler errors are logged, never fatal.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	if opts.NewHandler == nil {
		return fmt.Errorf("telegram: nil handler constructor provided")
	}
	cfg := opts.Config

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	buildStart := time.Now()
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(),
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	logMode(ctx, cfg, poller, time.Since(buildStart))

	client := NewClient(b)
	handler, err := opts.NewHandler(client)
	if err != nil {
		return fmt.Errorf("telegram: handler construction failed: %w", err)
	}

	handle := dispatchFunc(handler)
	b.Handle(tele.OnText, handle)
	b.Handle(tele.OnCallback, func(c tele.Context) error {
		// Stop the client-side spinner regardless of handler outcome.
		defer func() { _ = c.Respond() }()
		return handle(c)
	})
	b.Handle(tele.OnPollAnswer, handle)

	menu := opts.Menu
	if len(menu) == 0 {
		if m, ok := handler.(interface{ Menu() []bot.MenuCommand }); ok {
			menu = m.Menu()
		}
	}
	if len(menu) > 0 {
		cmds := make([]tele.Command, 0, len(menu))
		for _, mc := range menu {
			cmds = append(cmds, tele.Command{Text: mc.Text, Description: mc.Description})
		}
		if err := b.SetCommands(cmds); err != nil {
			logger.TG.Warn("failed to publish command menu",
				slog.String("event", "tg.menu"),
				slog.String("err", err.Error()),
			)
		}
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, client); err != nil {
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		b.Start()
		close(runDone)
	}()

	select {
	case <-ctx.Done():
		b.Stop()
		<-runDone
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case <-runDone:
		return nil
	}
}

// dispatchFunc wraps the handler with normalization, request ids, receipt
// logging and panic recovery.
func dispatchFunc(h bot.Handler) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		upd := c.Update()
		ev, err := NormalizeUpdate(upd)
		if err != nil {
			logger.TG.Debug("update dropped",
				slog.String("event", "update.dropped"),
				slog.Int("update_id", upd.ID),
				slog.String("err", err.Error()),
			)
			return nil
		}

		ctx := eventContext(ev, upd.ID)
		start := time.Now()
		if err := h.Handle(ctx, ev); err != nil {
			level := slog.LevelError
			if errors.Is(err, bot.ErrBadRequest) {
				level = slog.LevelWarn
			}
			logger.LogEvent(ctx, logger.TG, level, "update.failed",
				slog.String("status", "error"),
				slog.String("err", err.Error()),
				slog.Duration("duration", logger.RoundMS(logger.Took(start))),
			)
			return nil
		}
		logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.handled",
			slog.String("status", "ok"),
			slog.Duration("duration", logger.RoundMS(logger.Took(start))),
		)
		return nil
	}
}

func eventContext(ev bot.Event, updateID int) context.Context {
	var chatID, userID int64
	switch e := ev.(type) {
	case bot.MessageEvent:
		chatID, userID = e.Chat.ID, e.Sender.ID
	case bot.CallbackEvent:
		chatID, userID = e.Chat.ID, e.Sender.ID
	case bot.PollAnswerEvent:
		userID = e.Sender.ID
	}
	ctx := logger.WithRID(context.Background(), logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	return logger.WithLogger(ctx, logger.TG)
}

func logMode(ctx context.Context, cfg *coreconfig.Config, poller tele.Poller, took time.Duration) {
	switch p := poller.(type) {
	case *tele.Webhook:
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", logger.RoundMS(took)),
		)
	default:
		timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
		if timeoutSec <= 0 {
			timeoutSec = 10
		}
		logger.TG.Info("polling mode",
			slog.String("event", "mode"),
			slog.String("mode", "polling"),
			slog.Int("timeout_seconds", timeoutSec),
			slog.Duration("duration", logger.RoundMS(took)),
		)
	}
}
