package main

import (
	"fmt"
	"log"
	"time"

	"github.com/m3rciful/moovbot/core/bot"
	corecmd "github.com/m3rciful/moovbot/core/cmd"
	coreconfig "github.com/m3rciful/moovbot/core/config"
	"github.com/m3rciful/moovbot/core/database"
	coretelegram "github.com/m3rciful/moovbot/core/telegram"
	"github.com/m3rciful/moovbot/moov"
	"github.com/m3rciful/moovbot/moov/streamsearch"
	"github.com/m3rciful/moovbot/storage"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		Build:             build,
	})
	if err != nil {
		log.Fatalf("moovbot: %v", err)
	}
}

func build(cfg *coreconfig.Config) (coretelegram.RunOptions, error) {
	if err := database.RunMigrations(cfg.Database); err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("migrations: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("database: %w", err)
	}
	store := storage.NewPostgres(db)

	var searcher moov.Searcher
	if cfg.Streaming.BaseURL != "" {
		client, err := streamsearch.NewClient(
			cfg.Streaming.BaseURL,
			time.Duration(cfg.Streaming.TimeoutSeconds)*time.Second,
		)
		if err != nil {
			return coretelegram.RunOptions{}, fmt.Errorf("streaming: %w", err)
		}
		searcher = client
	}

	return coretelegram.RunOptions{
		NewHandler: func(tr bot.Transport) (bot.Handler, error) {
			return moov.NewEngine(moov.Config{
				BotName: cfg.Telegram.BotName,
				Limits: moov.Limits{
					MaxMovies:      cfg.Limits.MaxMovies,
					MaxTitleLength: cfg.Limits.MaxTitleLength,
					MaxVoteOptions: cfg.Limits.MaxVoteOptions,
				},
				Transport: tr,
				Store:     store,
				Searcher:  searcher,
			}), nil
		},
	}, nil
}
