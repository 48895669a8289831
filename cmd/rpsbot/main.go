package main

import (
	"log"
	"math/rand/v2"

	"github.com/m3rciful/moovbot/core/bot"
	corecmd "github.com/m3rciful/moovbot/core/cmd"
	coreconfig "github.com/m3rciful/moovbot/core/config"
	coretelegram "github.com/m3rciful/moovbot/core/telegram"
	"github.com/m3rciful/moovbot/rps"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "RPS_CONFIG_PATH",
		DefaultConfigPath: "config.rps.yaml",
		Build:             build,
	})
	if err != nil {
		log.Fatalf("rpsbot: %v", err)
	}
}

func build(cfg *coreconfig.Config) (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		NewHandler: func(tr bot.Transport) (bot.Handler, error) {
			return rps.NewBot(rps.Config{
				BotName:   cfg.Telegram.BotName,
				Transport: tr,
			}, rand.IntN), nil
		},
	}, nil
}
