package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/modconsole/internal/config"
)

type envConfig struct {
	Env                    string   `env:"ENV" envDefault:"production"`
	ListenAddr             string   `env:"LISTEN_ADDR" envDefault:":8080"`
	DatabaseURL            string   `env:"DATABASE_URL,required"`
	PageSize               int      `env:"PAGE_SIZE" envDefault:"20"`
	RemoteTimeoutSec       int      `env:"REMOTE_TIMEOUT_SEC" envDefault:"10"`
	OperatorID             string   `env:"OPERATOR_ID,required"`
	GatedKinds             []string `env:"GATED_KINDS" envDefault:"open" envSeparator:","`
	GateCacheSize          int      `env:"GATE_CACHE_SIZE" envDefault:"128"`
	DiscordToken           string   `env:"DISCORD_TOKEN"`
	DiscordNoticeChannelID string   `env:"DISCORD_NOTICE_CHANNEL_ID"`
	NoticeWebhookURL       string   `env:"NOTICE_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                    raw.Env,
		ListenAddr:             raw.ListenAddr,
		DatabaseURL:            raw.DatabaseURL,
		PageSize:               raw.PageSize,
		RemoteTimeoutSec:       raw.RemoteTimeoutSec,
		OperatorID:             raw.OperatorID,
		GatedKinds:             raw.GatedKinds,
		GateCacheSize:          raw.GateCacheSize,
		DiscordToken:           raw.DiscordToken,
		DiscordNoticeChannelID: raw.DiscordNoticeChannelID,
		NoticeWebhookURL:       raw.NoticeWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
