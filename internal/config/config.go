package config

import (
	"fmt"
	"time"

	"github.com/foxseedlab/modconsole/internal/channel"
)

const (
	minPageSize = 1
	maxPageSize = 100
)

type Config struct {
	Env                    string
	ListenAddr             string
	DatabaseURL            string
	PageSize               int
	RemoteTimeoutSec       int
	OperatorID             string
	GatedKinds             []string
	GateCacheSize          int
	DiscordToken           string
	DiscordNoticeChannelID string
	NoticeWebhookURL       string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.PageSize < minPageSize || c.PageSize > maxPageSize {
		return fmt.Errorf("PAGE_SIZE must be between %d and %d, got %d", minPageSize, maxPageSize, c.PageSize)
	}
	if c.RemoteTimeoutSec <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT_SEC must be positive, got %d", c.RemoteTimeoutSec)
	}
	if c.GateCacheSize <= 0 {
		return fmt.Errorf("GATE_CACHE_SIZE must be positive, got %d", c.GateCacheSize)
	}
	for _, k := range c.GatedKinds {
		if _, err := channel.ParseKind(k); err != nil {
			return fmt.Errorf("GATED_KINDS is invalid: %w", err)
		}
	}
	if (c.DiscordToken == "") != (c.DiscordNoticeChannelID == "") {
		return fmt.Errorf("DISCORD_TOKEN and DISCORD_NOTICE_CHANNEL_ID must be set together")
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "LISTEN_ADDR", value: c.ListenAddr},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "OPERATOR_ID", value: c.OperatorID},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.RemoteTimeoutSec) * time.Second
}

func (c *Config) IsGated(kind channel.Kind) bool {
	for _, k := range c.GatedKinds {
		if channel.Kind(k) == kind {
			return true
		}
	}
	return false
}

func (c *Config) DiscordNoticesEnabled() bool {
	return c.DiscordToken != "" && c.DiscordNoticeChannelID != ""
}
