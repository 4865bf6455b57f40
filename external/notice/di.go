package notice

import (
	"github.com/foxseedlab/modconsole/internal/config"
	discordpkg "github.com/foxseedlab/modconsole/internal/discord"
	"github.com/foxseedlab/modconsole/internal/notice"
	"github.com/foxseedlab/modconsole/internal/webhook"
	"github.com/samber/do/v2"
)

// RegisterDI provides the process-wide notifier: the webhook always, and the
// discord notice channel for warnings and errors when it is configured.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (notice.Notifier, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sender := do.MustInvoke[webhook.Sender](i)
		notifiers := notice.Multi{webhook.NewNoticeForwarder(sender)}
		if cfg.DiscordNoticesEnabled() {
			dc := do.MustInvoke[discordpkg.Client](i)
			relay := discordpkg.NewNoticeRelay(dc, cfg.DiscordNoticeChannelID)
			notifiers = append(notifiers, notice.MinLevel(notice.LevelWarning, relay))
		}
		return notifiers, nil
	})
}
