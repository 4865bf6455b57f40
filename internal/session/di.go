package session

import (
	"github.com/foxseedlab/modconsole/internal/gate"
	"github.com/foxseedlab/modconsole/internal/notice"
	"github.com/foxseedlab/modconsole/internal/remote"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		service := do.MustInvoke[remote.ChannelService](i)
		g := do.MustInvoke[gate.Gate](i)
		notifier := do.MustInvoke[notice.Notifier](i)
		return NewManager(service, g, notifier), nil
	})
}
