package console

import (
	"github.com/foxseedlab/modconsole/internal/config"
	"github.com/foxseedlab/modconsole/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Hub, error) {
		return NewHub(), nil
	})
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		manager := do.MustInvoke[*session.Manager](i)
		hub := do.MustInvoke[*Hub](i)
		reg := do.MustInvoke[*prometheus.Registry](i)
		return NewServer(manager, hub, reg, cfg.IsDevelopment()), nil
	})
}
