package gate

import (
	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/config"
	"github.com/foxseedlab/modconsole/internal/gate"
	"github.com/foxseedlab/modconsole/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (gate.Gate, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		var kinds []channel.Kind
		for _, k := range []channel.Kind{channel.KindOpen, channel.KindGroup} {
			if cfg.IsGated(k) {
				kinds = append(kinds, k)
			}
		}
		return NewProvisioningGate(repo, cfg.OperatorID, kinds, cfg.GateCacheSize)
	})
}
