package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/modconsole/internal/config"
	"github.com/foxseedlab/modconsole/internal/remote"
	"github.com/foxseedlab/modconsole/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*pgxpool.Pool, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()

		p, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect database: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := RunMigration(ctx, p); err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to run migration: %w", err)
		}
		return p, nil
	})
	do.Provide(injector, func(i do.Injector) (repository.Repository, error) {
		return NewPostgresRepository(do.MustInvoke[*pgxpool.Pool](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*Metrics, error) {
		return NewMetrics(do.MustInvoke[*prometheus.Registry](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (remote.ChannelService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		metrics := do.MustInvoke[*Metrics](i)
		return Instrument(NewChannelService(repo, cfg.PageSize, cfg.RemoteTimeout(), metrics), metrics), nil
	})
}
