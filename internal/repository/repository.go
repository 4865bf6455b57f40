package repository

import (
	"context"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/search"
)

type ListQuery struct {
	Kind channel.Kind
	// Option and Query narrow the listing; an empty Query lists everything.
	Option search.Option
	Query  string
	After  *Keyset
	Limit  int
}

type ChannelRepository interface {
	ListChannels(ctx context.Context, q ListQuery) ([]ChannelRow, error)
	DeleteChannels(ctx context.Context, kind channel.Kind, urls []string) (int64, error)
}

type OperatorRepository interface {
	IsOperatorProvisioned(ctx context.Context, operatorID string, kind channel.Kind) (bool, error)
}

type Repository interface {
	ChannelRepository
	OperatorRepository
}
