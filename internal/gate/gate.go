package gate

import (
	"context"

	"github.com/foxseedlab/modconsole/internal/channel"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Gate decides whether the operator may enter a channel detail view of a kind.
type Gate interface {
	CanEnter(ctx context.Context, kind channel.Kind) Decision
}

type AllowAll struct{}

func (AllowAll) CanEnter(context.Context, channel.Kind) Decision {
	return Allow()
}
