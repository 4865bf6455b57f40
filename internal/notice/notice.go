package notice

import (
	"context"
	"errors"

	"github.com/foxseedlab/modconsole/internal/channel"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a transient, non-blocking message for the operator.
type Notice struct {
	Level   Level        `json:"level"`
	Kind    channel.Kind `json:"kind"`
	Message string       `json:"message"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

type NotifierFunc func(ctx context.Context, n Notice) error

func (f NotifierFunc) Notify(ctx context.Context, n Notice) error { return f(ctx, n) }

type Discard struct{}

func (Discard) Notify(context.Context, Notice) error { return nil }

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) error {
	var errs []error
	for _, nt := range m {
		if nt == nil {
			continue
		}
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MinLevel drops notices below threshold before passing them on.
func MinLevel(threshold Level, next Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, n Notice) error {
		if rank(n.Level) < rank(threshold) {
			return nil
		}
		return next.Notify(ctx, n)
	})
}

func rank(l Level) int {
	switch l {
	case LevelError:
		return 2
	case LevelWarning:
		return 1
	default:
		return 0
	}
}
