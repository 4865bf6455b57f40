package notice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	got []Notice
	err error
}

func (r *recorder) Notify(_ context.Context, n Notice) error {
	r.got = append(r.got, n)
	return r.err
}

func TestMultiDeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{err: boom}
	b := &recorder{}
	err := Multi{a, nil, b}.Notify(context.Background(), Notice{Level: LevelError, Message: "x"})

	assert.True(t, errors.Is(err, boom))
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}

func TestMinLevel(t *testing.T) {
	r := &recorder{}
	n := MinLevel(LevelWarning, r)

	_ = n.Notify(context.Background(), Notice{Level: LevelInfo})
	_ = n.Notify(context.Background(), Notice{Level: LevelWarning})
	_ = n.Notify(context.Background(), Notice{Level: LevelError})

	assert.Len(t, r.got, 2)
}
