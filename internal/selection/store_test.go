package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foxseedlab/modconsole/internal/channel"
)

func openCh(url string) channel.Channel {
	return &channel.Open{Base: channel.Base{URL: url}}
}

func TestToggle_AddIsIdempotent(t *testing.T) {
	s := NewStore()
	c1 := openCh("c1")

	s.Dispatch(Toggle{Channel: c1, Selected: true})
	s.Dispatch(Toggle{Channel: c1, Selected: true})

	assert.Equal(t, []string{"c1"}, channel.URLs(s.Selected()))
}

func TestToggle_MatchesByURL(t *testing.T) {
	s := NewStore()
	s.Dispatch(Toggle{Channel: openCh("c1"), Selected: true})
	s.Dispatch(Toggle{Channel: openCh("c1"), Selected: false})

	assert.Empty(t, s.Selected())
	assert.False(t, s.Contains(openCh("c1")))
}

func TestToggle_RemoveAbsentIsNoop(t *testing.T) {
	s := NewStore()
	s.Dispatch(Toggle{Channel: openCh("c1"), Selected: true})
	s.Dispatch(Toggle{Channel: openCh("c2"), Selected: false})

	assert.Equal(t, []string{"c1"}, channel.URLs(s.Selected()))
}

func TestSetSelection_ReplacesAndDedupes(t *testing.T) {
	s := NewStore()
	s.Dispatch(Toggle{Channel: openCh("old"), Selected: true})
	s.Dispatch(SetSelection{Channels: []channel.Channel{openCh("a"), openCh("b"), openCh("a")}})

	assert.Equal(t, []string{"a", "b"}, channel.URLs(s.Selected()))

	s.Clear()
	assert.Empty(t, s.Selected())
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	in := []channel.Channel{openCh("a"), openCh("b")}
	out := Reduce(in, Toggle{Channel: openCh("a"), Selected: false})

	assert.Equal(t, []string{"a", "b"}, channel.URLs(in))
	assert.Equal(t, []string{"b"}, channel.URLs(out))
}

func TestSelectedReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Dispatch(Toggle{Channel: openCh("a"), Selected: true})
	got := s.Selected()
	got[0] = openCh("z")

	assert.True(t, s.Contains(openCh("a")))
}
