package selection

import (
	"fmt"

	"github.com/foxseedlab/modconsole/internal/channel"
)

type Action interface {
	action()
}

// SetSelection replaces the selection outright.
type SetSelection struct {
	Channels []channel.Channel
}

// Toggle adds or removes a single channel, matched by URL.
type Toggle struct {
	Channel  channel.Channel
	Selected bool
}

func (SetSelection) action() {}
func (Toggle) action()       {}

func Reduce(selected []channel.Channel, a Action) []channel.Channel {
	switch a := a.(type) {
	case SetSelection:
		return channel.Dedupe(a.Channels)
	case Toggle:
		if a.Selected {
			if indexOf(selected, a.Channel) >= 0 {
				return selected
			}
			out := make([]channel.Channel, 0, len(selected)+1)
			out = append(out, selected...)
			return append(out, a.Channel)
		}
		i := indexOf(selected, a.Channel)
		if i < 0 {
			return selected
		}
		out := make([]channel.Channel, 0, len(selected)-1)
		out = append(out, selected[:i]...)
		return append(out, selected[i+1:]...)
	default:
		panic(fmt.Sprintf("selection: unhandled action %T", a))
	}
}

func indexOf(list []channel.Channel, c channel.Channel) int {
	u := channel.URLOf(c)
	for i, s := range list {
		if channel.URLOf(s) == u {
			return i
		}
	}
	return -1
}

// Store is not safe for concurrent use; the owning session serializes access.
type Store struct {
	selected []channel.Channel
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Dispatch(a Action) {
	s.selected = Reduce(s.selected, a)
}

func (s *Store) Selected() []channel.Channel {
	out := make([]channel.Channel, len(s.selected))
	copy(out, s.selected)
	return out
}

func (s *Store) Contains(c channel.Channel) bool {
	return indexOf(s.selected, c) >= 0
}

func (s *Store) Clear() {
	s.Dispatch(SetSelection{})
}
