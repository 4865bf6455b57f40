package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/navigation"
	"github.com/foxseedlab/modconsole/internal/notice"
	"github.com/foxseedlab/modconsole/internal/pagination"
	"github.com/foxseedlab/modconsole/internal/remote"
	"github.com/foxseedlab/modconsole/internal/search"
	"github.com/foxseedlab/modconsole/internal/selection"
)

var ErrClosed = errors.New("session is closed")

const gateTimeout = 5 * time.Second

// State is the read-only view every presentation of a session renders from.
// Version grows with every published change.
type State struct {
	Version        uint64
	Kind           channel.Kind
	Channels       []channel.Channel
	Selected       []channel.Channel
	Current        channel.Channel
	Search         search.State
	SearchPhase    search.Phase
	SearchOptions  []search.Option
	HasMore        bool
	IsFetching     bool
	IsFetchingMore bool
}

// Actions is the event surface shared by every presentation of a session.
type Actions interface {
	SetSelection(channels []channel.Channel)
	ToggleSelection(c channel.Channel, selected bool)
	SubmitSearch()
	ChangeSearchOption(opt search.Option) error
	ChangeSearchQuery(query string)
	ClearSearch()
	FocusSearch()
	BlurSearch()
	LoadMore()
	Open(ctx context.Context, c channel.Channel)
	ReturnToList()
	OnDeleted(deleted []channel.Channel)
}

// Session is the list controller of one channel kind. Remote work runs on its
// own goroutines; results are applied under mu and only when their request
// generation is still current.
type Session struct {
	kind     channel.Kind
	service  remote.ChannelService
	notifier notice.Notifier
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	channels    []channel.Channel
	selection   *selection.Store
	search      *search.Controller
	pages       *pagination.Coordinator
	nav         *navigation.Coordinator
	version     uint64
	subscribers map[int]func(State)
	nextSubID   int
	// pending holds published snapshots not yet delivered. One caller at a
	// time drains it, so subscribers see versions in order.
	pending    []State
	delivering bool
}

var _ Actions = (*Session)(nil)

func (s *Session) Kind() channel.Kind {
	return s.kind
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every state change. fn runs outside the session
// lock and may read State or call actions.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Wait blocks until every dispatched request has been applied or dropped.
func (s *Session) Wait() {
	s.inflight.Wait()
}

// Close stops applying results, drops subscribers and tells the service the
// session is gone. Requests in flight are not awaited.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.subscribers = nil
	s.pages.Reset()
	s.mu.Unlock()

	s.cancel()
	s.service.ResetSession(s.kind)
	slog.Info("channel list session closed", "kind", s.kind)
}

func (s *Session) SetSelection(channels []channel.Channel) {
	s.update(func() bool {
		s.selection.Dispatch(selection.SetSelection{Channels: channels})
		return true
	})
}

// ToggleSelection publishes nothing when c is already in the requested state.
func (s *Session) ToggleSelection(c channel.Channel, selected bool) {
	s.update(func() bool {
		if s.selection.Contains(c) == selected {
			return false
		}
		s.selection.Dispatch(selection.Toggle{Channel: c, Selected: selected})
		return true
	})
}

func (s *Session) SubmitSearch() {
	s.update(func() bool {
		s.runEffectLocked(s.search.Submit())
		return true
	})
}

func (s *Session) ChangeSearchOption(opt search.Option) error {
	var err error
	s.update(func() bool {
		err = s.search.ChangeOption(opt)
		return err == nil
	})
	return err
}

func (s *Session) ChangeSearchQuery(query string) {
	s.update(func() bool {
		s.search.ChangeQuery(query)
		return true
	})
}

func (s *Session) ClearSearch() {
	s.update(func() bool {
		s.runEffectLocked(s.search.Clear())
		return true
	})
}

func (s *Session) FocusSearch() {
	s.update(func() bool {
		s.search.Focus()
		return true
	})
}

func (s *Session) BlurSearch() {
	s.update(func() bool {
		s.runEffectLocked(s.search.Blur())
		return true
	})
}

// LoadMore continues the list under the active search filter, if any. It is a
// no-op while any request is in flight or when no page is left.
func (s *Session) LoadMore() {
	s.update(func() bool {
		t, ok := s.pages.BeginMore()
		if !ok {
			return false
		}
		s.dispatchLocked(t, s.search.Applied())
		return true
	})
}

// Open routes to c when the gate admits the kind. The gate is consulted without
// holding the session lock, so state reads and other actions proceed meanwhile.
func (s *Session) Open(ctx context.Context, c channel.Channel) {
	s.mu.Lock()
	skip := s.closed || s.nav.IsCurrent(c)
	s.mu.Unlock()
	if skip {
		return
	}

	gateCtx, cancel := context.WithTimeout(ctx, gateTimeout)
	decision := s.nav.CanEnter(gateCtx)
	cancel()
	if !decision.Allowed {
		slog.Warn("channel open denied", "kind", s.kind, "channel_url", channel.URLOf(c), "reason", decision.Reason)
		s.notify(notice.LevelWarning, accessDeniedMessage(channel.URLOf(c), decision.Reason))
		return
	}
	s.update(func() bool {
		return s.nav.Enter(ctx, c) == navigation.OpenNavigated
	})
}

func (s *Session) ReturnToList() {
	s.update(func() bool {
		s.nav.ReturnToList(s.search.Applied())
		return true
	})
}

// OnDeleted runs after a confirmed delete: the selection is cleared and the
// first page reloaded before navigating away from a deleted detail view.
func (s *Session) OnDeleted(deleted []channel.Channel) {
	s.update(func() bool {
		s.selection.Clear()
		s.dispatchLocked(s.pages.BeginFresh(), s.search.Applied())
		if s.nav.CurrentIn(deleted) {
			s.nav.ReturnToList(s.search.Applied())
		}
		return true
	})
}

// Delete removes channels through the service and, only on success, runs OnDeleted.
func (s *Session) Delete(ctx context.Context, channels []channel.Channel) error {
	if len(channels) == 0 {
		return nil
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	urls := channel.URLs(channels)
	if err := s.service.DeleteChannels(ctx, s.kind, urls); err != nil {
		slog.Error("failed to delete channels", "error", err, "kind", s.kind, "count", len(urls))
		return fmt.Errorf("delete %d %s channels: %w", len(urls), s.kind, err)
	}
	slog.Info("channels deleted", "kind", s.kind, "count", len(urls))
	s.OnDeleted(channels)
	return nil
}

func (s *Session) runEffectLocked(eff search.Effect) {
	switch eff.Kind {
	case search.EffectFetchAll:
		s.dispatchLocked(s.pages.BeginFresh(), search.Filter{})
	case search.EffectSearch:
		s.dispatchLocked(s.pages.BeginFresh(), eff.Filter)
	case search.EffectNone:
	}
}

func (s *Session) dispatchLocked(t pagination.Ticket, f search.Filter) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		page, err := s.fetch(t, f)
		s.apply(t, f, page, err)
	}()
}

func (s *Session) fetch(t pagination.Ticket, f search.Filter) (remote.Page, error) {
	switch {
	case !f.IsZero():
		return s.service.Search(s.ctx, remote.SearchRequest{
			Kind:   s.kind,
			Option: f.Option,
			Query:  f.Query,
			Init:   t.Init,
			Cursor: t.Cursor,
		})
	case t.Init:
		return s.service.FetchFirstPage(s.ctx, s.kind)
	default:
		return s.service.FetchNextPage(s.ctx, s.kind, t.Cursor)
	}
}

func (s *Session) apply(t pagination.Ticket, f search.Filter, page remote.Page, err error) {
	failed := false
	s.update(func() bool {
		if err != nil {
			if !s.pages.Fail(t) {
				slog.Debug("dropping stale failed page request", "kind", s.kind, "generation", t.Generation)
				return false
			}
			failed = true
			if t.Init {
				s.channels = nil
				s.selection.Clear()
				if !f.IsZero() {
					s.search.Failed()
				}
			}
			return true
		}
		if !s.pages.Resolve(t, page.Cursor) {
			slog.Debug("dropping stale page", "kind", s.kind, "generation", t.Generation, "init", t.Init)
			return false
		}
		if t.Init {
			s.channels = channel.Dedupe(page.Channels)
			if !f.IsZero() {
				s.search.Succeeded(len(s.channels))
			}
		} else {
			s.channels = channel.Dedupe(append(slices.Clone(s.channels), page.Channels...))
		}
		s.selection.Clear()
		return true
	})
	if failed && !errors.Is(err, context.Canceled) {
		slog.Error("channel page request failed", "error", err, "kind", s.kind, "init", t.Init, "search", !f.IsZero())
		s.notify(notice.LevelError, fetchFailedMessage(s.kind, f, t.Init))
	}
}

// update runs fn under the session lock and publishes the resulting state to
// subscribers when fn reports a change. Delivery happens outside the lock, in
// version order; a subscriber that triggers another update gets it after the
// current one.
func (s *Session) update(fn func() bool) {
	s.mu.Lock()
	if s.closed || !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	s.pending = append(s.pending, s.snapshotLocked())
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		subs := make([]func(State), 0, len(s.subscribers))
		for _, sub := range s.subscribers {
			subs = append(subs, sub)
		}
		s.mu.Unlock()

		for _, st := range batch {
			for _, sub := range subs {
				sub(st)
			}
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

func (s *Session) snapshotLocked() State {
	return State{
		Version:        s.version,
		Kind:           s.kind,
		Channels:       slices.Clone(s.channels),
		Selected:       s.selection.Selected(),
		Current:        s.nav.Current(),
		Search:         s.search.State(),
		SearchPhase:    s.search.Phase(),
		SearchOptions:  s.search.Options(),
		HasMore:        s.pages.HasMore(),
		IsFetching:     s.pages.IsFetching(),
		IsFetchingMore: s.pages.IsFetchingMore(),
	}
}

func (s *Session) notify(level notice.Level, message string) {
	n := notice.Notice{Level: level, Kind: s.kind, Message: message}
	if err := s.notifier.Notify(context.WithoutCancel(s.ctx), n); err != nil {
		slog.Warn("failed to deliver notice", "error", err, "kind", s.kind, "level", level)
	}
}
