package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/gate"
	"github.com/foxseedlab/modconsole/internal/navigation"
	"github.com/foxseedlab/modconsole/internal/notice"
	"github.com/foxseedlab/modconsole/internal/pagination"
	"github.com/foxseedlab/modconsole/internal/remote"
	"github.com/foxseedlab/modconsole/internal/search"
	"github.com/foxseedlab/modconsole/internal/selection"
)

// Manager mounts channel list sessions and keeps track of the live ones so
// they can be closed on shutdown.
type Manager struct {
	service  remote.ChannelService
	gate     gate.Gate
	notifier notice.Notifier

	mu       sync.Mutex
	sessions map[*Session]struct{}
}

type MountOptions struct {
	Kind channel.Kind
	// RawQuery is the query string of the list URL the session is mounted at.
	RawQuery string
	Router   navigation.Router
	// Notifier receives notices for this session only, in addition to the
	// manager-wide notifier.
	Notifier notice.Notifier
	// ResetLiveMessages clears buffered live messages before an open channel
	// is shown. Ignored for group channels.
	ResetLiveMessages navigation.OpenHook
}

func NewManager(service remote.ChannelService, g gate.Gate, notifier notice.Notifier) *Manager {
	if g == nil {
		g = gate.AllowAll{}
	}
	if notifier == nil {
		notifier = notice.Discard{}
	}
	return &Manager{
		service:  service,
		gate:     g,
		notifier: notifier,
		sessions: make(map[*Session]struct{}),
	}
}

// Mount builds a session for opts.Kind and starts the initial load: a search
// when the URL carries one, the first page otherwise.
func (m *Manager) Mount(ctx context.Context, opts MountOptions) (*Session, error) {
	if _, err := channel.ParseKind(string(opts.Kind)); err != nil {
		return nil, fmt.Errorf("mount session: %w", err)
	}
	seed, seeded := navigation.ParseListQuery(opts.RawQuery)
	st := strategyFor(opts)

	notifier := m.notifier
	if opts.Notifier != nil {
		notifier = notice.Multi{m.notifier, opts.Notifier}
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		kind:        opts.Kind,
		service:     m.service,
		notifier:    notifier,
		ctx:         sctx,
		cancel:      cancel,
		selection:   selection.NewStore(),
		search:      search.NewController(st.options, seed.Option),
		pages:       pagination.New(),
		nav:         navigation.NewCoordinator(opts.Kind, opts.Router, m.gate, st.onOpen),
		subscribers: make(map[int]func(State)),
	}

	m.mu.Lock()
	m.sessions[s] = struct{}{}
	m.mu.Unlock()

	slog.Info("channel list session mounted", "kind", opts.Kind, "seeded_search", seeded)
	s.update(func() bool {
		if seeded {
			s.search.Seed(seed)
		}
		s.runEffectLocked(s.initialEffect())
		return true
	})
	return s, nil
}

// Unmount closes s and forgets it.
func (m *Manager) Unmount(s *Session) {
	m.mu.Lock()
	delete(m.sessions, s)
	m.mu.Unlock()
	s.Close()
}

func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes every mounted session and waits for their requests to settle.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[*Session]struct{})
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	for _, s := range sessions {
		s.Wait()
	}
	slog.Info("all channel list sessions closed", "count", len(sessions))
}

func (s *Session) initialEffect() search.Effect {
	if eff := s.search.Submit(); eff.Kind == search.EffectSearch {
		return eff
	}
	return search.Effect{Kind: search.EffectFetchAll}
}

type kindStrategy struct {
	options []search.Option
	onOpen  navigation.OpenHook
}

// strategyFor resolves once per session what differs between channel kinds.
func strategyFor(opts MountOptions) kindStrategy {
	switch opts.Kind {
	case channel.KindOpen:
		return kindStrategy{
			options: search.OptionsFor(channel.KindOpen),
			onOpen:  opts.ResetLiveMessages,
		}
	case channel.KindGroup:
		return kindStrategy{options: search.OptionsFor(channel.KindGroup)}
	default:
		return kindStrategy{}
	}
}
