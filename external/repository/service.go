package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/remote"
	"github.com/foxseedlab/modconsole/internal/repository"
	"github.com/foxseedlab/modconsole/internal/search"
)

const firstPageTTL = 5 * time.Second

var ErrMissingCursor = errors.New("continuation requires a cursor")

// ChannelService serves channel pages from a ChannelRepository. Unfiltered
// first pages are cached briefly per kind; deletes and ResetSession drop the
// cached page of their kind.
type ChannelService struct {
	repo     repository.ChannelRepository
	pageSize int
	timeout  time.Duration
	metrics  *Metrics
	now      func() time.Time

	mu         sync.Mutex
	firstPages map[channel.Kind]cachedPage
	// epochs grow whenever a kind's cached page is dropped, so a fetch that
	// started before the drop never stores its page.
	epochs map[channel.Kind]uint64
}

type cachedPage struct {
	page      remote.Page
	fetchedAt time.Time
}

var _ remote.ChannelService = (*ChannelService)(nil)

func NewChannelService(repo repository.ChannelRepository, pageSize int, timeout time.Duration, metrics *Metrics) *ChannelService {
	return &ChannelService{
		repo:       repo,
		pageSize:   pageSize,
		timeout:    timeout,
		metrics:    metrics,
		now:        time.Now,
		firstPages: make(map[channel.Kind]cachedPage),
		epochs:     make(map[channel.Kind]uint64),
	}
}

func (s *ChannelService) FetchFirstPage(ctx context.Context, kind channel.Kind) (remote.Page, error) {
	p, epoch, ok := s.cachedFirstPage(kind)
	if ok {
		slog.Debug("serving cached first page", "kind", kind)
		return p, nil
	}
	p, err := s.list(ctx, repository.ListQuery{Kind: kind})
	if err != nil {
		return remote.Page{}, err
	}
	s.mu.Lock()
	if s.epochs[kind] == epoch {
		s.firstPages[kind] = cachedPage{page: p, fetchedAt: s.now()}
	}
	s.mu.Unlock()
	return p, nil
}

func (s *ChannelService) FetchNextPage(ctx context.Context, kind channel.Kind, cursor string) (remote.Page, error) {
	return s.continueFrom(ctx, repository.ListQuery{Kind: kind}, cursor)
}

func (s *ChannelService) Search(ctx context.Context, req remote.SearchRequest) (remote.Page, error) {
	if !slices.Contains(search.OptionsFor(req.Kind), req.Option) {
		return remote.Page{}, fmt.Errorf("search %s channels: %w: %q", req.Kind, search.ErrUnknownOption, req.Option)
	}
	q := repository.ListQuery{Kind: req.Kind, Option: req.Option, Query: req.Query}
	if req.Init {
		return s.list(ctx, q)
	}
	return s.continueFrom(ctx, q, req.Cursor)
}

func (s *ChannelService) DeleteChannels(ctx context.Context, kind channel.Kind, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.repo.DeleteChannels(ctx, kind, urls)
	s.forgetFirstPage(kind)
	if err != nil {
		return fmt.Errorf("delete %s channels: %w", kind, err)
	}
	if n < int64(len(urls)) {
		slog.Warn("some channels were already gone", "kind", kind, "requested", len(urls), "deleted", n)
	}
	return nil
}

func (s *ChannelService) ResetSession(kind channel.Kind) {
	s.forgetFirstPage(kind)
	slog.Debug("channel session reset", "kind", kind)
}

func (s *ChannelService) continueFrom(ctx context.Context, q repository.ListQuery, cursor string) (remote.Page, error) {
	if cursor == "" {
		return remote.Page{}, ErrMissingCursor
	}
	tok, err := decodeCursor(cursor)
	if err != nil {
		return remote.Page{}, err
	}
	q, err = tok.resume(q)
	if err != nil {
		return remote.Page{}, err
	}
	return s.list(ctx, q)
}

// list fetches one page plus a lookahead row to learn whether a next page exists.
func (s *ChannelService) list(ctx context.Context, q repository.ListQuery) (remote.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q.Limit = s.pageSize + 1
	rows, err := s.repo.ListChannels(ctx, q)
	if err != nil {
		return remote.Page{}, fmt.Errorf("list %s channels: %w", q.Kind, err)
	}
	hasMore := len(rows) > s.pageSize
	if hasMore {
		rows = rows[:s.pageSize]
	}

	page := remote.Page{Channels: make([]channel.Channel, 0, len(rows))}
	for _, row := range rows {
		c, err := row.ToChannel()
		if err != nil {
			slog.Error("skipping inconsistent channel row", "error", err, "kind", q.Kind, "channel_url", row.URL)
			s.metrics.rowSkipped(q.Kind)
			continue
		}
		page.Channels = append(page.Channels, c)
	}
	if hasMore {
		page.Cursor = encodeCursor(tokenAfter(q, rows[len(rows)-1]))
	}
	return page, nil
}

// cachedFirstPage also returns the kind's current epoch for a later store.
func (s *ChannelService) cachedFirstPage(kind channel.Kind) (remote.Page, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	epoch := s.epochs[kind]
	c, ok := s.firstPages[kind]
	if !ok || s.now().Sub(c.fetchedAt) > firstPageTTL {
		return remote.Page{}, epoch, false
	}
	return c.page, epoch, true
}

func (s *ChannelService) forgetFirstPage(kind channel.Kind) {
	s.mu.Lock()
	delete(s.firstPages, kind)
	s.epochs[kind]++
	s.mu.Unlock()
}
