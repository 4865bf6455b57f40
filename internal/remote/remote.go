package remote

import (
	"context"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/search"
)

// Page is one slice of a channel list. An empty Cursor means no more pages.
type Page struct {
	Channels []channel.Channel
	Cursor   string
}

type SearchRequest struct {
	Kind   channel.Kind
	Option search.Option
	Query  string
	// Init starts a new result set; otherwise Cursor continues the current one.
	Init   bool
	Cursor string
}

type ListService interface {
	FetchFirstPage(ctx context.Context, kind channel.Kind) (Page, error)
	FetchNextPage(ctx context.Context, kind channel.Kind, cursor string) (Page, error)
	Search(ctx context.Context, req SearchRequest) (Page, error)
}

type ChannelService interface {
	ListService
	DeleteChannels(ctx context.Context, kind channel.Kind, urls []string) error
	// ResetSession is advisory cleanup when a list view of kind unmounts.
	ResetSession(kind channel.Kind)
}
