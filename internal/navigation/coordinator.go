package navigation

import (
	"context"
	"net/url"
	"strings"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/gate"
	"github.com/foxseedlab/modconsole/internal/search"
)

const (
	queryParamOption = "search_option"
	queryParamQuery  = "search_query"
)

// Router performs the actual location change of a presentation.
type Router interface {
	Navigate(location string)
}

type RouterFunc func(location string)

func (f RouterFunc) Navigate(location string) { f(location) }

// OpenHook is a kind-specific side effect run before routing to a new channel.
type OpenHook func(ctx context.Context, c channel.Channel)

func ListPath(kind channel.Kind) string {
	switch kind {
	case channel.KindOpen:
		return "/open_channels"
	case channel.KindGroup:
		return "/group_channels"
	default:
		return "/" + string(kind) + "_channels"
	}
}

func ListURL(kind channel.Kind, f search.Filter) string {
	p := ListPath(kind)
	if f.IsZero() {
		return p
	}
	q := url.Values{}
	q.Set(queryParamOption, string(f.Option))
	q.Set(queryParamQuery, f.Query)
	return p + "?" + q.Encode()
}

func DetailURL(kind channel.Kind, c channel.Channel) string {
	return ListPath(kind) + "/" + url.PathEscape(channel.URLOf(c))
}

// ParseListQuery reads the search filter a list URL carries, if any.
func ParseListQuery(rawQuery string) (search.Filter, bool) {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return search.Filter{}, false
	}
	f := search.Filter{
		Option: search.Option(values.Get(queryParamOption)),
		Query:  strings.TrimSpace(values.Get(queryParamQuery)),
	}
	if f.Option == "" && f.Query == "" {
		return search.Filter{}, false
	}
	return f, true
}

type OpenResult int

const (
	OpenNavigated OpenResult = iota
	OpenUnchanged
	OpenDenied
)

// Coordinator tracks the channel open in the detail view. Not safe for
// concurrent use; the owning session serializes access.
type Coordinator struct {
	kind    channel.Kind
	router  Router
	gate    gate.Gate
	onOpen  OpenHook
	current channel.Channel
}

func NewCoordinator(kind channel.Kind, router Router, g gate.Gate, onOpen OpenHook) *Coordinator {
	if g == nil {
		g = gate.AllowAll{}
	}
	return &Coordinator{kind: kind, router: router, gate: g, onOpen: onOpen}
}

func (c *Coordinator) Current() channel.Channel {
	return c.current
}

// Open consults the gate and enters ch. Owners that must not block on the gate
// while serializing access call IsCurrent, CanEnter and Enter separately.
func (c *Coordinator) Open(ctx context.Context, ch channel.Channel) (OpenResult, gate.Decision) {
	if c.IsCurrent(ch) {
		return OpenUnchanged, gate.Allow()
	}
	d := c.CanEnter(ctx)
	if !d.Allowed {
		return OpenDenied, d
	}
	return c.Enter(ctx, ch), d
}

func (c *Coordinator) IsCurrent(ch channel.Channel) bool {
	return channel.SameURL(c.current, ch)
}

// CanEnter asks the gate about this kind. It touches no coordinator state and
// may run concurrently with other methods.
func (c *Coordinator) CanEnter(ctx context.Context) gate.Decision {
	return c.gate.CanEnter(ctx, c.kind)
}

// Enter makes ch current and routes to it, running the open hook first. It
// assumes the gate already admitted the kind.
func (c *Coordinator) Enter(ctx context.Context, ch channel.Channel) OpenResult {
	if c.IsCurrent(ch) {
		return OpenUnchanged
	}
	if c.onOpen != nil {
		c.onOpen(ctx, ch)
	}
	c.current = ch
	c.navigate(DetailURL(c.kind, ch))
	return OpenNavigated
}

func (c *Coordinator) ReturnToList(active search.Filter) {
	c.current = nil
	c.navigate(ListURL(c.kind, active))
}

// CurrentIn reports whether the open channel is one of list.
func (c *Coordinator) CurrentIn(list []channel.Channel) bool {
	if c.current == nil {
		return false
	}
	for _, ch := range list {
		if channel.SameURL(c.current, ch) {
			return true
		}
	}
	return false
}

func (c *Coordinator) navigate(location string) {
	if c.router != nil {
		c.router.Navigate(location)
	}
}
