package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/gate"
	"github.com/foxseedlab/modconsole/internal/search"
)

type recordingRouter struct {
	locations []string
}

func (r *recordingRouter) Navigate(location string) {
	r.locations = append(r.locations, location)
}

type fixedGate struct {
	decision gate.Decision
	calls    int
}

func (g *fixedGate) CanEnter(context.Context, channel.Kind) gate.Decision {
	g.calls++
	return g.decision
}

func groupCh(url string) channel.Channel {
	return &channel.Group{Base: channel.Base{URL: url}}
}

func TestListURL(t *testing.T) {
	assert.Equal(t, "/open_channels", ListURL(channel.KindOpen, search.Filter{}))
	assert.Equal(t,
		"/group_channels?search_option=name&search_query=foo+bar",
		ListURL(channel.KindGroup, search.Filter{Option: search.OptionName, Query: "foo bar"}))
}

func TestDetailURLEscapesChannelURL(t *testing.T) {
	assert.Equal(t, "/group_channels/a%2Fb", DetailURL(channel.KindGroup, groupCh("a/b")))
}

func TestParseListQuery(t *testing.T) {
	f, ok := ParseListQuery("?search_option=url&search_query=sendbird_open")
	assert.True(t, ok)
	assert.Equal(t, search.Filter{Option: search.OptionURL, Query: "sendbird_open"}, f)

	_, ok = ParseListQuery("")
	assert.False(t, ok)
	_, ok = ParseListQuery("page=2")
	assert.False(t, ok)
}

func TestListURLRoundTrip(t *testing.T) {
	in := search.Filter{Option: search.OptionCustomType, Query: "vip & co"}
	u := ListURL(channel.KindOpen, in)
	out, ok := ParseListQuery(u[len("/open_channels"):])
	assert.True(t, ok)
	assert.Equal(t, in, out)
}

func TestOpen_SameChannelIsNoop(t *testing.T) {
	r := &recordingRouter{}
	hooks := 0
	c := NewCoordinator(channel.KindGroup, r, gate.AllowAll{}, func(context.Context, channel.Channel) { hooks++ })

	res, _ := c.Open(context.Background(), groupCh("c3"))
	assert.Equal(t, OpenNavigated, res)
	res, _ = c.Open(context.Background(), groupCh("c3"))
	assert.Equal(t, OpenUnchanged, res)

	assert.Equal(t, 1, hooks)
	assert.Equal(t, []string{"/group_channels/c3"}, r.locations)
}

func TestOpen_DeniedByGate(t *testing.T) {
	r := &recordingRouter{}
	g := &fixedGate{decision: gate.Deny("operator is not provisioned")}
	hooks := 0
	c := NewCoordinator(channel.KindOpen, r, g, func(context.Context, channel.Channel) { hooks++ })

	res, d := c.Open(context.Background(), groupCh("c1"))
	assert.Equal(t, OpenDenied, res)
	assert.Equal(t, "operator is not provisioned", d.Reason)
	assert.Nil(t, c.Current())
	assert.Empty(t, r.locations)
	assert.Zero(t, hooks)
}

func TestEnter_RechecksCurrentWithoutGate(t *testing.T) {
	r := &recordingRouter{}
	g := &fixedGate{decision: gate.Allow()}
	hooks := 0
	c := NewCoordinator(channel.KindOpen, r, g, func(context.Context, channel.Channel) { hooks++ })

	assert.False(t, c.IsCurrent(groupCh("c1")))
	assert.True(t, c.CanEnter(context.Background()).Allowed)
	assert.Equal(t, OpenNavigated, c.Enter(context.Background(), groupCh("c1")))
	// a second admitted open of the same channel lands after the first one
	assert.Equal(t, OpenUnchanged, c.Enter(context.Background(), groupCh("c1")))

	assert.Equal(t, 1, g.calls)
	assert.Equal(t, 1, hooks)
	assert.Equal(t, []string{"/open_channels/c1"}, r.locations)
}

func TestReturnToListCarriesActiveFilter(t *testing.T) {
	r := &recordingRouter{}
	c := NewCoordinator(channel.KindOpen, r, nil, nil)
	c.Open(context.Background(), groupCh("c1"))

	c.ReturnToList(search.Filter{Option: search.OptionName, Query: "foo"})
	assert.Nil(t, c.Current())
	c.ReturnToList(search.Filter{})

	assert.Equal(t, []string{
		"/open_channels/c1",
		"/open_channels?search_option=name&search_query=foo",
		"/open_channels",
	}, r.locations)
}

func TestCurrentIn(t *testing.T) {
	c := NewCoordinator(channel.KindGroup, nil, nil, nil)
	assert.False(t, c.CurrentIn([]channel.Channel{groupCh("c1")}))

	c.Open(context.Background(), groupCh("c3"))
	assert.True(t, c.CurrentIn([]channel.Channel{groupCh("c1"), groupCh("c3")}))
	assert.False(t, c.CurrentIn([]channel.Channel{groupCh("c1")}))
}
