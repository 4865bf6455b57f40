package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxseedlab/modconsole/internal/channel"
)

func newOpenController(seed Option) *Controller {
	return NewController(OptionsFor(channel.KindOpen), seed)
}

func TestDefaultOption_FirstOptionWithoutSeed(t *testing.T) {
	c := newOpenController("")
	assert.Equal(t, OptionName, c.DefaultOption())
	assert.Equal(t, OptionName, c.State().Option)
	assert.Equal(t, PhaseIdle, c.Phase())
}

func TestDefaultOption_SeedWinsWhenOffered(t *testing.T) {
	assert.Equal(t, OptionCustomType, newOpenController(OptionCustomType).DefaultOption())
	assert.Equal(t, OptionName, newOpenController(OptionMemberNickname).DefaultOption())
}

func TestDefaultOption_IsSticky(t *testing.T) {
	c := newOpenController("")
	c.SetAvailableOptions([]Option{OptionURL})
	assert.Equal(t, OptionName, c.DefaultOption())

	c.SetAvailableOptions(nil)
	assert.Equal(t, OptionName, c.DefaultOption())
}

func TestFocusAndQueryChangeDoNotFetch(t *testing.T) {
	c := newOpenController("")
	c.Focus()
	assert.Equal(t, PhaseActive, c.Phase())

	c.ChangeQuery("foo")
	assert.Equal(t, "foo", c.State().Query)
	assert.True(t, c.Applied().IsZero())
}

func TestChangeOption_KeepsQueryAndRejectsUnknown(t *testing.T) {
	c := newOpenController("")
	c.ChangeQuery("foo")
	require.NoError(t, c.ChangeOption(OptionURL))
	assert.Equal(t, "foo", c.State().Query)
	assert.Equal(t, OptionURL, c.State().Option)

	err := c.ChangeOption(OptionMemberNickname)
	assert.True(t, errors.Is(err, ErrUnknownOption))
	assert.Equal(t, OptionURL, c.State().Option)
}

func TestSubmit_IssuesSearchAndSucceeds(t *testing.T) {
	c := newOpenController("")
	c.ChangeQuery("  foo ")
	eff := c.Submit()

	assert.Equal(t, EffectSearch, eff.Kind)
	assert.Equal(t, Filter{Option: OptionName, Query: "foo"}, eff.Filter)
	assert.Equal(t, eff.Filter, c.Applied())
	assert.False(t, c.State().IsSuccess)

	c.Succeeded(2)
	assert.True(t, c.State().IsSuccess)
	assert.Equal(t, PhaseSubmittedSuccess, c.Phase())

	c.Succeeded(0)
	assert.Equal(t, PhaseSubmittedEmpty, c.Phase())
}

func TestSubmit_EmptyQueryIsClear(t *testing.T) {
	c := newOpenController("")
	c.Focus()
	assert.Equal(t, EffectNone, c.Submit().Kind)
	assert.Equal(t, PhaseIdle, c.Phase())

	c.ChangeQuery("foo")
	c.Submit()
	c.Succeeded(1)
	c.ChangeQuery("   ")
	eff := c.Submit()
	assert.Equal(t, EffectFetchAll, eff.Kind)
	assert.False(t, c.State().IsSuccess)
	assert.True(t, c.Applied().IsZero())
}

func TestClear_RefetchesOnlyAfterSubmittedSearch(t *testing.T) {
	c := newOpenController("")
	c.ChangeQuery("draft")
	assert.Equal(t, EffectNone, c.Clear().Kind)
	assert.Equal(t, "", c.State().Query)
	assert.False(t, c.State().IsSearching)

	c.ChangeQuery("foo")
	c.Submit()
	c.Succeeded(3)
	assert.Equal(t, EffectFetchAll, c.Clear().Kind)
	assert.Equal(t, PhaseIdle, c.Phase())
}

func TestClear_WhileSearchInFlightRefetches(t *testing.T) {
	c := newOpenController("")
	c.ChangeQuery("foo")
	c.Submit()
	assert.Equal(t, EffectFetchAll, c.Clear().Kind)
}

func TestBlur(t *testing.T) {
	c := newOpenController("")
	c.Focus()
	assert.Equal(t, EffectNone, c.Blur().Kind)
	assert.Equal(t, PhaseIdle, c.Phase())

	c.ChangeQuery("foo")
	assert.Equal(t, EffectNone, c.Blur().Kind)
	assert.Equal(t, PhaseActive, c.Phase())

	c.Submit()
	c.Succeeded(1)
	c.ChangeQuery("")
	assert.Equal(t, EffectFetchAll, c.Blur().Kind)
	assert.False(t, c.State().IsSuccess)
}

func TestSeed(t *testing.T) {
	c := NewController(OptionsFor(channel.KindGroup), OptionName)
	c.Seed(Filter{Option: OptionName, Query: "foo"})
	eff := c.Submit()
	assert.Equal(t, Filter{Option: OptionName, Query: "foo"}, eff.Filter)
}
