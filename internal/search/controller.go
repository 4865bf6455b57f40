package search

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/foxseedlab/modconsole/internal/channel"
)

type Option string

const (
	OptionName           Option = "name"
	OptionURL            Option = "url"
	OptionCustomType     Option = "custom_type"
	OptionMemberNickname Option = "member_nickname"
)

var ErrUnknownOption = errors.New("unknown search option")

// OptionsFor returns the searchable fields of a channel kind, default first.
func OptionsFor(kind channel.Kind) []Option {
	switch kind {
	case channel.KindOpen:
		return []Option{OptionName, OptionURL, OptionCustomType}
	case channel.KindGroup:
		return []Option{OptionURL, OptionName, OptionCustomType, OptionMemberNickname}
	default:
		return nil
	}
}

type Filter struct {
	Option Option
	Query  string
}

func (f Filter) IsZero() bool {
	return f.Query == ""
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseSubmittedSuccess
	PhaseSubmittedEmpty
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseSubmittedSuccess:
		return "submitted_success"
	case PhaseSubmittedEmpty:
		return "submitted_empty"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type State struct {
	Option      Option `json:"option"`
	Query       string `json:"query"`
	IsSearching bool   `json:"is_searching"`
	IsSuccess   bool   `json:"is_success"`
}

type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectFetchAll
	EffectSearch
)

// Effect is the remote work a transition asks the session to perform.
type Effect struct {
	Kind   EffectKind
	Filter Filter
}

// Controller is not safe for concurrent use; the owning session serializes access.
type Controller struct {
	options       []Option
	defaultOption Option
	state         State
	applied       Filter
	resultCount   int
}

// NewController picks the default option once. A seed option wins when the kind
// offers it; later calls to SetAvailableOptions never revisit the choice.
func NewController(options []Option, seed Option) *Controller {
	def := Option("")
	if len(options) > 0 {
		def = options[0]
	}
	if seed != "" && slices.Contains(options, seed) {
		def = seed
	}
	return &Controller{
		options:       slices.Clone(options),
		defaultOption: def,
		state:         State{Option: def},
	}
}

func (c *Controller) DefaultOption() Option {
	return c.defaultOption
}

func (c *Controller) Options() []Option {
	return slices.Clone(c.options)
}

func (c *Controller) SetAvailableOptions(options []Option) {
	c.options = slices.Clone(options)
}

func (c *Controller) State() State {
	return c.state
}

// Applied is the filter of the last submitted search, zero when none is active.
func (c *Controller) Applied() Filter {
	return c.applied
}

func (c *Controller) Phase() Phase {
	switch {
	case c.state.IsSuccess && c.resultCount > 0:
		return PhaseSubmittedSuccess
	case c.state.IsSuccess:
		return PhaseSubmittedEmpty
	case c.state.IsSearching || c.state.Query != "":
		return PhaseActive
	default:
		return PhaseIdle
	}
}

func (c *Controller) Focus() {
	c.state.IsSearching = true
}

func (c *Controller) ChangeQuery(text string) {
	c.state.Query = text
	c.state.IsSearching = true
}

func (c *Controller) ChangeOption(opt Option) error {
	if !slices.Contains(c.options, opt) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, opt)
	}
	c.state.Option = opt
	return nil
}

// Seed presets the query from a list URL before the initial search.
func (c *Controller) Seed(f Filter) {
	if slices.Contains(c.options, f.Option) {
		c.state.Option = f.Option
	}
	c.state.Query = f.Query
}

// Submit with an empty query follows the same path as Clear.
func (c *Controller) Submit() Effect {
	query := strings.TrimSpace(c.state.Query)
	if query == "" {
		return c.Clear()
	}
	c.state.Query = query
	c.state.IsSearching = true
	c.applied = Filter{Option: c.state.Option, Query: query}
	return Effect{Kind: EffectSearch, Filter: c.applied}
}

// Clear re-fetches the full list only when a submitted search was narrowing it.
func (c *Controller) Clear() Effect {
	wasFiltered := c.state.IsSuccess || !c.applied.IsZero()
	c.state.Query = ""
	c.state.IsSearching = false
	c.state.IsSuccess = false
	c.applied = Filter{}
	c.resultCount = 0
	if wasFiltered {
		return Effect{Kind: EffectFetchAll}
	}
	return Effect{Kind: EffectNone}
}

func (c *Controller) Blur() Effect {
	if c.state.Query != "" {
		return Effect{Kind: EffectNone}
	}
	if c.state.IsSuccess || !c.applied.IsZero() {
		return c.Clear()
	}
	c.state.IsSearching = false
	return Effect{Kind: EffectNone}
}

// Succeeded records a completed fresh search returning n channels.
func (c *Controller) Succeeded(n int) {
	c.state.IsSuccess = true
	c.resultCount = n
}

func (c *Controller) Failed() {
	c.state.IsSuccess = false
	c.resultCount = 0
}
