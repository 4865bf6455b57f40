package console

import (
	"encoding/json"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/search"
	"github.com/foxseedlab/modconsole/internal/session"
)

// FrameType identifies a frame on a view stream.
type FrameType string

const (
	FrameState     FrameType = "state"
	FrameNavigate  FrameType = "navigate"
	FrameNotice    FrameType = "notice"
	FrameLiveReset FrameType = "live_reset"
)

// Envelope wraps every stream frame with its type.
type Envelope struct {
	Type FrameType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func encodeFrame(t FrameType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: t, Data: data})
}

type ChannelView struct {
	Kind channel.Kind `json:"kind"`
	channel.Record
}

type StateView struct {
	Version        uint64        `json:"version"`
	Kind           channel.Kind  `json:"kind"`
	Channels       []ChannelView `json:"channels"`
	Selected       []string      `json:"selected"`
	Current        *ChannelView  `json:"current,omitempty"`
	Search         search.State  `json:"search"`
	SearchPhase    string        `json:"search_phase"`
	Options        []string      `json:"options"`
	HasMore        bool          `json:"has_more"`
	IsFetching     bool          `json:"is_fetching"`
	IsFetchingMore bool          `json:"is_fetching_more"`
}

type NavigateFrame struct {
	Location string `json:"location"`
}

type LiveResetFrame struct {
	ChannelURL string `json:"channel_url"`
}

func channelView(c channel.Channel) ChannelView {
	return ChannelView{Kind: c.Kind(), Record: channel.Encode(c)}
}

func stateView(st session.State) StateView {
	v := StateView{
		Version:        st.Version,
		Kind:           st.Kind,
		Channels:       make([]ChannelView, 0, len(st.Channels)),
		Selected:       channel.URLs(st.Selected),
		Search:         st.Search,
		SearchPhase:    st.SearchPhase.String(),
		Options:        make([]string, 0, len(st.SearchOptions)),
		HasMore:        st.HasMore,
		IsFetching:     st.IsFetching,
		IsFetchingMore: st.IsFetchingMore,
	}
	for _, c := range st.Channels {
		v.Channels = append(v.Channels, channelView(c))
	}
	for _, o := range st.SearchOptions {
		v.Options = append(v.Options, string(o))
	}
	if st.Current != nil {
		cur := channelView(st.Current)
		v.Current = &cur
	}
	return v
}
