package repository

import (
	"fmt"

	"github.com/foxseedlab/modconsole/internal/channel"
)

// ChannelRow is one stored channel. Kind is the column the row was filed
// under; the record itself still has to decode to that kind.
type ChannelRow struct {
	Kind channel.Kind
	channel.Record
}

func (r ChannelRow) ToChannel() (channel.Channel, error) {
	c, err := channel.Decode(r.Record)
	if err != nil {
		return nil, err
	}
	if c.Kind() != r.Kind {
		return nil, fmt.Errorf("channel %s stored as %s decodes as %s: %w", r.URL, r.Kind, c.Kind(), channel.ErrInconsistentChannel)
	}
	return c, nil
}

// Keyset is the position after which a listing continues. Channels are listed
// newest first, ties broken by URL.
type Keyset struct {
	CreatedAt int64
	URL       string
}

func KeysetOf(r ChannelRow) Keyset {
	return Keyset{CreatedAt: r.CreatedAt, URL: r.URL}
}
