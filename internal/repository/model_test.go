package repository

import (
	"errors"
	"testing"

	"github.com/foxseedlab/modconsole/internal/channel"
)

func TestChannelRowToChannel(t *testing.T) {
	n := 3
	row := ChannelRow{
		Kind:   channel.KindGroup,
		Record: channel.Record{Base: channel.Base{URL: "g1"}, MemberCount: &n},
	}
	c, err := row.ToChannel()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !channel.IsGroup(c) {
		t.Fatalf("expected group channel, got %T", c)
	}
}

func TestChannelRowToChannel_KindMismatch(t *testing.T) {
	n := 3
	row := ChannelRow{
		Kind:   channel.KindOpen,
		Record: channel.Record{Base: channel.Base{URL: "g1"}, MemberCount: &n},
	}
	if _, err := row.ToChannel(); !errors.Is(err, channel.ErrInconsistentChannel) {
		t.Fatalf("expected ErrInconsistentChannel, got %v", err)
	}
}

func TestChannelRowToChannel_NeitherCount(t *testing.T) {
	row := ChannelRow{Kind: channel.KindOpen, Record: channel.Record{Base: channel.Base{URL: "x"}}}
	if _, err := row.ToChannel(); !errors.Is(err, channel.ErrInconsistentChannel) {
		t.Fatalf("expected ErrInconsistentChannel, got %v", err)
	}
}
