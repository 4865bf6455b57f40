package discord

import (
	"context"
	"testing"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/notice"
)

type mockClient struct {
	sent map[string][]string
}

func (m *mockClient) Connect(_ context.Context) error { return nil }
func (m *mockClient) Close() error                    { return nil }
func (m *mockClient) SendChannelMessage(channelID, content string) error {
	if m.sent == nil {
		m.sent = make(map[string][]string)
	}
	m.sent[channelID] = append(m.sent[channelID], content)
	return nil
}

func TestNoticeRelay_PostsToChannel(t *testing.T) {
	dc := &mockClient{}
	relay := NewNoticeRelay(dc, "mod-log")

	if err := relay.Notify(context.Background(), notice.Notice{Level: notice.LevelWarning, Kind: channel.KindOpen, Message: "denied"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := dc.sent["mod-log"]
	if len(got) != 1 || got[0] != ":warning: **[open channels]** denied" {
		t.Fatalf("unexpected messages: %+v", got)
	}
}

func TestNoticeRelay_NoChannelConfigured(t *testing.T) {
	dc := &mockClient{}
	relay := NewNoticeRelay(dc, "")

	if err := relay.Notify(context.Background(), notice.Notice{Level: notice.LevelError, Message: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dc.sent) != 0 {
		t.Fatalf("expected no messages, got %+v", dc.sent)
	}
}
