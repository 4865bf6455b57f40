package discord

import (
	"context"
	"fmt"

	"github.com/foxseedlab/modconsole/internal/notice"
)

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	SendChannelMessage(channelID, content string) error
}

type noticeRelay struct {
	client    Client
	channelID string
}

// NewNoticeRelay posts operator notices into a Discord moderation channel.
func NewNoticeRelay(client Client, channelID string) notice.Notifier {
	return &noticeRelay{client: client, channelID: channelID}
}

func (r *noticeRelay) Notify(_ context.Context, n notice.Notice) error {
	if r.channelID == "" {
		return nil
	}
	return r.client.SendChannelMessage(r.channelID, formatNotice(n))
}

func formatNotice(n notice.Notice) string {
	icon := ":information_source:"
	switch n.Level {
	case notice.LevelWarning:
		icon = ":warning:"
	case notice.LevelError:
		icon = ":x:"
	}
	if n.Kind == "" {
		return fmt.Sprintf("%s %s", icon, n.Message)
	}
	return fmt.Sprintf("%s **[%s channels]** %s", icon, n.Kind, n.Message)
}
