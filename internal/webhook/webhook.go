package webhook

import (
	"context"
	"time"

	"github.com/foxseedlab/modconsole/internal/notice"
)

const NoticeWebhookSchemaVersion = 1

type NoticeWebhookPayload struct {
	SchemaVersion int    `json:"schema_version"`
	Level         string `json:"level"`
	ChannelKind   string `json:"channel_kind,omitempty"`
	Message       string `json:"message"`
	OccurredAt    string `json:"occurred_at"`
}

type Sender interface {
	SendNotice(ctx context.Context, payload NoticeWebhookPayload) error
}

type noticeForwarder struct {
	sender Sender
	now    func() time.Time
}

func NewNoticeForwarder(sender Sender) notice.Notifier {
	return &noticeForwarder{sender: sender, now: time.Now}
}

func (f *noticeForwarder) Notify(ctx context.Context, n notice.Notice) error {
	return f.sender.SendNotice(ctx, buildNoticePayload(n, f.now()))
}

func buildNoticePayload(n notice.Notice, at time.Time) NoticeWebhookPayload {
	return NoticeWebhookPayload{
		SchemaVersion: NoticeWebhookSchemaVersion,
		Level:         string(n.Level),
		ChannelKind:   string(n.Kind),
		Message:       n.Message,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
