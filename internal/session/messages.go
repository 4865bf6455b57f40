package session

import (
	"fmt"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/search"
)

const (
	messageListFailedFormat     = "Could not load %s channels. Try again in a moment."
	messageMoreFailedFormat     = "Could not load more %s channels. Scroll again to retry."
	messageSearchFailedFormat   = "Searching %s channels by %s for %q failed."
	messageAccessDeniedFormat   = "You cannot open channel %s: %s"
	messageAccessDeniedFallback = "access denied"
)

func fetchFailedMessage(kind channel.Kind, f search.Filter, init bool) string {
	switch {
	case !f.IsZero() && init:
		return fmt.Sprintf(messageSearchFailedFormat, kind, f.Option, f.Query)
	case init:
		return fmt.Sprintf(messageListFailedFormat, kind)
	default:
		return fmt.Sprintf(messageMoreFailedFormat, kind)
	}
}

func accessDeniedMessage(url, reason string) string {
	if reason == "" {
		reason = messageAccessDeniedFallback
	}
	return fmt.Sprintf(messageAccessDeniedFormat, url, reason)
}
