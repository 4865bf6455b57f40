package repository

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/repository"
	"github.com/foxseedlab/modconsole/internal/search"
)

var (
	ErrInvalidCursor  = errors.New("invalid cursor")
	ErrCursorMismatch = errors.New("cursor belongs to a different listing")
)

// cursorToken is the opaque continuation handed to clients. It pins the
// listing it was issued for so a cursor cannot be replayed under another filter.
type cursorToken struct {
	Kind      channel.Kind  `json:"k"`
	Option    search.Option `json:"o,omitempty"`
	Query     string        `json:"q,omitempty"`
	CreatedAt int64         `json:"t"`
	URL       string        `json:"u"`
}

func tokenAfter(q repository.ListQuery, last repository.ChannelRow) cursorToken {
	k := repository.KeysetOf(last)
	tok := cursorToken{Kind: q.Kind, CreatedAt: k.CreatedAt, URL: k.URL}
	if q.Query != "" {
		tok.Option = q.Option
		tok.Query = q.Query
	}
	return tok
}

func encodeCursor(tok cursorToken) string {
	b, err := json.Marshal(tok)
	if err != nil {
		panic(fmt.Sprintf("repository: marshal cursor: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(s string) (cursorToken, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return cursorToken{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var tok cursorToken
	if err := json.Unmarshal(b, &tok); err != nil {
		return cursorToken{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if tok.URL == "" {
		return cursorToken{}, fmt.Errorf("%w: missing position", ErrInvalidCursor)
	}
	return tok, nil
}

// resume checks that tok was issued for q and returns q positioned after it.
func (tok cursorToken) resume(q repository.ListQuery) (repository.ListQuery, error) {
	if tok.Kind != q.Kind || tok.Query != q.Query || (q.Query != "" && tok.Option != q.Option) {
		return q, ErrCursorMismatch
	}
	q.After = &repository.Keyset{CreatedAt: tok.CreatedAt, URL: tok.URL}
	return q, nil
}
