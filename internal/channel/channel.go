package channel

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindOpen  Kind = "open"
	KindGroup Kind = "group"
)

func (k Kind) Valid() bool {
	return k == KindOpen || k == KindGroup
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown channel kind %q", s)
	}
	return k, nil
}

var ErrInconsistentChannel = errors.New("channel record matches neither or both channel kinds")

// Base holds the fields shared by both channel kinds. URL is the identity key.
type Base struct {
	URL           string `json:"url"`
	CustomType    string `json:"custom_type,omitempty"`
	Name          string `json:"name"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	IsFrozen      bool   `json:"is_frozen"`
	CreatedAt     int64  `json:"created_at"`
}

// Channel is implemented only by Open and Group.
type Channel interface {
	Common() Base
	Kind() Kind
	sealed()
}

type Open struct {
	Base
	ParticipantCount int `json:"participant_count"`
}

func (c *Open) Common() Base { return c.Base }
func (c *Open) Kind() Kind   { return KindOpen }
func (c *Open) sealed()      {}

type Group struct {
	Base
	MemberCount   int    `json:"member_count"`
	IsSupergroup  bool   `json:"is_supergroup"`
	LastMessageAt *int64 `json:"last_message_at,omitempty"`
}

func (c *Group) Common() Base { return c.Base }
func (c *Group) Kind() Kind   { return KindGroup }
func (c *Group) sealed()      {}

func IsOpen(c Channel) bool {
	_, ok := c.(*Open)
	return ok
}

func IsGroup(c Channel) bool {
	_, ok := c.(*Group)
	return ok
}

func URLOf(c Channel) string {
	if c == nil {
		return ""
	}
	return c.Common().URL
}

func SameURL(a, b Channel) bool {
	if a == nil || b == nil {
		return false
	}
	return URLOf(a) == URLOf(b)
}

// Record is the untyped shape channels arrive in from storage or the wire.
// Exactly one of ParticipantCount and MemberCount must be set.
type Record struct {
	Base
	ParticipantCount *int   `json:"participant_count,omitempty"`
	MemberCount      *int   `json:"member_count,omitempty"`
	IsSupergroup     bool   `json:"is_supergroup,omitempty"`
	LastMessageAt    *int64 `json:"last_message_at,omitempty"`
}

func Decode(r Record) (Channel, error) {
	hasParticipants := r.ParticipantCount != nil
	hasMembers := r.MemberCount != nil
	switch {
	case hasParticipants && !hasMembers:
		if *r.ParticipantCount < 0 {
			return nil, fmt.Errorf("channel %s: negative participant count", r.URL)
		}
		return &Open{Base: r.Base, ParticipantCount: *r.ParticipantCount}, nil
	case hasMembers && !hasParticipants:
		if *r.MemberCount < 0 {
			return nil, fmt.Errorf("channel %s: negative member count", r.URL)
		}
		return &Group{
			Base:          r.Base,
			MemberCount:   *r.MemberCount,
			IsSupergroup:  r.IsSupergroup,
			LastMessageAt: r.LastMessageAt,
		}, nil
	default:
		return nil, fmt.Errorf("channel %s: %w", r.URL, ErrInconsistentChannel)
	}
}

func Encode(c Channel) Record {
	switch v := c.(type) {
	case *Open:
		n := v.ParticipantCount
		return Record{Base: v.Base, ParticipantCount: &n}
	case *Group:
		n := v.MemberCount
		return Record{Base: v.Base, MemberCount: &n, IsSupergroup: v.IsSupergroup, LastMessageAt: v.LastMessageAt}
	default:
		panic(fmt.Sprintf("channel: unexpected variant %T", c))
	}
}

func URLs(list []Channel) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, URLOf(c))
	}
	return out
}

// Dedupe keeps the first occurrence of each URL, preserving order.
func Dedupe(list []Channel) []Channel {
	seen := make(map[string]struct{}, len(list))
	out := make([]Channel, 0, len(list))
	for _, c := range list {
		u := URLOf(c)
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, c)
	}
	return out
}
