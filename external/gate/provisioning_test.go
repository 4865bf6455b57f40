package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foxseedlab/modconsole/internal/channel"
)

type mockOperatorRepository struct {
	provisioned map[channel.Kind]bool
	err         error
	calls       int
}

func (m *mockOperatorRepository) IsOperatorProvisioned(_ context.Context, _ string, kind channel.Kind) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	return m.provisioned[kind], nil
}

func newTestGate(t *testing.T, repo *mockOperatorRepository) *ProvisioningGate {
	t.Helper()
	g, err := NewProvisioningGate(repo, "operator-1", []channel.Kind{channel.KindOpen}, 8)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return g
}

func TestCanEnter_UngatedKind(t *testing.T) {
	repo := &mockOperatorRepository{}
	g := newTestGate(t, repo)

	if d := g.CanEnter(context.Background(), channel.KindGroup); !d.Allowed {
		t.Fatalf("expected group kind to be allowed, got %+v", d)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no lookup for ungated kind, got %d", repo.calls)
	}
}

func TestCanEnter_ProvisionedIsCached(t *testing.T) {
	repo := &mockOperatorRepository{provisioned: map[channel.Kind]bool{channel.KindOpen: true}}
	g := newTestGate(t, repo)

	for range 3 {
		if d := g.CanEnter(context.Background(), channel.KindOpen); !d.Allowed {
			t.Fatalf("expected allowed, got %+v", d)
		}
	}
	if repo.calls != 1 {
		t.Fatalf("expected one lookup, got %d", repo.calls)
	}
}

func TestCanEnter_NotProvisioned(t *testing.T) {
	g := newTestGate(t, &mockOperatorRepository{})

	d := g.CanEnter(context.Background(), channel.KindOpen)
	if d.Allowed || d.Reason != reasonNotProvisioned {
		t.Fatalf("expected not-provisioned denial, got %+v", d)
	}
}

func TestCanEnter_LookupErrorDeniesWithoutCaching(t *testing.T) {
	repo := &mockOperatorRepository{err: errors.New("connection reset")}
	g := newTestGate(t, repo)

	if d := g.CanEnter(context.Background(), channel.KindOpen); d.Allowed || d.Reason != reasonLookupFailed {
		t.Fatalf("expected lookup-failed denial, got %+v", d)
	}
	repo.err = nil
	repo.provisioned = map[channel.Kind]bool{channel.KindOpen: true}
	if d := g.CanEnter(context.Background(), channel.KindOpen); !d.Allowed {
		t.Fatalf("expected allowed after recovery, got %+v", d)
	}
	if repo.calls != 2 {
		t.Fatalf("expected two lookups, got %d", repo.calls)
	}
}

func TestCanEnter_ExpiredDecisionIsRefreshed(t *testing.T) {
	repo := &mockOperatorRepository{}
	g := newTestGate(t, repo)
	now := time.Unix(1700000000, 0)
	g.now = func() time.Time { return now }

	g.CanEnter(context.Background(), channel.KindOpen)
	repo.provisioned = map[channel.Kind]bool{channel.KindOpen: true}
	now = now.Add(decisionTTL + time.Second)

	if d := g.CanEnter(context.Background(), channel.KindOpen); !d.Allowed {
		t.Fatalf("expected refreshed decision to allow, got %+v", d)
	}
	if repo.calls != 2 {
		t.Fatalf("expected two lookups, got %d", repo.calls)
	}
}

func TestNewProvisioningGate_InvalidCacheSize(t *testing.T) {
	if _, err := NewProvisioningGate(&mockOperatorRepository{}, "operator-1", nil, 0); err == nil {
		t.Fatal("expected error for zero cache size")
	}
}
