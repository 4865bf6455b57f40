package gate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/gate"
	"github.com/foxseedlab/modconsole/internal/repository"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

const (
	decisionTTL   = time.Minute
	lookupTimeout = 3 * time.Second

	reasonNotProvisioned = "operator is not provisioned for this channel kind"
	reasonLookupFailed   = "operator provisioning could not be verified"
)

type cachedDecision struct {
	decision  gate.Decision
	expiresAt time.Time
}

// ProvisioningGate admits the operator into gated kinds only when the
// operator has been provisioned for that kind. Decisions are cached for
// decisionTTL; lookup failures deny and are not cached.
type ProvisioningGate struct {
	repo       repository.OperatorRepository
	operatorID string
	gated      map[channel.Kind]bool
	cache      *lru.Cache
	group      singleflight.Group
	now        func() time.Time
}

var _ gate.Gate = (*ProvisioningGate)(nil)

func NewProvisioningGate(repo repository.OperatorRepository, operatorID string, gatedKinds []channel.Kind, cacheSize int) (*ProvisioningGate, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gate cache: %w", err)
	}
	gated := make(map[channel.Kind]bool, len(gatedKinds))
	for _, k := range gatedKinds {
		gated[k] = true
	}
	return &ProvisioningGate{
		repo:       repo,
		operatorID: operatorID,
		gated:      gated,
		cache:      cache,
		now:        time.Now,
	}, nil
}

func (g *ProvisioningGate) CanEnter(ctx context.Context, kind channel.Kind) gate.Decision {
	if !g.gated[kind] {
		return gate.Allow()
	}
	key := g.operatorID + "/" + string(kind)
	if v, ok := g.cache.Get(key); ok {
		c := v.(cachedDecision)
		if g.now().Before(c.expiresAt) {
			return c.decision
		}
		g.cache.Remove(key)
	}

	v, err, shared := g.group.Do(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()
		ok, err := g.repo.IsOperatorProvisioned(lctx, g.operatorID, kind)
		if err != nil {
			return nil, err
		}
		d := gate.Allow()
		if !ok {
			d = gate.Deny(reasonNotProvisioned)
		}
		g.cache.Add(key, cachedDecision{decision: d, expiresAt: g.now().Add(decisionTTL)})
		return d, nil
	})
	if err != nil {
		slog.Error("failed to look up operator provisioning", "error", err, "kind", kind, "operator_id", g.operatorID, "shared", shared)
		return gate.Deny(reasonLookupFailed)
	}
	d := v.(gate.Decision)
	if !d.Allowed {
		slog.Info("operator not provisioned for channel kind", "kind", kind, "operator_id", g.operatorID)
	}
	return d
}
