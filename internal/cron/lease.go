package cron

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type leaseStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(name string) string
}

// Claim identifies one replica's hold on a job window.
type Claim struct {
	Key   string
	Owner string
}

// Leaser hands out job windows across replicas.
type Leaser interface {
	Claim(ctx context.Context, job string, window time.Time, ttl time.Duration) (Claim, bool, error)
	Yield(ctx context.Context, claim Claim) error
}

// WindowLeases claims job windows in Redis. A successful run keeps its
// claim until the key expires, so the window is executed once per
// deployment; a failed run yields it back for another attempt.
type WindowLeases struct {
	store     leaseStore
	namespace string
}

func NewWindowLeases(store leaseStore, namespace string) (*WindowLeases, error) {
	if store == nil {
		return nil, errors.New("redis client required for cron leases")
	}
	if namespace == "" {
		namespace = "local"
	}
	return &WindowLeases{store: store, namespace: namespace}, nil
}

func (l *WindowLeases) key(job string, window time.Time) string {
	return l.store.LockKey(l.namespace + ":" + job + ":" + strconv.FormatInt(window.Unix(), 10))
}

func (l *WindowLeases) Claim(ctx context.Context, job string, window time.Time, ttl time.Duration) (Claim, bool, error) {
	if ttl <= 0 {
		return Claim{}, false, fmt.Errorf("lease ttl for %s must be positive", job)
	}
	claim := Claim{Key: l.key(job, window), Owner: uuid.NewString()}
	ok, err := l.store.SetNX(ctx, claim.Key, claim.Owner, ttl)
	if err != nil {
		return Claim{}, false, fmt.Errorf("claim %s: %w", claim.Key, err)
	}
	if !ok {
		return Claim{}, false, nil
	}
	return claim, true, nil
}

// Yield deletes the claim only while it still belongs to the caller.
func (l *WindowLeases) Yield(ctx context.Context, claim Claim) error {
	if claim.Key == "" {
		return nil
	}
	owner, err := l.store.Get(ctx, claim.Key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read claim owner: %w", err)
	}
	if owner != claim.Owner {
		return nil
	}
	if err := l.store.Del(ctx, claim.Key); err != nil {
		return fmt.Errorf("yield %s: %w", claim.Key, err)
	}
	return nil
}
