package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestJobLock(t *testing.T) *RedisJobLock {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisJobLock(client, "test:sweep_lock")
}

func TestRedisJobLock_AcquireDeniesSecondHolder(t *testing.T) {
	lock := newTestJobLock(t)
	ctx := context.Background()

	token, acquired, err := lock.Acquire(ctx, "overdue_quotations", time.Minute)
	if err != nil {
		t.Fatalf("first acquire returned error: %v", err)
	}
	if !acquired || token == "" {
		t.Fatal("expected first acquire to grant the lease")
	}

	_, acquired, err = lock.Acquire(ctx, "overdue_quotations", time.Minute)
	if err != nil {
		t.Fatalf("second acquire returned error: %v", err)
	}
	if acquired {
		t.Fatal("expected second acquire to be denied while the lease is held")
	}
}

func TestRedisJobLock_IndependentJobNames(t *testing.T) {
	lock := newTestJobLock(t)
	ctx := context.Background()

	if _, acquired, _ := lock.Acquire(ctx, "overdue_quotations", time.Minute); !acquired {
		t.Fatal("expected overdue lease to be granted")
	}
	if _, acquired, _ := lock.Acquire(ctx, "warning_decay", time.Minute); !acquired {
		t.Fatal("expected decay lease to be granted independently")
	}
}

func TestRedisJobLock_ReleaseFreesLease(t *testing.T) {
	lock := newTestJobLock(t)
	ctx := context.Background()

	token, _, err := lock.Acquire(ctx, "overdue_quotations", time.Minute)
	if err != nil {
		t.Fatalf("acquire returned error: %v", err)
	}
	if err := lock.Release(ctx, "overdue_quotations", token); err != nil {
		t.Fatalf("release returned error: %v", err)
	}

	_, acquired, err := lock.Acquire(ctx, "overdue_quotations", time.Minute)
	if err != nil {
		t.Fatalf("re-acquire returned error: %v", err)
	}
	if !acquired {
		t.Fatal("expected lease to be available after release")
	}
}

func TestRedisJobLock_ReleaseWithStaleTokenKeepsLease(t *testing.T) {
	lock := newTestJobLock(t)
	ctx := context.Background()

	if _, _, err := lock.Acquire(ctx, "overdue_quotations", time.Minute); err != nil {
		t.Fatalf("acquire returned error: %v", err)
	}
	if err := lock.Release(ctx, "overdue_quotations", "stale-token"); err != nil {
		t.Fatalf("release returned error: %v", err)
	}

	_, acquired, err := lock.Acquire(ctx, "overdue_quotations", time.Minute)
	if err != nil {
		t.Fatalf("re-acquire returned error: %v", err)
	}
	if acquired {
		t.Fatal("expected stale-token release to leave the lease intact")
	}
}
