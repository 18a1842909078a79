package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Runs against a real Redis when TEST_REDIS_ADDR is set.
func TestLimiter_FixedWindow(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := New(Config{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	l := NewLimiter(client, 2, time.Minute)
	key := "test:" + uuid.NewString()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, key)
		if err != nil || !ok {
			t.Fatalf("hit %d: ok=%v err=%v", i, ok, err)
		}
	}

	ok, retry, err := l.Allow(ctx, key)
	if err != nil {
		t.Fatalf("third hit: %v", err)
	}
	if ok {
		t.Fatalf("third hit should be limited")
	}
	if retry <= 0 || retry > time.Minute {
		t.Fatalf("retryAfter out of range: %s", retry)
	}
}

func TestLimiter_UnreachableRedisReturnsError(t *testing.T) {
	client := New(Config{Addr: "127.0.0.1:1"})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, _, err := NewLimiter(client, 1, time.Second).Allow(ctx, "k"); err == nil {
		t.Fatalf("expected error from unreachable redis")
	}
}
