package guard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "user:a")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, err := limiter.Allow(ctx, "user:a")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("4th request should be denied")
	}

	// Other keys are unaffected.
	ok, _ = limiter.Allow(ctx, "user:b")
	if !ok {
		t.Error("b's budget must be independent of a's")
	}

	// A new window resets the count.
	mr.FastForward(time.Minute + time.Second)
	ok, _ = limiter.Allow(ctx, "user:a")
	if !ok {
		t.Error("new window should allow again")
	}
}

func TestRedisLimiter_ErrorWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisLimiter(client, 3, time.Minute)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "user:a")
	if err == nil {
		t.Error("expected error when redis is unreachable")
	}
}
