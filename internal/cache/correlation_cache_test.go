package cache

import (
	"context"
	"testing"
	"time"

	"surveycast/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestCache backs the cache with an in-process Redis server
func newTestCache(t *testing.T, ttl time.Duration) (*CorrelationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCorrelationCache(rdb, ttl), mr
}

func entry(runID, token string, recipient int64, question int) *model.CorrelationEntry {
	return &model.CorrelationEntry{
		Token:         token,
		RunID:         runID,
		RecipientID:   recipient,
		QuestionIndex: question,
		Prompt:        "Pick",
		Options:       []string{"a", "b"},
	}
}

func TestCorrelationCacheSingleUse(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	if err := c.Put(ctx, entry("run-1", "tok-1", 7, 1)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Take(ctx, "run-1", "tok-1")
	if err != nil || got == nil {
		t.Fatalf("Take = %+v, %v", got, err)
	}
	if got.RecipientID != 7 || got.QuestionIndex != 1 || len(got.Options) != 2 {
		t.Errorf("entry = %+v", got)
	}

	// a replayed token finds nothing
	if again, err := c.Take(ctx, "run-1", "tok-1"); err != nil || again != nil {
		t.Fatalf("second Take = %+v, %v, want nil", again, err)
	}

	if err := c.Restore(ctx, got); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	restored, err := c.Take(ctx, "run-1", "tok-1")
	if err != nil || restored == nil || restored.RecipientID != 7 {
		t.Fatalf("Take after Restore = %+v, %v", restored, err)
	}
}

func TestCorrelationCacheUnknownToken(t *testing.T) {
	c, _ := newTestCache(t, 0)
	got, err := c.Take(context.Background(), "run-1", "never-sent")
	if err != nil || got != nil {
		t.Fatalf("Take = %+v, %v, want nil, nil", got, err)
	}
}

func TestCorrelationCacheResetIsPerRun(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	for _, e := range []*model.CorrelationEntry{
		entry("run-1", "tok-1", 1, 0),
		entry("run-1", "tok-2", 2, 0),
		entry("run-2", "tok-1", 1, 0),
	} {
		if err := c.Put(ctx, e); err != nil {
			t.Fatalf("Put(%s/%s): %v", e.RunID, e.Token, err)
		}
	}

	if err := c.Reset(ctx, "run-1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	for _, tok := range []string{"tok-1", "tok-2"} {
		if gone, err := c.Take(ctx, "run-1", tok); err != nil || gone != nil {
			t.Errorf("run-1 %s after Reset = %+v, %v", tok, gone, err)
		}
	}
	kept, err := c.Take(ctx, "run-2", "tok-1")
	if err != nil || kept == nil {
		t.Fatalf("run-2 entry lost on run-1 Reset: %+v, %v", kept, err)
	}

	// resetting a run with no entries is fine
	if err := c.Reset(ctx, "run-3"); err != nil {
		t.Fatalf("Reset(empty): %v", err)
	}
}

func TestCorrelationCacheExpiry(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		survive bool
	}{
		{"no expiry by default", 0, true},
		{"negative means no expiry", -time.Minute, true},
		{"opt-in ttl", time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mr := newTestCache(t, tt.ttl)
			ctx := context.Background()
			if err := c.Put(ctx, entry("run-1", "tok-1", 1, 0)); err != nil {
				t.Fatalf("Put: %v", err)
			}

			mr.FastForward(30 * 24 * time.Hour)

			got, err := c.Take(ctx, "run-1", "tok-1")
			if err != nil {
				t.Fatalf("Take: %v", err)
			}
			if (got != nil) != tt.survive {
				t.Errorf("entry present = %v, want %v", got != nil, tt.survive)
			}
		})
	}
}

func TestCorrelationCacheKey(t *testing.T) {
	c := NewCorrelationCache(nil, 0)
	if got := c.key("run-1", "abc"); got != "run:run-1:corr:abc" {
		t.Errorf("key = %q", got)
	}
	if c.ttl != 0 {
		t.Errorf("default ttl = %s, want no expiry", c.ttl)
	}
}
