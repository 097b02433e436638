package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedCustomer struct {
	ID    uint     `json:"id"`
	Name  string   `json:"name"`
	Score *float64 `json:"score,omitempty"`
}

func newTestHelper(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, prefix), srv
}

func TestCacheHelperRoundTrip(t *testing.T) {
	ctx := context.Background()
	helper, srv := newTestHelper(t, "customer:")

	score := 0.82
	want := cachedCustomer{ID: 7, Name: "Marta Vidal", Score: &score}
	if err := helper.Set(ctx, "id:7", want, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if !srv.Exists("customer:id:7") {
		t.Fatalf("expected prefixed key customer:id:7 in redis")
	}

	var got cachedCustomer
	if err := helper.Get(ctx, "id:7", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != want.ID || got.Name != want.Name || got.Score == nil || *got.Score != score {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestCacheHelperMiss(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t, "customer:")

	var got cachedCustomer
	if err := helper.Get(ctx, "id:404", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("miss error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperNilClient(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "customer:")

	var got cachedCustomer
	if err := helper.Get(ctx, "id:1", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get error = %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.Set(ctx, "id:1", cachedCustomer{ID: 1}, time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}
	if err := helper.Delete(ctx, "id:1"); err != nil {
		t.Errorf("Delete with nil client should be a no-op, got %v", err)
	}
	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Errorf("InvalidatePattern with nil client should be a no-op, got %v", err)
	}
}

func TestCacheHelperDelete(t *testing.T) {
	ctx := context.Background()
	helper, srv := newTestHelper(t, "customer:")

	for i := 1; i <= 3; i++ {
		key := fmt.Sprintf("id:%d", i)
		if err := helper.Set(ctx, key, cachedCustomer{ID: uint(i)}, time.Minute); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	if err := helper.Delete(ctx, "id:1", "id:2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if srv.Exists("customer:id:1") || srv.Exists("customer:id:2") {
		t.Errorf("deleted keys should be gone")
	}
	if !srv.Exists("customer:id:3") {
		t.Errorf("untouched key should survive")
	}
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	helper, srv := newTestHelper(t, "customer:")

	helper.Set(ctx, "list:page1", []uint{1, 2}, time.Minute)
	helper.Set(ctx, "list:page2", []uint{3}, time.Minute)
	helper.Set(ctx, "id:9", cachedCustomer{ID: 9}, time.Minute)

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}
	if srv.Exists("customer:list:page1") || srv.Exists("customer:list:page2") {
		t.Errorf("list entries should be invalidated")
	}
	if !srv.Exists("customer:id:9") {
		t.Errorf("record entry should survive the list invalidation")
	}
}

func TestCacheOrExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches on miss and serves from cache afterwards", func(t *testing.T) {
		helper, _ := newTestHelper(t, "stats:")

		calls := 0
		fetch := func() (interface{}, error) {
			calls++
			return map[string]int64{"INTERESTED": 4}, nil
		}

		var first map[string]int64
		if err := helper.CacheOrExecute(ctx, "by_status", &first, time.Minute, fetch); err != nil {
			t.Fatalf("first CacheOrExecute: %v", err)
		}
		if first["INTERESTED"] != 4 {
			t.Errorf("first result = %v", first)
		}

		// The fill happens on a background goroutine; poll briefly.
		deadline := time.Now().Add(2 * time.Second)
		for {
			var cached map[string]int64
			if err := helper.Get(ctx, "by_status", &cached); err == nil {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("cache was never filled after fetch")
			}
			time.Sleep(10 * time.Millisecond)
		}

		var second map[string]int64
		if err := helper.CacheOrExecute(ctx, "by_status", &second, time.Minute, fetch); err != nil {
			t.Fatalf("second CacheOrExecute: %v", err)
		}
		if calls != 1 {
			t.Errorf("fetch calls = %d, want 1 after warm cache", calls)
		}
	})

	t.Run("propagates fetch errors", func(t *testing.T) {
		helper, _ := newTestHelper(t, "stats:")

		wantErr := errors.New("db down")
		var dest map[string]int64
		err := helper.CacheOrExecute(ctx, "by_status", &dest, time.Minute, func() (interface{}, error) {
			return nil, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
	})
}

func TestCacheManager(t *testing.T) {
	t.Run("nil client keeps every helper usable", func(t *testing.T) {
		cm := NewCacheManager(nil)
		if err := cm.HealthCheck(context.Background()); !errors.Is(err, ErrCacheNotAvailable) {
			t.Errorf("HealthCheck = %v, want ErrCacheNotAvailable", err)
		}
		if err := cm.Customer.Set(context.Background(), "id:1", cachedCustomer{ID: 1}, time.Minute); err != nil {
			t.Errorf("Set on disabled cache = %v", err)
		}
	})

	t.Run("helpers are prefixed per domain", func(t *testing.T) {
		srv := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
		defer client.Close()

		cm := NewCacheManager(client)
		if err := cm.HealthCheck(context.Background()); err != nil {
			t.Fatalf("HealthCheck: %v", err)
		}

		cm.Customer.Set(context.Background(), "id:5", cachedCustomer{ID: 5}, time.Minute)
		cm.User.Set(context.Background(), "id:5", cachedCustomer{ID: 5}, time.Minute)

		if !srv.Exists("customer:id:5") || !srv.Exists("user:id:5") {
			t.Errorf("expected both domain-prefixed keys, have %v", srv.Keys())
		}
	})
}
