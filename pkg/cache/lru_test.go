package cache_test

import (
	"sync"
	"testing"
	"time"

	"meetpay/pkg/cache"
	"meetpay/pkg/logger"
	"meetpay/pkg/metric"
)

func newTestCache(t *testing.T, capacity int) *cache.LRUCache[int, string] {
	t.Helper()

	c, err := cache.NewLRUCache[int, string](
		"test", capacity, logger.NewNop(), metric.NewFactory().Cache(),
	)
	if err != nil {
		t.Fatalf("NewLRUCache: %v", err)
	}
	return c
}

type cacheOperation struct {
	op    string
	key   int
	value string
	ttl   time.Duration
}

func TestLRUCache_GetPut(t *testing.T) {
	testCases := []struct {
		desc     string
		capacity int
		ops      []cacheOperation
		present  map[int]string
		absent   []int
		len      int
	}{
		{
			desc:     "BasicGetPut",
			capacity: 2,
			ops: []cacheOperation{
				{"put", 1, "one", 0},
				{"put", 2, "two", 0},
			},
			present: map[int]string{1: "one", 2: "two"},
			len:     2,
		},
		{
			desc:     "LRUEviction",
			capacity: 2,
			ops: []cacheOperation{
				{"put", 1, "one", 0},
				{"put", 2, "two", 0},
				{"put", 3, "three", 0},
			},
			present: map[int]string{2: "two", 3: "three"},
			absent:  []int{1},
			len:     2,
		},
		{
			desc:     "GetRefreshesRecency",
			capacity: 2,
			ops: []cacheOperation{
				{"put", 1, "one", 0},
				{"put", 2, "two", 0},
				{"get", 1, "", 0},
				{"put", 3, "three", 0},
			},
			present: map[int]string{1: "one", 3: "three"},
			absent:  []int{2},
			len:     2,
		},
		{
			desc:     "OverwriteExistingKey",
			capacity: 2,
			ops: []cacheOperation{
				{"put", 1, "one", 0},
				{"put", 1, "uno", 0},
			},
			present: map[int]string{1: "uno"},
			len:     1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			c := newTestCache(t, tc.capacity)

			for _, op := range tc.ops {
				switch op.op {
				case "put":
					c.Put(op.key, op.value, op.ttl)
				case "get":
					c.Get(op.key)
				}
			}

			for key, want := range tc.present {
				got, ok := c.Get(key)
				if !ok || got != want {
					t.Errorf("Get(%d) = %q, %v; want %q, true", key, got, ok, want)
				}
			}
			for _, key := range tc.absent {
				if _, ok := c.Get(key); ok {
					t.Errorf("Get(%d) should miss", key)
				}
			}
			if c.Len() != tc.len {
				t.Errorf("Len() = %d; want %d", c.Len(), tc.len)
			}
		})
	}
}

func TestLRUCache_TTL(t *testing.T) {
	testCases := []struct {
		desc  string
		ttl   time.Duration
		sleep time.Duration
		ok    bool
	}{
		{desc: "TTLNotExpired", ttl: 200 * time.Millisecond, sleep: 100 * time.Millisecond, ok: true},
		{desc: "TTLExpired", ttl: 100 * time.Millisecond, sleep: 200 * time.Millisecond, ok: false},
		{desc: "NoTTL", ttl: 0, sleep: 300 * time.Millisecond, ok: true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			c := newTestCache(t, 1)
			c.Put(1, "one", tc.ttl)
			time.Sleep(tc.sleep)

			_, ok := c.Get(1)
			if ok != tc.ok {
				t.Errorf("Get() ok = %v; want %v", ok, tc.ok)
			}
		})
	}
}

func TestLRUCache_Has(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, 2)
	c.Put(1, "one", 0)
	c.Put(2, "two", 50*time.Millisecond)

	if !c.Has(1) {
		t.Error("Has(1) = false; want true")
	}
	if c.Has(3) {
		t.Error("Has(3) = true; want false")
	}

	time.Sleep(100 * time.Millisecond)
	if c.Has(2) {
		t.Error("Has(2) after TTL expiry = true; want false")
	}
}

func TestLRUCache_OnEvicted(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, 2)

	var (
		mu      sync.Mutex
		evicted []int
	)
	c.SetOnEvicted(func(key int, _ string) {
		mu.Lock()
		defer mu.Unlock()
		evicted = append(evicted, key)
	})

	c.Put(1, "one", 0)
	c.Put(2, "two", 0)
	c.Put(3, "three", 0)

	mu.Lock()
	defer mu.Unlock()
	if len(evicted) != 1 || evicted[0] != 1 {
		t.Errorf("evicted = %v; want [1]", evicted)
	}
}

func TestLRUCache_Purge(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, 3)
	c.Put(1, "one", 0)
	c.Put(2, "two", 0)

	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d; want 0", c.Len())
	}
	if c.Has(1) || c.Has(2) {
		t.Error("purged keys must not be present")
	}
}

func TestLRUCache_Cleanup(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, 10)
	c.StartCleanup(20 * time.Millisecond)
	defer c.StopCleanup()

	c.Put(1, "one", 30*time.Millisecond)
	c.Put(2, "two", 0)

	time.Sleep(100 * time.Millisecond)

	if c.Has(1) {
		t.Error("expired entry must be cleaned up")
	}
	if !c.Has(2) {
		t.Error("entry without TTL must survive cleanup")
	}
}

func TestNewLRUCache_InvalidCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1} {
		if _, err := cache.NewLRUCache[int, string](
			"test", capacity, logger.NewNop(), metric.NewFactory().Cache(),
		); err == nil {
			t.Errorf("NewLRUCache(capacity=%d) expected error", capacity)
		}
	}
}
