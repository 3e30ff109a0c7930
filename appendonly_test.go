package conhashmap

import (
	"sync"
	"testing"

	"github.com/kolkov/conhashmap/khash"
)

// S1 — Basic round-trip.
func TestAppendOnlyBasicRoundTrip(t *testing.T) {
	m := NewAppendOnly[int, int](16, khash.Int)

	m.Set(7, 42)
	if v, ok := m.Get(7); !ok || v != 42 {
		t.Fatalf("Get(7) = (%d, %v), want (42, true)", v, ok)
	}

	prev, existed := m.SetIfAbsent(7, 99)
	if !existed || prev != 42 {
		t.Fatalf("SetIfAbsent(7, 99) = (%d, %v), want (42, true)", prev, existed)
	}
	if v, ok := m.Get(7); !ok || v != 42 {
		t.Fatalf("Get(7) after SetIfAbsent = (%d, %v), want (42, true)", v, ok)
	}
}

func TestAppendOnlyFreshMapIsEmpty(t *testing.T) {
	m := NewAppendOnly[string, int](4, khash.String)
	if _, ok := m.Get("missing"); ok {
		t.Fatal("Get on a fresh map should miss")
	}
}

func TestAppendOnlySetIfAbsentIdempotence(t *testing.T) {
	m := NewAppendOnly[string, int](8, khash.String)

	if _, existed := m.SetIfAbsent("k", 1); existed {
		t.Fatal("first SetIfAbsent should report no prior value")
	}
	prev, existed := m.SetIfAbsent("k", 2)
	if !existed || prev != 1 {
		t.Fatalf("second SetIfAbsent = (%d, %v), want (1, true)", prev, existed)
	}
	if v, _ := m.Get("k"); v != 1 {
		t.Fatalf("Get(\"k\") = %d, want 1", v)
	}
}

func TestAppendOnlyBucketCountOne(t *testing.T) {
	m := NewAppendOnly[int, int](1, khash.Int)
	for i := 0; i < 50; i++ {
		m.Set(i, i*10)
	}
	for i := 0; i < 50; i++ {
		if v, ok := m.Get(i); !ok || v != i*10 {
			t.Fatalf("Get(%d) = (%d, %v), want (%d, true)", i, v, ok, i*10)
		}
	}
}

func TestNewAppendOnlyPanicsOnInvalidBucketCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for bucketCount 0")
		}
	}()
	NewAppendOnly[int, int](0, khash.Int)
}

// S5-style high-contention read, scaled down for a unit test budget.
func TestAppendOnlyConcurrentReadsSeeConsistentValue(t *testing.T) {
	m := NewAppendOnly[int, int](16, khash.Int)
	m.Set(2, 123)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50000; i++ {
				if v, ok := m.Get(2); !ok || v != 123 {
					t.Errorf("Get(2) = (%d, %v), want (123, true)", v, ok)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestAppendOnlyConcurrentWritersConsistentWithReference(t *testing.T) {
	const keys = 200
	m := NewAppendOnly[int, int](64, khash.Int)

	var mu sync.Mutex
	reference := make(map[int]int)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				k := i % keys
				v := g*1000000 + i
				m.Set(k, v)
				mu.Lock()
				reference[k] = v
				mu.Unlock()
			}
		}(g)
	}
	wg.Wait()

	for k := 0; k < keys; k++ {
		if _, ok := m.Get(k); !ok {
			t.Fatalf("key %d missing after concurrent writes", k)
		}
	}
}
