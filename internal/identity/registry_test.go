package identity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type item struct{ name string }

func TestRegistry_EnsureIsStable(t *testing.T) {
	r := New[*item]()
	a, b := &item{"a"}, &item{"b"}

	idA := r.Ensure(a)
	idB := r.Ensure(b)

	require.Equal(t, idA, r.Ensure(a))
	require.NotEqual(t, idA, idB)
	require.Equal(t, 2, r.Len())
}

func TestRegistry_PointerIdentityNotValue(t *testing.T) {
	r := New[*item]()
	a1, a2 := &item{"a"}, &item{"a"}

	require.NotEqual(t, r.Ensure(a1), r.Ensure(a2))
}

func TestRegistry_DeleteNeverReusesIDs(t *testing.T) {
	r := New[*item]()
	a := &item{"a"}

	first := r.Ensure(a)
	r.Delete(a)

	_, ok := r.Lookup(a)
	require.False(t, ok)
	require.Greater(t, r.Ensure(a), first)
}

func TestRegistry_ReleaseOnlyMatchingID(t *testing.T) {
	r := New[*item]()
	a := &item{"a"}

	stale := r.Ensure(a)
	r.Delete(a)
	fresh := r.Ensure(a)

	require.False(t, r.Release(a, stale), "stale id must not drop the fresh one")
	id, ok := r.Lookup(a)
	require.True(t, ok)
	require.Equal(t, fresh, id)

	require.True(t, r.Release(a, fresh))
	require.Zero(t, r.Len())
}

func TestRegistry_LookupMissing(t *testing.T) {
	r := New[string]()

	_, ok := r.Lookup("nope")
	require.False(t, ok)
}

func TestRegistry_ConcurrentEnsure(t *testing.T) {
	r := New[int]()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Ensure(i)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 100, r.Len())
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		id, ok := r.Lookup(i)
		require.True(t, ok)
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

// TestProperty_IDsStrictlyIncrease verifies ids are handed out in encounter order.
func TestProperty_IDsStrictlyIncrease(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := New[int]()
		values := rapid.SliceOfDistinct(rapid.IntRange(0, 1000), rapid.ID[int]).Draw(t, "values")

		var last uint64
		for i, v := range values {
			id := r.Ensure(v)
			if i > 0 && id <= last {
				t.Fatalf("id %d not greater than previous %d", id, last)
			}
			last = id
		}
	})
}
