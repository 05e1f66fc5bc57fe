package catalog

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreStartsEmpty(t *testing.T) {
	store := NewStore()

	snap := store.Current()
	require.NotNil(t, snap, "Current should never return nil")
	assert.True(t, snap.Empty(), "store should start with an empty snapshot")
	assert.Equal(t, 0, snap.Len())
}

func TestStorePublishReplacesSnapshot(t *testing.T) {
	store := NewStore()

	first := &Snapshot{
		Records:   []ModelRecord{{ID: "openai/gpt-4o"}},
		FetchedAt: time.Now(),
	}
	store.Publish(first)
	assert.Same(t, first, store.Current())

	// A reader holding the old snapshot keeps a valid view after a swap.
	held := store.Current()
	second := &Snapshot{
		Records:   []ModelRecord{{ID: "openai/gpt-4o"}, {ID: "anthropic/claude-3"}},
		FetchedAt: time.Now(),
	}
	store.Publish(second)
	assert.Same(t, second, store.Current())
	assert.Equal(t, 1, held.Len(), "previously held snapshot must be unchanged")
}

func TestStorePublishNilFallsBackToEmpty(t *testing.T) {
	store := NewStore()
	store.Publish(nil)

	snap := store.Current()
	require.NotNil(t, snap)
	assert.True(t, snap.Empty())
}

func TestStoreConcurrentReadersAndPublishers(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap := store.Current()
				// Readers must never observe a torn snapshot: the record
				// count always matches the slice.
				if snap.Len() != len(snap.Records) {
					t.Error("torn snapshot observed")
					return
				}
			}
		}()
	}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				store.Publish(&Snapshot{
					Records:   []ModelRecord{{ID: "a"}, {ID: "b"}},
					FetchedAt: time.Now(),
				})
			}
		}()
	}
	wg.Wait()
}
