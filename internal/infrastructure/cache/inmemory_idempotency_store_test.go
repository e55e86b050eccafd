package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new key as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "req-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("returns false for a repeated key", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "req-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "req-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew, "repeated key should not be newly marked")
	})

	t.Run("allows the key again after expiration", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "req-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "req-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew, "expired key should be markable again")
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns false for an unknown key", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("returns true for a processed key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "seen", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "seen")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("returns false once the key expires", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "short-lived", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "short-lived")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_ConcurrentMarks(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(ctx, "contested", time.Hour)
			require.NoError(t, err)
			if isNew {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one submission should win the key")
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := store.MarkProcessed(ctx, fmt.Sprintf("req-%d", i), time.Millisecond)
		require.NoError(t, err)
	}
	require.Equal(t, 5, store.Size())

	time.Sleep(10 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 0, store.Size())
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
