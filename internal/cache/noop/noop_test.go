package noop

import (
	"context"
	"sync"
	"testing"
)

func TestNoOpCache_Get(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	testCases := []string{
		"courses",
		"",
		"materials:c1",
		"submissions:c1:cw1",
	}

	for _, key := range testCases {
		t.Run("key="+key, func(t *testing.T) {
			entry, found := cache.Get(ctx, key)

			if entry != nil {
				t.Errorf("Get(%q) entry = %v, want nil", key, entry)
			}
			if found {
				t.Errorf("Get(%q) found = %v, want false", key, found)
			}
		})
	}
}

func TestNoOpCache_SetThenGetStillMisses(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	testCases := []struct {
		key string
		val []byte
	}{
		{"materials:c1", []byte(`[{"id":"m1"}]`)},
		{"", []byte("")},
		{"binary-key", []byte{0x01, 0x02, 0x03, 0xFF}},
	}

	for _, tc := range testCases {
		t.Run("key="+tc.key, func(t *testing.T) {
			if err := cache.Set(ctx, tc.key, tc.val); err != nil {
				t.Errorf("Set(%q) error = %v, want nil", tc.key, err)
			}

			if entry, found := cache.Get(ctx, tc.key); entry != nil || found {
				t.Errorf("After Set(%q), Get() = (%v, %v), want (nil, false)", tc.key, entry, found)
			}
		})
	}
}

func TestNoOpCache_ConcurrentAccess(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.Set(ctx, "concurrent-key", []byte("v"))
			cache.Get(ctx, "concurrent-key")
			cache.Delete(ctx, "concurrent-key")
		}()
	}
	wg.Wait()

	if entry, found := cache.Get(ctx, "concurrent-key"); entry != nil || found {
		t.Errorf("After concurrent operations, Get() = (%v, %v), want (nil, false)", entry, found)
	}
}
