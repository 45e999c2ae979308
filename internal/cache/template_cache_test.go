package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New()
	require.NotNil(t, c)
	assert.Equal(t, DefaultCapacity, c.capacity)
	assert.Equal(t, 0, c.lruList.Len())
}

func TestNewWithCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"positive", 10, 10},
		{"zero uses default", 0, DefaultCapacity},
		{"negative uses default", -5, DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewWithCapacity(tt.capacity).capacity)
		})
	}
}

func TestTemplateCache_GetSet(t *testing.T) {
	c := New()

	_, ok := c.Get("select:Products")
	assert.False(t, ok)

	c.Set("select:Products", "SELECT Products.Id FROM Products")
	sql, ok := c.Get("select:Products")
	require.True(t, ok)
	assert.Equal(t, "SELECT Products.Id FROM Products", sql)

	c.Set("select:Products", "SELECT Products.Name FROM Products")
	sql, _ = c.Get("select:Products")
	assert.Equal(t, "SELECT Products.Name FROM Products", sql)
	assert.Equal(t, 1, c.Stats().Size)
}

func TestTemplateCache_LRUEviction(t *testing.T) {
	c := NewWithCapacity(2)

	c.Set("a", "A")
	c.Set("b", "B")
	_, _ = c.Get("a") // b is now least recently used
	c.Set("c", "C")

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestTemplateCache_GetOrBuild(t *testing.T) {
	c := New()
	builds := 0
	build := func() (string, error) {
		builds++
		return "SELECT COUNT(*) FROM Products", nil
	}

	for i := 0; i < 3; i++ {
		sql, err := c.GetOrBuild("count:Products", build)
		require.NoError(t, err)
		assert.Equal(t, "SELECT COUNT(*) FROM Products", sql)
	}
	assert.Equal(t, 1, builds)

	boom := errors.New("boom")
	_, err := c.GetOrBuild("broken", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get("broken")
	assert.False(t, ok, "failed builds are not cached")
}

func TestTemplateCache_Clear(t *testing.T) {
	c := New()
	c.Set("a", "A")
	c.Set("b", "B")

	c.Clear()

	assert.Equal(t, 0, c.Stats().Size)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTemplateCache_Stats(t *testing.T) {
	c := NewWithCapacity(4)
	c.Set("a", "A")

	_, _ = c.Get("a")
	_, _ = c.Get("a")
	_, _ = c.Get("a")
	_, _ = c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 4, stats.Capacity)
	assert.Equal(t, uint64(3), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 0.75, stats.HitRate, 0.0001)
}

func TestTemplateCache_Concurrent(t *testing.T) {
	c := NewWithCapacity(16)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%32)
				sql, err := c.GetOrBuild(key, func() (string, error) { return "SQL " + key, nil })
				assert.NoError(t, err)
				assert.Equal(t, "SQL "+key, sql)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Stats().Size, 16)
}
