package utils

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeID_Unique(t *testing.T) {
	gen := NewSnowflakeID(1)

	const total = 5000
	seen := make(map[int64]bool, total)
	for i := 0; i < total; i++ {
		id := gen.Generate()
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestSnowflakeID_Concurrent(t *testing.T) {
	gen := NewSnowflakeID(3)

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 8*500)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 95)
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 20, p.Limit())
	assert.Equal(t, int64(5), p.Pages)

	t.Run("defaults for invalid input", func(t *testing.T) {
		p := NewPagination(0, 0, 0)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 10, p.PageSize)
		assert.Equal(t, 0, p.Offset())
	})

	t.Run("page size capped", func(t *testing.T) {
		p := NewPagination(1, 5000, 0)
		assert.Equal(t, 100, p.PageSize)
	})
}

func TestJSONRoundTrip(t *testing.T) {
	flags := []string{"large_amount", "new_account"}
	encoded := ToJSON(flags)

	var decoded []string
	require.NoError(t, FromJSON(encoded, &decoded))
	assert.Equal(t, flags, decoded)
}

func TestRandUpperAlnum(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, RandUpperAlnum(6))
	}
}
