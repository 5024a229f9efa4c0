package httpclient

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShared_ReturnsSameInstance(t *testing.T) {
	first := Shared()
	require.NotNil(t, first)
	assert.Same(t, first, Shared())
}

func TestShared_Concurrent(t *testing.T) {
	const n = 16
	var wg sync.WaitGroup
	got := make([]any, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Shared()
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		assert.Same(t, got[0], got[i])
	}
}

func TestNew_FreshInstance(t *testing.T) {
	a, b := New(), New()
	assert.NotSame(t, a, b)
	assert.NotSame(t, a.Transport, b.Transport)
	assert.Zero(t, a.Timeout)
}
