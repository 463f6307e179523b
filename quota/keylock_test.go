package quota

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyMutexSerializesSameKey(t *testing.T) {
	km := newKeyMutex()
	var counter, max int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock(7)
			defer km.Unlock(7)

			mu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max, "two holders entered the same key section")
}

func TestKeyMutexIndependentKeys(t *testing.T) {
	km := newKeyMutex()
	km.Lock(1)

	done := make(chan struct{})
	go func() {
		km.Lock(2)
		km.Unlock(2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	km.Unlock(1)
}

func TestKeyMutexReleasesEntries(t *testing.T) {
	km := newKeyMutex()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(key uint) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				km.Lock(key)
				km.Unlock(key)
			}
		}(uint(i % 3))
	}
	wg.Wait()

	km.mu.Lock()
	defer km.mu.Unlock()
	require.Empty(t, km.locks, "lock table should be empty once all holders release")
}
