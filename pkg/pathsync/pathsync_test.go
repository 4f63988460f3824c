// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package pathsync

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithSyncPathSerializesSamePath(t *testing.T) {
	ps := New()
	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ps.WithSyncPath("/remote/a", func(string) error {
				n := atomic.AddInt32(&active, 1)
				if n > atomic.LoadInt32(&maxActive) {
					atomic.StoreInt32(&maxActive, n)
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), maxActive)
}

func TestWithSyncPathAllowsDifferentPathsConcurrently(t *testing.T) {
	ps := New()
	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make(chan time.Duration, 2)

	for _, p := range []string{"/remote/a", "/remote/b"} {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			<-start
			begin := time.Now()
			_ = ps.WithSyncPath(path, func(string) error {
				time.Sleep(20 * time.Millisecond)
				return nil
			})
			results <- time.Since(begin)
		}(p)
	}
	close(start)
	wg.Wait()
	close(results)
	for d := range results {
		require.Less(t, d, 40*time.Millisecond)
	}
}
