// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xvc/pkg/digest"
)

func newTestItem(t *testing.T, content string) Item {
	t.Helper()
	d, err := digest.FromString(content, digest.Blake3)
	require.NoError(t, err)
	return Item{Digest: d, Path: "data/file.txt"}
}

func TestInitIsIdempotentAndReturnsSameGUID(t *testing.T) {
	s, err := NewLocalDirStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	g1, err := s.Init(ctx)
	require.NoError(t, err)
	g2, err := s.Init(ctx)
	require.NoError(t, err)
	require.Equal(t, g1, g2)
}

func TestSendThenReceiveRoundTrips(t *testing.T) {
	s, err := NewLocalDirStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	_, err = s.Init(ctx)
	require.NoError(t, err)

	item := newTestItem(t, "hello xvc")
	require.NoError(t, s.Send(ctx, item, bytes.NewBufferString("hello xvc")))

	rc, err := s.Receive(ctx, item)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "hello xvc", string(got))
}

func TestListFindsSentItems(t *testing.T) {
	s, err := NewLocalDirStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	_, err = s.Init(ctx)
	require.NoError(t, err)

	item := newTestItem(t, "list me")
	require.NoError(t, s.Send(ctx, item, bytes.NewBufferString("list me")))

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestDeleteRemovesContent(t *testing.T) {
	s, err := NewLocalDirStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	_, err = s.Init(ctx)
	require.NoError(t, err)

	item := newTestItem(t, "gone soon")
	require.NoError(t, s.Send(ctx, item, bytes.NewBufferString("gone soon")))
	require.NoError(t, s.Delete(ctx, item))

	_, err = s.Receive(ctx, item)
	require.Error(t, err)
}

func TestContentPathIsScopedUnderStorageGUID(t *testing.T) {
	s, err := NewLocalDirStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	guid, err := s.Init(ctx)
	require.NoError(t, err)

	item := newTestItem(t, "scoped")
	path := s.contentPath(item.Digest)
	require.True(t, strings.HasPrefix(path, filepath.Join(s.root, guid)+string(filepath.Separator)))
}

func TestDrainEventsReturnsOperationsInOrderAndClears(t *testing.T) {
	s, err := NewLocalDirStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	_, err = s.Init(ctx)
	require.NoError(t, err)

	item := newTestItem(t, "logged")
	require.NoError(t, s.Send(ctx, item, bytes.NewBufferString("logged")))
	rc, err := s.Receive(ctx, item)
	require.NoError(t, err)
	rc.Close()

	events := s.DrainEvents()
	require.Len(t, events, 3)
	require.Equal(t, EventInit, events[0].Kind)
	require.Equal(t, EventSend, events[1].Kind)
	require.Equal(t, EventReceive, events[2].Kind)
	require.Equal(t, []string{item.Path}, events[1].Paths)

	require.Empty(t, s.DrainEvents(), "a second drain should find nothing left to report")
}

// TestConcurrentSendOfSameDigestProducesOneUpload exercises the
// at-most-once Send invariant: N goroutines sending the same content
// concurrently must leave exactly one file at the content-addressed
// path, with no corruption from interleaved writers.
func TestConcurrentSendOfSameDigestProducesOneUpload(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalDirStorage(root)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = s.Init(ctx)
	require.NoError(t, err)

	item := newTestItem(t, "shared content")
	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Send(ctx, item, bytes.NewBufferString("shared content"))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	path := s.contentPath(item.Digest)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "shared content", string(data))

	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "exactly one file should exist at the shard destination")
}
