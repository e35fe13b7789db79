// Copyright (c) 2026 Hellomouse. All rights reserved.

package jobqueue

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	enqueued  []enqueueCall
	jobs      []*Job
	lastLimit int
}

type enqueueCall struct {
	name      string
	data      string
	requestor string
	priority  int
}

func (f *fakeStore) Enqueue(ctx context.Context, name, data, requestor string, priority int) (string, error) {
	f.enqueued = append(f.enqueued, enqueueCall{name, data, requestor, priority})
	return "job-1", nil
}

func (f *fakeStore) ListStatus(ctx context.Context, requestor string, offset, limit int) ([]*Job, error) {
	f.lastLimit = limit
	return f.jobs, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueSiteDownload_RejectsUnknownStrategy(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, discardLogger())

	_, err := svc.QueueSiteDownload(context.Background(), "alice", "http://example.com", "torrent")
	require.Error(t, err)
	assert.Empty(t, store.enqueued)
}

func TestQueueSiteDownload_EnqueuesAtPriorityZero(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, discardLogger())

	id, err := svc.QueueSiteDownload(context.Background(), "alice", "http://example.com", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)
	require.Len(t, store.enqueued, 1)
	assert.Equal(t, JobPDF, store.enqueued[0].name)
	assert.Equal(t, PriorityDownload, store.enqueued[0].priority)
}

func TestQueuePinPreview_EncodesPinAndURL(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, discardLogger())

	err := svc.QueuePinPreview(context.Background(), "alice", "pin-42", "http://example.com/page")
	require.NoError(t, err)
	require.Len(t, store.enqueued, 1)
	assert.Equal(t, JobPinPreview, store.enqueued[0].name)
	assert.Equal(t, "pin-42|http://example.com/page", store.enqueued[0].data)
	assert.Equal(t, PriorityPinPreview, store.enqueued[0].priority)
}

func TestQueueSongDownload_JoinsPlaylistAndURLs(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, discardLogger())

	err := svc.QueueSongDownload(context.Background(), "alice", "playlist-1", []string{"http://a", "http://b"})
	require.NoError(t, err)
	require.Len(t, store.enqueued, 1)
	assert.Equal(t, "playlist-1,http://a,http://b", store.enqueued[0].data)
}

func TestGetStatusQueue_ClampsLimit(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, discardLogger())

	_, err := svc.GetStatusQueue(context.Background(), "alice", 0, 9999)
	require.NoError(t, err)
	assert.Equal(t, MaxStatusListLimit, store.lastLimit)
}
