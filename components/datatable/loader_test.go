package datatable

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTarget struct {
	started  atomic.Int32
	finished atomic.Int32
	rows     atomic.Int32
	err      atomic.Value
}

func (r *recordingTarget) LoadStarted(context.Context) { r.started.Add(1) }

func (r *recordingTarget) LoadFinished(_ context.Context, rows []member, err error) {
	r.finished.Add(1)
	r.rows.Store(int32(len(rows)))
	if err != nil {
		r.err.Store(err)
	}
}

func TestLoaderDeliversRowsAfterDelay(t *testing.T) {
	t.Parallel()
	target := &recordingTarget{}
	loader := StartLoader(context.Background(), func(context.Context) ([]member, error) {
		return sampleMembers(), nil
	}, 5*time.Millisecond, target)

	assert.EqualValues(t, 1, target.started.Load())
	require.NoError(t, loader.Wait(context.Background()))
	assert.EqualValues(t, 1, target.finished.Load())
	assert.EqualValues(t, 2, target.rows.Load())
}

func TestLoaderCloseBeforeDelaySkipsFetch(t *testing.T) {
	t.Parallel()
	target := &recordingTarget{}
	var fetched atomic.Bool
	loader := StartLoader(context.Background(), func(context.Context) ([]member, error) {
		fetched.Store(true)
		return sampleMembers(), nil
	}, time.Hour, target)

	loader.Close()
	loader.Close()
	assert.False(t, fetched.Load())
	assert.Zero(t, target.finished.Load())
}

func TestLoaderCloseDuringFetchDropsResult(t *testing.T) {
	t.Parallel()
	target := &recordingTarget{}
	entered := make(chan struct{})
	loader := StartLoader(context.Background(), func(ctx context.Context) ([]member, error) {
		close(entered)
		<-ctx.Done()
		return sampleMembers(), nil
	}, 0, target)

	<-entered
	loader.Close()
	select {
	case <-loader.Done():
	default:
		t.Fatalf("expected loader to be done after Close")
	}
	assert.Zero(t, target.finished.Load())
}

func TestLoaderWaitHonoursContext(t *testing.T) {
	t.Parallel()
	target := &recordingTarget{}
	loader := StartLoader(context.Background(), func(context.Context) ([]member, error) {
		return nil, nil
	}, time.Hour, target)
	defer loader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, loader.Wait(ctx), context.Canceled)
}

func TestMountLoadsThroughDataset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	release := make(chan struct{})
	mount, err := NewMount(ctx, memberSchema(t), MountOptions[member]{
		Table: TableOptions{Name: "users"},
		Fetch: func(context.Context) ([]member, error) {
			<-release
			return generatedMembers(4), nil
		},
	})
	require.NoError(t, err)
	defer mount.Close()

	snap := mount.Snapshot()
	assert.Equal(t, StatusLoading, snap.Status)
	assert.Empty(t, snap.Rows)

	close(release)
	require.NoError(t, mount.Wait(ctx))
	assert.False(t, mount.Loading())
	assert.Equal(t, StatusReady, mount.Snapshot().Status)
	assert.Len(t, mount.Dataset().Rows(), 4)
}

func TestMountLoadFailureSurfacesError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mount, err := NewMount(ctx, memberSchema(t), MountOptions[member]{
		Fetch: func(context.Context) ([]member, error) {
			return nil, errors.New("fetch failed")
		},
	})
	require.NoError(t, err)
	require.NoError(t, mount.Wait(ctx))
	snap := mount.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "fetch failed", snap.Error)
}

func TestMountCloseStopsPendingLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mount, err := NewMount(ctx, memberSchema(t), MountOptions[member]{
		Fetch: func(context.Context) ([]member, error) { return generatedMembers(3), nil },
		Delay: time.Hour,
	})
	require.NoError(t, err)
	mount.Close()
	assert.Empty(t, mount.Rows())
	assert.True(t, mount.Loading())
}
