package results

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waftester/wafcharset/pkg/testutil"
)

func TestOwner_AppliesUpdatesInOrder(t *testing.T) {
	o := NewOwner()
	defer o.Close()

	require.NoError(t, o.Ready(variant(1)))
	require.NoError(t, o.Ready(variant(2)))
	require.NoError(t, o.Post(Update{Kind: UpdateUpsert, Result: Result{Index: 1, State: StateSent}}))
	require.NoError(t, o.Post(Update{Kind: UpdateUpsert, Result: Result{Index: 1, State: StateDone, StatusCode: 200}}))
	require.NoError(t, o.Sync())

	snap := o.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, StateDone, snap[0].State)
	assert.Equal(t, StateReady, snap[1].State)

	r, ok := o.Get(1)
	require.True(t, ok)
	assert.Equal(t, 200, r.StatusCode)
	assert.Equal(t, 1, o.Summary().Done)
}

func TestOwner_ResetClearsStore(t *testing.T) {
	o := NewOwner()
	defer o.Close()

	require.NoError(t, o.Ready(variant(1)))
	require.NoError(t, o.Reset())
	require.NoError(t, o.Sync())
	assert.Empty(t, o.Snapshot())
}

func TestOwner_ConcurrentPosters(t *testing.T) {
	o := NewOwner(WithBuffer(0))
	defer o.Close()

	testutil.RunConcurrently(12, func(i int) {
		assert.NoError(t, o.Post(Update{Kind: UpdateUpsert, Result: Result{Index: i + 1, State: StateDone}}))
	})
	require.NoError(t, o.Sync())

	assert.Equal(t, 12, o.Summary().Done)
}

func TestOwner_SubscribersSeeAppliedUpdates(t *testing.T) {
	o := NewOwner()
	defer o.Close()

	var mu sync.Mutex
	var seen []State
	o.Subscribe(func(u Update) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, u.Result.State)
	})

	require.NoError(t, o.Ready(variant(1)))
	require.NoError(t, o.Post(Update{Kind: UpdateUpsert, Result: Result{Index: 1, State: StateError, Error: "boom"}}))
	require.NoError(t, o.Sync())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateReady, StateError}, seen)
}

func TestOwner_Close(t *testing.T) {
	tracker := testutil.TrackGoroutines()
	o := NewOwner()
	require.NoError(t, o.Ready(variant(1)))
	testutil.AssertTimeout(t, "close", 2*time.Second, func() {
		o.Close()
		o.Close()
	})
	tracker.CheckLeaks(t, 0)

	// Updates queued before Close are drained.
	assert.Len(t, o.Snapshot(), 1)
	assert.ErrorIs(t, o.Post(Update{}), ErrClosed)
	assert.ErrorIs(t, o.Sync(), ErrClosed)
}
