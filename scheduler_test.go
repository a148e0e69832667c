package framecoro_test

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilsvik/framecoro"
)

const (
	testPhase framecoro.Phase = iota
)

func newTestScheduler(t *testing.T) (*framecoro.Scheduler, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	sched := framecoro.NewScheduler()
	sched.SetTimer(framecoro.DefaultClock, mock)
	return sched, mock
}

func TestStartRunsToFirstSuspension(t *testing.T) {
	sched, _ := newTestScheduler(t)
	ran := false
	h := framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
		ran = true
		return 42, nil
	})
	assert.True(t, ran)
	assert.True(t, h.IsDown())
	assert.Equal(t, framecoro.Succeeded, h.State())

	result, err, ok := h.TakeResult()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	_, _, ok = h.TakeResult()
	assert.False(t, ok, "TakeResult must be one-shot")
}

func TestWaitDefersToNextUpdate(t *testing.T) {
	sched, mock := newTestScheduler(t)
	count := 0
	h := framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
		framecoro.Wait(co, 0, testPhase, framecoro.DefaultClock)
		count++
		framecoro.Wait(co, 0, testPhase, framecoro.DefaultClock)
		count += 2
		return count, nil
	})

	assert.False(t, h.IsDown())
	assert.Equal(t, 0, count)

	sched.Update(testPhase, framecoro.DefaultClock)
	assert.Equal(t, 1, count, "first Wait(0) resolves on the first Update")
	assert.False(t, h.IsDown())

	sched.Update(testPhase, framecoro.DefaultClock)
	assert.Equal(t, 3, count, "second Wait(0) needs its own Update call")
	assert.True(t, h.IsDown())

	_ = mock
}

func TestWaitHonorsDeadline(t *testing.T) {
	sched, mock := newTestScheduler(t)
	done := false
	h := framecoro.Start(sched, func(co *framecoro.Coroutine[struct{}]) (struct{}, error) {
		framecoro.Wait(co, 1.0, testPhase, framecoro.DefaultClock)
		done = true
		return struct{}{}, nil
	})

	sched.Update(testPhase, framecoro.DefaultClock)
	assert.False(t, done, "deadline hasn't arrived yet")

	mock.Add(1500 * time.Millisecond)
	sched.Update(testPhase, framecoro.DefaultClock)
	assert.True(t, done)
	assert.True(t, h.IsDown())
}

func TestStopMidWaitCancelsCoroutine(t *testing.T) {
	sched, _ := newTestScheduler(t)
	cleanedUp := false
	h := framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
		defer func() { cleanedUp = true }()
		framecoro.Wait(co, 10, testPhase, framecoro.DefaultClock)
		return 1, nil
	})

	assert.False(t, h.IsDown())
	h.Stop()
	assert.True(t, h.IsDown())
	assert.Equal(t, framecoro.Stopped, h.State())
	assert.True(t, cleanedUp, "defers must run on cancellation, same as any Go RAII")

	_, _, ok := h.TakeResult()
	assert.False(t, ok, "a stopped coroutine has no result to take")
}

func TestPanicIsCapturedAsError(t *testing.T) {
	sched, _ := newTestScheduler(t)
	h := framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
		panic(errors.New("boom"))
	})

	require.Equal(t, framecoro.Failed, h.State())
	_, err, ok := h.TakeResult()
	require.True(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	var joined interface{ Unwrap() []error }
	require.ErrorAs(t, err, &joined)
	require.Len(t, joined.Unwrap(), 1)
	assert.Equal(t, "boom", joined.Unwrap()[0].Error())
}

func TestHandleReleaseDetachesBookkeeping(t *testing.T) {
	sched, _ := newTestScheduler(t)
	h := framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
		return 7, nil
	})
	h.Release()
	assert.True(t, h.IsDown())
	_, _, ok := h.TakeResult()
	assert.False(t, ok, "a released handle no longer offers a result")
}

// TestStressManyCoroutinesCancelEveryOther spawns a large batch of
// coroutines parked at staggered deadlines on the same time queue,
// cancels every other one before any deadline fires, then advances the
// clock far enough for the rest to resolve. It is the correctness
// counterpart of the O(log n) push/remove/drainReady claim behind the
// container/heap-based time queue: at this scale, a queue with O(n)
// insert or removal would still pass this test, just slowly, but it
// exercises exactly the churn pattern (interleaved insert and
// arbitrary-position cancel) that motivated the heap.
func TestStressManyCoroutinesCancelEveryOther(t *testing.T) {
	const n = 10000
	sched, mock := newTestScheduler(t)

	handles := make([]*framecoro.Handle[int], n)
	for i := 0; i < n; i++ {
		i := i
		handles[i] = framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
			framecoro.Wait(co, float64(i%50)+1, testPhase, framecoro.DefaultClock)
			return i, nil
		})
	}

	for i := 1; i < n; i += 2 {
		handles[i].Stop()
	}

	mock.Add(100 * time.Second)
	sched.Update(testPhase, framecoro.DefaultClock)

	for i, h := range handles {
		require.True(t, h.IsDown())
		if i%2 == 1 {
			assert.Equal(t, framecoro.Stopped, h.State())
			continue
		}
		result, err, ok := h.TakeResult()
		require.True(t, ok)
		require.NoError(t, err)
		assert.Equal(t, i, result)
	}
}

func TestShutdownStopsEveryRootAndClearsQueues(t *testing.T) {
	sched, _ := newTestScheduler(t)
	cleanedUp := false
	h := framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
		defer func() { cleanedUp = true }()
		framecoro.Wait(co, 10, testPhase, framecoro.DefaultClock)
		return 1, nil
	})
	finished := framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
		return 2, nil
	})

	require.False(t, h.IsDown())
	require.True(t, finished.IsDown())

	sched.Shutdown()

	assert.True(t, cleanedUp, "a still-running root must be force-stopped, running its defers, on Shutdown")

	// After Shutdown a Handle's generation no longer resolves to any
	// entry: every operation on it is a defined no-op (P10).
	assert.True(t, h.IsDown())
	assert.Equal(t, framecoro.Stopped, h.State())
	h.Stop() // must not panic
	_, _, ok := h.TakeResult()
	assert.False(t, ok)

	assert.True(t, finished.IsDown())
	_, _, ok = finished.TakeResult()
	assert.False(t, ok, "Shutdown detaches bookkeeping even for a root that had already finished")
}

func TestHandleForgetLetsCoroutineFinishOnItsOwn(t *testing.T) {
	sched, _ := newTestScheduler(t)
	h := framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
		framecoro.Wait(co, 0, testPhase, framecoro.DefaultClock)
		return 9, nil
	})
	h.Forget()
	// Forgotten but still running: Update must not panic even though no
	// handle observes the outcome any more.
	sched.Update(testPhase, framecoro.DefaultClock)
}
