package sync

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestSpinlock(t *testing.T) {
	// Substitute the yieldFn with runtime.Gosched to avoid deadlocks while testing
	defer func(origYieldFn func()) { yieldFn = origYieldFn }(yieldFn)
	yieldFn = runtime.Gosched

	var (
		sl         Spinlock
		wg         sync.WaitGroup
		numWorkers = 10
		counter    int
	)

	sl.Acquire()

	if sl.TryToAcquire() != false {
		t.Error("expected TryToAcquire to return false when lock is held")
	}

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			sl.Acquire()
			counter++
			sl.Release()
			wg.Done()
		}()
	}

	<-time.After(50 * time.Millisecond)
	if counter != 0 {
		t.Fatalf("expected workers to block while the lock is held; counter is %d", counter)
	}

	sl.Release()
	wg.Wait()

	if counter != numWorkers {
		t.Fatalf("expected counter to be %d; got %d", numWorkers, counter)
	}
}

func TestRWSpinlock(t *testing.T) {
	defer func(origYieldFn func()) { yieldFn = origYieldFn }(yieldFn)
	yieldFn = runtime.Gosched

	t.Run("readers do not block each other", func(t *testing.T) {
		var l RWSpinlock

		l.RAcquire()
		l.RAcquire()

		if l.TryToAcquire() {
			t.Fatal("expected TryToAcquire to fail while readers hold the lock")
		}

		done := make(chan struct{})
		go func() {
			l.RAcquire()
			l.RRelease()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("expected a third reader to acquire the lock while two readers hold it")
		}

		l.RRelease()
		l.RRelease()

		if !l.TryToAcquire() {
			t.Fatal("expected TryToAcquire to succeed once all readers released the lock")
		}
		l.Release()
	})

	t.Run("writer excludes readers", func(t *testing.T) {
		var (
			l        RWSpinlock
			wg       sync.WaitGroup
			value    int
			observed = make([]int, 8)
		)

		l.Acquire()

		wg.Add(len(observed))
		for i := range observed {
			go func(i int) {
				defer wg.Done()
				l.RAcquire()
				observed[i] = value
				l.RRelease()
			}(i)
		}

		<-time.After(50 * time.Millisecond)
		value = 42
		l.Release()
		wg.Wait()

		for i, got := range observed {
			if got != 42 {
				t.Errorf("[reader %d] expected to observe the value stored by the writer; got %d", i, got)
			}
		}
	})
}
