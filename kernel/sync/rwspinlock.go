package sync

import "sync/atomic"

// rwWriterHeld is the state value of an RWSpinlock held for writing.
const rwWriterHeld = -1

// RWSpinlock is a reader/writer spinlock. Any number of readers may hold the
// lock at the same time and never wait for each other; a writer waits until
// the lock is completely free and excludes everyone else while it holds it.
//
// Writers are not given priority over readers. The lock is meant for data
// that is written once during boot and read many times afterwards.
type RWSpinlock struct {
	// state is rwWriterHeld while a writer holds the lock; otherwise it
	// counts the active readers.
	state int32
}

// RAcquire acquires the lock for reading.
func (l *RWSpinlock) RAcquire() {
	for {
		cur := atomic.LoadInt32(&l.state)
		if cur != rwWriterHeld && atomic.CompareAndSwapInt32(&l.state, cur, cur+1) {
			return
		}
		spin()
	}
}

// RRelease releases a read lock acquired via RAcquire.
func (l *RWSpinlock) RRelease() {
	atomic.AddInt32(&l.state, -1)
}

// Acquire acquires the lock for writing.
func (l *RWSpinlock) Acquire() {
	for !atomic.CompareAndSwapInt32(&l.state, 0, rwWriterHeld) {
		spin()
	}
}

// TryToAcquire attempts to acquire the lock for writing without spinning.
func (l *RWSpinlock) TryToAcquire() bool {
	return atomic.CompareAndSwapInt32(&l.state, 0, rwWriterHeld)
}

// Release releases a write lock acquired via Acquire or TryToAcquire.
func (l *RWSpinlock) Release() {
	atomic.StoreInt32(&l.state, 0)
}
