package service

import (
	"sync"
	"time"
)

// debouncer coalesces work per key: only the last call scheduled within the
// delay runs, and at most one task per key executes at a time.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*debounceTask
	running map[string]*keyLock
	closed  bool
}

// keyLock serialises tasks of one key; refs counts holders and waiters
type keyLock struct {
	mu   sync.Mutex
	refs int
}

type debounceTask struct {
	timer *time.Timer
	done  chan error
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*debounceTask),
		running: make(map[string]*keyLock),
	}
}

// Schedule runs fn for key once the delay passes without another Schedule
// for the same key. The channel yields fn's error, or nil if the task was
// superseded or cancelled before it ran.
func (d *debouncer) Schedule(key string, fn func() error) <-chan error {
	task := &debounceTask{done: make(chan error, 1)}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		task.done <- nil
		return task.done
	}

	d.supersedeLocked(key)
	d.pending[key] = task
	task.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending[key] != task {
			// superseded between the timer firing and taking the lock
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		lock := d.acquireLocked(key)
		d.mu.Unlock()

		lock.mu.Lock()
		err := fn()
		lock.mu.Unlock()
		d.release(key, lock)
		task.done <- err
	})

	return task.done
}

// Cancel drops the pending task for key, if any
func (d *debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supersedeLocked(key)
}

// Run executes fn now, after any task for key that is already executing
func (d *debouncer) Run(key string, fn func() error) error {
	d.mu.Lock()
	lock := d.acquireLocked(key)
	d.mu.Unlock()

	lock.mu.Lock()
	defer d.release(key, lock)
	defer lock.mu.Unlock()
	return fn()
}

// Close cancels every pending task. Tasks already executing finish.
func (d *debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	for key := range d.pending {
		d.supersedeLocked(key)
	}
}

func (d *debouncer) supersedeLocked(key string) {
	prev, ok := d.pending[key]
	if !ok {
		return
	}
	prev.timer.Stop()
	delete(d.pending, key)
	prev.done <- nil
}

func (d *debouncer) acquireLocked(key string) *keyLock {
	lock, ok := d.running[key]
	if !ok {
		lock = &keyLock{}
		d.running[key] = lock
	}
	lock.refs++
	return lock
}

// release drops the key's lock once no task holds or waits for it
func (d *debouncer) release(key string, lock *keyLock) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock.refs--
	if lock.refs == 0 && d.running[key] == lock {
		delete(d.running, key)
	}
}
