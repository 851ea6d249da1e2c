package watcher

import (
	"sync"
	"time"
)

// Batcher collects items and emits them together once no new item has
// arrived for the configured delay.
type Batcher[T any] struct {
	delay time.Duration
	emit  func([]T)

	mu     sync.Mutex
	timer  *time.Timer
	items  []T
	closed bool
}

// NewBatcher creates a batcher that hands each quiet-period batch to emit
func NewBatcher[T any](delay time.Duration, emit func([]T)) *Batcher[T] {
	return &Batcher[T]{
		delay: delay,
		emit:  emit,
	}
}

// Add queues an item and restarts the quiet period. Items added after Stop
// are dropped.
func (b *Batcher[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.items = append(b.items, item)

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flush)
}

// Flush emits pending items immediately
func (b *Batcher[T]) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.flush()
}

// Cancel drops pending items without emitting them
func (b *Batcher[T]) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.items = nil
}

// Stop flushes pending items and rejects further adds
func (b *Batcher[T]) Stop() {
	b.Flush()

	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// Pending returns the number of queued items
func (b *Batcher[T]) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *Batcher[T]) flush() {
	b.mu.Lock()
	items := b.items
	b.items = nil
	b.timer = nil
	b.mu.Unlock()

	if len(items) > 0 && b.emit != nil {
		b.emit(items)
	}
}
