// SPDX-License-Identifier: EPL-2.0

// Package ring provides a fixed-capacity FIFO that never blocks its producer.
//
// When the queue is full, Enqueue evicts the oldest entry to make room. This
// is the backpressure policy of a real-time audio path: stale audio is
// dropped rather than stalling the code that generates new audio.
package ring

import (
	"errors"
	"sync"
)

var ErrInvalidCapacity = errors.New("ring: capacity must be at least 1")

// Queue is a circular FIFO of T with drop-oldest overflow.
//
// All methods are safe for concurrent use. Every critical section is O(1)
// except Clear, which visits each entry once.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	read  int
	write int
	count int
}

func New[T any](capacity int) (*Queue[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	return &Queue[T]{items: make([]T, capacity)}, nil
}

// Enqueue appends item. If the queue was full, the oldest entry is removed
// first and returned with dropped set, so the caller can release it.
func (q *Queue[T]) Enqueue(item T) (evicted T, dropped bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	capacity := len(q.items)
	if q.count == capacity {
		evicted = q.items[q.read]
		dropped = true

		var zero T
		q.items[q.read] = zero
		q.read = (q.read + 1) % capacity
		q.count--
	}

	q.items[q.write] = item
	q.write = (q.write + 1) % capacity
	q.count++

	return evicted, dropped
}

// Dequeue removes and returns the oldest entry, or false if the queue is empty.
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.count == 0 {
		return zero, false
	}

	item := q.items[q.read]
	q.items[q.read] = zero
	q.read = (q.read + 1) % len(q.items)
	q.count--

	return item, true
}

// Peek returns the oldest entry without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.read], true
}

// Clear empties the queue, passing every removed entry (oldest first) to
// release when it is not nil. release runs under the queue lock and must
// not call back into q.
func (q *Queue[T]) Clear(release func(T)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	for q.count > 0 {
		item := q.items[q.read]
		q.items[q.read] = zero
		q.read = (q.read + 1) % len(q.items)
		q.count--

		if release != nil {
			release(item)
		}
	}
	q.read = 0
	q.write = 0
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap is fixed for the lifetime of the queue.
func (q *Queue[T]) Cap() int {
	return len(q.items)
}

func (q *Queue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count == 0
}

func (q *Queue[T]) IsFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count == len(q.items)
}
