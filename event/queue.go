package event

import (
	"sync/atomic"
)

const (
	// QueueSize must be a power of two
	QueueSize  = 256
	bufferMask = QueueSize - 1
)

// Queue is a lock-free MPSC ring buffer
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK
//   - Consume: Single consumer (frame loop)
//   - Published flags prevent reading partial writes
//
// Overflow: Oldest events overwritten when full
type Queue struct {
	events    [QueueSize]GameEvent
	published [QueueSize]atomic.Bool // True = slot fully written
	head      atomic.Uint64          // Read index
	tail      atomic.Uint64          // Write index
	dropped   atomic.Uint64
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Push adds event using lock-free CAS with published flags pattern
// Safe for concurrent producers. O(1) amortized
func (q *Queue) Push(ev GameEvent) {
	for {
		currentTail := q.tail.Load()
		nextTail := currentTail + 1

		if q.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & bufferMask

			q.events[idx] = ev
			q.published[idx].Store(true) // MUST be after write

			// Advance head if overwriting unread events
			currentHead := q.head.Load()
			if nextTail-currentHead > QueueSize {
				if q.head.CompareAndSwap(currentHead, nextTail-QueueSize) {
					q.dropped.Add(nextTail - QueueSize - currentHead)
				}
			}
			return
		}
	}
}

// Consume returns all pending events in FIFO order and advances head
// Single-consumer. Stops early at a slot whose writer has not finished
func (q *Queue) Consume() []GameEvent {
	for {
		currentHead := q.head.Load()
		currentTail := q.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		available := currentTail - currentHead
		if available > QueueSize {
			available = QueueSize
			currentHead = currentTail - QueueSize
		}

		result := make([]GameEvent, 0, available)
		for i := uint64(0); i < available; i++ {
			idx := (currentHead + i) & bufferMask

			if !q.published[idx].Load() {
				break // Writer incomplete
			}

			result = append(result, q.events[idx])
			q.events[idx] = GameEvent{} // Release payload
			q.published[idx].Store(false)
		}

		newHead := currentHead + uint64(len(result))
		if q.head.CompareAndSwap(currentHead, newHead) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}

// Len returns approximate pending event count
func (q *Queue) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if tail <= head {
		return 0
	}
	diff := int(tail - head)
	if diff > QueueSize {
		return QueueSize
	}
	return diff
}

// Dropped returns how many unread events were overwritten
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
