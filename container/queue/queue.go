// Package queue implements a FIFO queue as a thin wrapper over
// [container/list]: push at the tail, pop from the head.
package queue

import (
	"github.com/ohbentos/wireshark/wsutil/wmem"
	"github.com/ohbentos/wireshark/wsutil/wmem/container/list"
)

// Queue is a FIFO queue rooted in a *wmem.Allocator.
type Queue[T any] struct {
	l *list.List[T]
}

// New creates an empty queue associated with a.
func New[T any](a *wmem.Allocator) *Queue[T] {
	return &Queue[T]{l: list.New[T](a)}
}

// Push adds data to the back of the queue.
func (q *Queue[T]) Push(data T) { q.l.Append(data) }

// Pop removes and returns the element at the front of the queue. ok is
// false if the queue was empty, in which case the zero value is returned.
func (q *Queue[T]) Pop() (data T, ok bool) {
	f := q.l.Head()
	if f == nil {
		return data, false
	}
	data = f.Data()
	q.l.RemoveFrame(f)
	return data, true
}

// Count returns the number of elements currently queued.
func (q *Queue[T]) Count() int { return q.l.Count() }
