// Package stack implements a LIFO stack as a thin wrapper over
// [container/list]: push and pop both at the head.
package stack

import (
	"github.com/ohbentos/wireshark/wsutil/wmem"
	"github.com/ohbentos/wireshark/wsutil/wmem/container/list"
)

// Stack is a LIFO stack rooted in a *wmem.Allocator.
type Stack[T any] struct {
	l *list.List[T]
}

// New creates an empty stack associated with a.
func New[T any](a *wmem.Allocator) *Stack[T] {
	return &Stack[T]{l: list.New[T](a)}
}

// Push adds data to the top of the stack.
func (s *Stack[T]) Push(data T) { s.l.Prepend(data) }

// Pop removes and returns the element at the top of the stack. ok is false
// if the stack was empty, in which case the zero value is returned.
func (s *Stack[T]) Pop() (data T, ok bool) {
	f := s.l.Head()
	if f == nil {
		return data, false
	}
	data = f.Data()
	s.l.RemoveFrame(f)
	return data, true
}

// Count returns the number of elements currently on the stack.
func (s *Stack[T]) Count() int { return s.l.Count() }
