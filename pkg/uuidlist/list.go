// Package uuidlist provides an ordered collection keyed by UUID together with
// undo commands for inserting, removing and swapping its elements.
//
// Order is significant (it is the serialization order), so the list keeps a
// slice plus a UUID to position index instead of a plain map.
package uuidlist

import (
	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// Element is anything with a stable identity.
type Element interface {
	UUID() uuid.UUID
}

// Hooks are called before the list is mutated. When a hook fails the list is
// left unchanged and the hook's error is returned.
type Hooks[T Element] struct {
	BeforeInsert func(elem T) error
	BeforeRemove func(elem T) error
}

// List is an ordered, UUID-keyed collection.
type List[T Element] struct {
	name  string
	items []T
	pos   map[uuid.UUID]int
	hooks Hooks[T]
}

// New returns an empty list. name is the element's tag name (for example
// "netsignal"); it shows up in command texts and error messages.
func New[T Element](name string) *List[T] {
	return &List[T]{name: name, pos: make(map[uuid.UUID]int)}
}

// NewWithHooks returns an empty list calling hooks on every mutation.
func NewWithHooks[T Element](name string, hooks Hooks[T]) *List[T] {
	l := New[T](name)
	l.hooks = hooks
	return l
}

// Name returns the element tag name.
func (l *List[T]) Name() string { return l.name }

// Len returns the number of elements.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the element at index i. It panics if i is out of range.
func (l *List[T]) At(i int) T { return l.items[i] }

// Get returns the element with the given UUID.
func (l *List[T]) Get(id uuid.UUID) (T, bool) {
	if i, ok := l.pos[id]; ok {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Contains reports whether an element with the given UUID exists.
func (l *List[T]) Contains(id uuid.UUID) bool {
	_, ok := l.pos[id]
	return ok
}

// IndexOf returns the position of the element with the given UUID or -1.
func (l *List[T]) IndexOf(id uuid.UUID) int {
	if i, ok := l.pos[id]; ok {
		return i
	}
	return -1
}

// Items returns a copy of the elements in order.
func (l *List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Insert inserts elem at index; a negative index appends. It returns the
// index the element ended up at.
func (l *List[T]) Insert(index int, elem T) (int, error) {
	id := elem.UUID()
	if _, exists := l.pos[id]; exists {
		return -1, fault.Logicf("uuidlist.Insert", "%s %s already exists", l.name, id)
	}
	if index < 0 {
		index = len(l.items)
	}
	if index > len(l.items) {
		return -1, fault.Logicf("uuidlist.Insert", "index %d out of range [0,%d]", index, len(l.items))
	}
	if l.hooks.BeforeInsert != nil {
		if err := l.hooks.BeforeInsert(elem); err != nil {
			return -1, err
		}
	}
	var zero T
	l.items = append(l.items, zero)
	copy(l.items[index+1:], l.items[index:])
	l.items[index] = elem
	l.reindex(index)
	return index, nil
}

// Remove removes and returns the element at index.
func (l *List[T]) Remove(index int) (T, error) {
	var zero T
	if index < 0 || index >= len(l.items) {
		return zero, fault.Logicf("uuidlist.Remove", "index %d out of range [0,%d)", index, len(l.items))
	}
	elem := l.items[index]
	if l.hooks.BeforeRemove != nil {
		if err := l.hooks.BeforeRemove(elem); err != nil {
			return zero, err
		}
	}
	delete(l.pos, elem.UUID())
	copy(l.items[index:], l.items[index+1:])
	l.items[len(l.items)-1] = zero
	l.items = l.items[:len(l.items)-1]
	l.reindex(index)
	return elem, nil
}

// Swap exchanges the elements at i and j.
func (l *List[T]) Swap(i, j int) error {
	if i < 0 || i >= len(l.items) || j < 0 || j >= len(l.items) {
		return fault.Logicf("uuidlist.Swap", "indices %d,%d out of range [0,%d)", i, j, len(l.items))
	}
	l.items[i], l.items[j] = l.items[j], l.items[i]
	l.pos[l.items[i].UUID()] = i
	l.pos[l.items[j].UUID()] = j
	return nil
}

func (l *List[T]) reindex(from int) {
	for i := from; i < len(l.items); i++ {
		l.pos[l.items[i].UUID()] = i
	}
}
