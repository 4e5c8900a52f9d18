package attr

import (
	"slices"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// List is an ordered attribute list with unique keys. The zero value is an
// empty list.
type List struct {
	items []Attribute
}

// NewList builds a list from attrs, validating each and rejecting duplicate
// keys.
func NewList(attrs ...Attribute) (*List, error) {
	l := &List{items: make([]Attribute, 0, len(attrs))}
	for _, a := range attrs {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if l.IndexOf(a.Key) >= 0 {
			return nil, fault.Runtimef("the attribute %q exists multiple times", a.Key)
		}
		l.items = append(l.items, a)
	}
	return l, nil
}

// Len returns the number of attributes.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Items returns a copy of the attributes in order.
func (l *List) Items() []Attribute {
	if l == nil {
		return nil
	}
	return slices.Clone(l.items)
}

// IndexOf returns the position of key or -1.
func (l *List) IndexOf(key string) int {
	if l == nil {
		return -1
	}
	return slices.IndexFunc(l.items, func(a Attribute) bool { return a.Key == key })
}

// Get returns the attribute with the given key.
func (l *List) Get(key string) (Attribute, bool) {
	if i := l.IndexOf(key); i >= 0 {
		return l.items[i], true
	}
	return Attribute{}, false
}

// Set replaces the attribute with a's key or appends a.
func (l *List) Set(a Attribute) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if i := l.IndexOf(a.Key); i >= 0 {
		l.items[i] = a
		return nil
	}
	l.items = append(l.items, a)
	return nil
}

// Remove deletes key and reports whether it was present.
func (l *List) Remove(key string) bool {
	i := l.IndexOf(key)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

// Equal compares keys, types, values and units in order. A nil list equals
// an empty one.
func (l *List) Equal(other *List) bool {
	if l.Len() != other.Len() {
		return false
	}
	if l.Len() == 0 {
		return true
	}
	return slices.Equal(l.items, other.items)
}

// Clone returns a deep copy.
func (l *List) Clone() *List {
	return &List{items: l.Items()}
}
