// Package sexp provides a small streaming S-expression parser and writer
// used for circuit files and ERC ignore lists.
package sexp

import (
	"io"
	"strings"
)

// Sexp represents an S-expression node.
// It is a Symbol, a String (both leaves) or a *List.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// String returns the S-expression text of the node
	String() string
}

// Symbol is a bare atom: an identifier, number or uuid.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) String() string { return quoteIfNeeded(string(s)) }

// String is a quoted atom.
type String string

func (s String) IsLeaf() bool   { return true }
func (s String) String() string { return quote(string(s)) }

// List represents a list of S-expressions
type List struct {
	elements []Sexp
}

// NewList returns a list headed by the symbol name followed by items.
func NewList(name string, items ...Sexp) *List {
	l := &List{elements: make([]Sexp, 0, len(items)+1)}
	l.elements = append(l.elements, Symbol(name))
	l.elements = append(l.elements, items...)
	return l
}

func (l *List) IsLeaf() bool { return false }

// Append adds items to the end of the list and returns the list.
func (l *List) Append(items ...Sexp) *List {
	l.elements = append(l.elements, items...)
	return l
}

// Items returns the elements of the list, including its name.
func (l *List) Items() []Sexp {
	return l.elements
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Parse parses all top-level S-expressions from r.
func Parse(r io.Reader) ([]Sexp, error) {
	return NewParser(r).ParseAll()
}

// ParseString parses S-expressions from a string.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}

// ParseOne parses r and expects exactly one top-level list named root.
func ParseOne(r io.Reader, root string) (*List, error) {
	exprs, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if len(exprs) != 1 {
		return nil, errorf("expected one top-level expression, got %d", len(exprs))
	}
	l, ok := exprs[0].(*List)
	if !ok || NodeName(l) != root {
		return nil, errorf("expected (%s ...)", root)
	}
	return l, nil
}
