package sexp

import (
	"strconv"

	"github.com/google/uuid"
)

// S-expression navigation helpers

// NodeName returns the first symbol of a list (the node type/name), or ""
func NodeName(s Sexp) string {
	l, ok := s.(*List)
	if !ok || len(l.elements) == 0 {
		return ""
	}
	if sym, ok := l.elements[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// FindNode searches for a child list with the given name.
// Example: FindNode(component, "name") finds (name "R1").
func FindNode(s Sexp, key string) (*List, bool) {
	l, ok := s.(*List)
	if !ok {
		return nil, false
	}
	for _, item := range l.elements {
		if NodeName(item) == key {
			return item.(*List), true
		}
	}
	return nil, false
}

// FindAllNodes finds all child lists with the given name
func FindAllNodes(s Sexp, key string) []*List {
	var results []*List
	l, ok := s.(*List)
	if !ok {
		return results
	}
	for _, item := range l.elements {
		if NodeName(item) == key {
			results = append(results, item.(*List))
		}
	}
	return results
}

// Atom returns the text of a leaf, or "" and false for lists.
func Atom(s Sexp) (string, bool) {
	switch v := s.(type) {
	case Symbol:
		return string(v), true
	case String:
		return string(v), true
	}
	return "", false
}

// GetString extracts the atom at the given index in a list.
// Index 0 is the name, 1 is first value, etc.
func GetString(s Sexp, index int) (string, error) {
	l, ok := s.(*List)
	if !ok {
		return "", errorf("expected list, got leaf")
	}
	if index < 0 || index >= len(l.elements) {
		return "", errorf("(%s ...): index %d out of bounds (length %d)", NodeName(l), index, len(l.elements))
	}
	str, ok := Atom(l.elements[index])
	if !ok {
		return "", errorf("(%s ...): expected atom at index %d", NodeName(l), index)
	}
	return str, nil
}

// GetUUID parses the atom at index as a UUID.
func GetUUID(s Sexp, index int) (uuid.UUID, error) {
	str, err := GetString(s, index)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, errorf("(%s ...): invalid uuid %q: %w", NodeName(s), str, err)
	}
	return id, nil
}

// GetBool parses the atom at index as true/false.
func GetBool(s Sexp, index int) (bool, error) {
	str, err := GetString(s, index)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(str)
	if err != nil {
		return false, errorf("(%s ...): invalid bool %q", NodeName(s), str)
	}
	return b, nil
}

// ChildString returns the first value of the child list named key, e.g.
// ChildString(component, "name") yields "R1" for (name "R1").
func ChildString(s Sexp, key string) (string, error) {
	node, ok := FindNode(s, key)
	if !ok {
		return "", errorf("(%s ...): missing (%s ...)", NodeName(s), key)
	}
	return GetString(node, 1)
}

// ChildUUID is ChildString for uuid values.
func ChildUUID(s Sexp, key string) (uuid.UUID, error) {
	node, ok := FindNode(s, key)
	if !ok {
		return uuid.Nil, errorf("(%s ...): missing (%s ...)", NodeName(s), key)
	}
	return GetUUID(node, 1)
}

// ChildBool is ChildString for bool values.
func ChildBool(s Sexp, key string) (bool, error) {
	node, ok := FindNode(s, key)
	if !ok {
		return false, errorf("(%s ...): missing (%s ...)", NodeName(s), key)
	}
	return GetBool(node, 1)
}

// Str is a convenience constructor for a (key "value") list.
func Str(key, value string) *List {
	return NewList(key, String(value))
}

// Sym is a convenience constructor for a (key value) list with a bare value.
func Sym(key, value string) *List {
	return NewList(key, Symbol(value))
}

// Bool is a convenience constructor for a (key true|false) list.
func Bool(key string, value bool) *List {
	return NewList(key, Symbol(strconv.FormatBool(value)))
}

// UUID is a convenience constructor for a (key <uuid>) list.
func UUID(key string, id uuid.UUID) *List {
	return NewList(key, Symbol(id.String()))
}
