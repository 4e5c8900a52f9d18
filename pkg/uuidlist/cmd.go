package uuidlist

import (
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/undo"
)

// NewInsertCmd returns a command inserting elem at index (negative appends).
// The index is resolved once on execute; undo removes whatever is at that
// index and redo inserts there again.
func NewInsertCmd[T Element](list *List[T], elem T, index int) *undo.Command {
	return undo.New("Add "+list.Name(), &insertAction[T]{list: list, elem: elem, index: index})
}

type insertAction[T Element] struct {
	list  *List[T]
	elem  T
	index int
}

func (a *insertAction[T]) Execute() (bool, error) {
	index := a.index
	if index < 0 {
		index = a.list.Len()
	}
	resolved, err := a.list.Insert(index, a.elem)
	if err != nil {
		return false, err
	}
	a.index = resolved
	return true, nil
}

func (a *insertAction[T]) Undo() error {
	_, err := a.list.Remove(a.index)
	return err
}

func (a *insertAction[T]) Redo() error {
	_, err := a.list.Insert(a.index, a.elem)
	return err
}

// NewRemoveCmd returns a command removing elem. The position is looked up on
// execute and undo re-inserts at that position.
func NewRemoveCmd[T Element](list *List[T], elem T) *undo.Command {
	return undo.New("Remove "+list.Name(), &removeAction[T]{list: list, elem: elem, index: -1})
}

type removeAction[T Element] struct {
	list  *List[T]
	elem  T
	index int
}

func (a *removeAction[T]) Execute() (bool, error) {
	index := a.list.IndexOf(a.elem.UUID())
	if index < 0 {
		return false, fault.Logicf("uuidlist.Remove", "%s %s not in list", a.list.Name(), a.elem.UUID())
	}
	if _, err := a.list.Remove(index); err != nil {
		return false, err
	}
	a.index = index
	return true, nil
}

func (a *removeAction[T]) Undo() error {
	_, err := a.list.Insert(a.index, a.elem)
	return err
}

func (a *removeAction[T]) Redo() error {
	_, err := a.list.Remove(a.index)
	return err
}

// NewSwapCmd returns a command swapping the elements at i and j.
func NewSwapCmd[T Element](list *List[T], i, j int) *undo.Command {
	return undo.New("Move "+list.Name(), &swapAction[T]{list: list, i: i, j: j})
}

type swapAction[T Element] struct {
	list *List[T]
	i, j int
}

func (a *swapAction[T]) Execute() (bool, error) {
	if err := a.list.Swap(a.i, a.j); err != nil {
		return false, err
	}
	return a.i != a.j, nil
}

func (a *swapAction[T]) Undo() error { return a.list.Swap(a.j, a.i) }

func (a *swapAction[T]) Redo() error { return a.list.Swap(a.i, a.j) }
