// Package undo implements reversible commands.
//
// A Command wraps an Action and enforces the command life cycle: Execute is
// called exactly once from the initial state, after which Undo and Redo
// alternate. When an Action fails the Command keeps its previous state, so an
// Action must either apply its whole effect or none of it. Group and
// ScopeGuard are the two tools for building such all-or-nothing Actions out of
// several steps.
package undo

import (
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// Action is the reversible work performed by a Command.
type Action interface {
	// Execute performs the action for the first time. It reports whether
	// anything was modified at all.
	Execute() (modified bool, err error)
	Undo() error
	Redo() error
}

// State is the life cycle position of a Command.
type State uint8

const (
	StateInitial State = iota
	StateExecuted
	StateUndone
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateExecuted:
		return "executed"
	case StateUndone:
		return "undone"
	default:
		return "unknown"
	}
}

// Command is a named, reversible operation.
type Command struct {
	text     string
	action   Action
	state    State
	modified bool
}

// New wraps action into a command with a human readable text such as
// "Add component".
func New(text string, action Action) *Command {
	return &Command{text: text, action: action}
}

// Text returns the description shown in undo/redo menus.
func (c *Command) Text() string { return c.text }

// State returns the current life cycle state.
func (c *Command) State() State { return c.state }

// WasEverExecuted reports whether Execute succeeded once.
func (c *Command) WasEverExecuted() bool { return c.state != StateInitial }

// IsUndone reports whether the command is currently undone.
func (c *Command) IsUndone() bool { return c.state == StateUndone }

// Modified reports what the successful Execute returned.
func (c *Command) Modified() bool { return c.modified }

// Execute performs the command. It may only be called once.
func (c *Command) Execute() (bool, error) {
	if c.state != StateInitial {
		return false, fault.Logicf("undo.Command.Execute", "%q is %s", c.text, c.state)
	}
	modified, err := c.action.Execute()
	if err != nil {
		return false, err
	}
	c.modified = modified
	c.state = StateExecuted
	return modified, nil
}

// Undo reverts the most recent forward effect.
func (c *Command) Undo() error {
	if c.state != StateExecuted {
		return fault.Logicf("undo.Command.Undo", "%q is %s", c.text, c.state)
	}
	if err := c.action.Undo(); err != nil {
		return err
	}
	c.state = StateUndone
	return nil
}

// Redo re-applies an undone command.
func (c *Command) Redo() error {
	if c.state != StateUndone {
		return fault.Logicf("undo.Command.Redo", "%q is %s", c.text, c.state)
	}
	if err := c.action.Redo(); err != nil {
		return err
	}
	c.state = StateExecuted
	return nil
}

// Func is an Action built from two closures. Redo runs Do again.
type Func struct {
	Do   func() error
	Back func() error
}

// NewFunc returns a command that runs do on execute/redo and back on undo.
func NewFunc(text string, do, back func() error) *Command {
	return New(text, &Func{Do: do, Back: back})
}

func (f *Func) Execute() (bool, error) {
	if err := f.Do(); err != nil {
		return false, err
	}
	return true, nil
}

func (f *Func) Undo() error { return f.Back() }

func (f *Func) Redo() error { return f.Do() }
