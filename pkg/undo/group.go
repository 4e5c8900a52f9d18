package undo

import (
	"go.uber.org/zap"
)

// Group is an Action made of child commands. Children run in order on
// execute and redo, in reverse order on undo. If a child fails, the children
// already processed in that call are reverted so the group as a whole is
// unchanged.
type Group struct {
	children []*Command
	build    func(g *Group) error
	logger   *zap.Logger
}

// NewGroup returns a command executing the given children in order.
func NewGroup(text string, children ...*Command) *Command {
	return New(text, &Group{children: children})
}

// NewGroupFunc returns a command whose children are created while it executes.
// build calls ExecChild for every step; if build fails, every child it already
// executed is undone again.
func NewGroupFunc(text string, build func(g *Group) error) *Command {
	return New(text, &Group{build: build})
}

// SetLogger sets where rollback failures are reported.
func (g *Group) SetLogger(logger *zap.Logger) { g.logger = logger }

// Children returns the child commands executed so far.
func (g *Group) Children() []*Command {
	out := make([]*Command, len(g.children))
	copy(out, g.children)
	return out
}

// ExecChild executes cmd and appends it to the group. It is meant to be called
// from a build function.
func (g *Group) ExecChild(cmd *Command) (bool, error) {
	modified, err := cmd.Execute()
	if err != nil {
		return false, err
	}
	g.children = append(g.children, cmd)
	return modified, nil
}

func (g *Group) Execute() (modified bool, err error) {
	if g.build != nil {
		sg := NewScopeGuard(0)
		defer sg.Finish(&err, g.logger)
		sg.Add(func() error { return g.undoChildren(len(g.children)) })
		if err := g.build(g); err != nil {
			return false, err
		}
		sg.Dismiss()
		return g.anyModified(), nil
	}

	for i, child := range g.children {
		// children left undone by an earlier failed attempt are redone
		var err error
		if child.IsUndone() {
			err = child.Redo()
		} else {
			_, err = child.Execute()
		}
		if err != nil {
			g.rollbackUndo(i, err)
			return false, err
		}
	}
	return g.anyModified(), nil
}

func (g *Group) Undo() error {
	for i := len(g.children) - 1; i >= 0; i-- {
		if err := g.children[i].Undo(); err != nil {
			for j := i + 1; j < len(g.children); j++ {
				if rbErr := g.children[j].Redo(); rbErr != nil {
					g.warn("undo rollback failed", err, rbErr)
				}
			}
			return err
		}
	}
	return nil
}

func (g *Group) Redo() error {
	for i, child := range g.children {
		if err := child.Redo(); err != nil {
			g.rollbackUndo(i, err)
			return err
		}
	}
	return nil
}

// undoChildren undoes the first n children in reverse order, stopping at the
// first failure.
func (g *Group) undoChildren(n int) error {
	for i := n - 1; i >= 0; i-- {
		if err := g.children[i].Undo(); err != nil {
			return err
		}
	}
	g.children = g.children[:0]
	return nil
}

// rollbackUndo undoes children [0, n) after child n failed with cause.
func (g *Group) rollbackUndo(n int, cause error) {
	for i := n - 1; i >= 0; i-- {
		if rbErr := g.children[i].Undo(); rbErr != nil {
			g.warn("rollback failed", cause, rbErr)
		}
	}
}

func (g *Group) anyModified() bool {
	for _, child := range g.children {
		if child.Modified() {
			return true
		}
	}
	return false
}

func (g *Group) warn(msg string, cause, rbErr error) {
	if g.logger == nil {
		return
	}
	g.logger.Warn(msg, zap.NamedError("cause", cause), zap.NamedError("rollback", rbErr))
}
