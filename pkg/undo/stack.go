package undo

import (
	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/event"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// Stack is a linear undo history.
//
// Commands before the current index are executed, the ones after it are
// undone and can be redone. Executing a new command drops the redo tail.
// A transaction (BeginCommand ... CommitCommand) collects several commands
// into one history entry.
type Stack struct {
	commands   []*Command
	index      int
	cleanIndex int
	active     *Group
	activeText string
	changed    event.Bus[*Stack]
	logger     *zap.Logger
}

// StackOption configures a Stack.
type StackOption func(*Stack)

// WithLogger sets the stack's logger.
func WithLogger(logger *zap.Logger) StackOption {
	return func(s *Stack) { s.logger = logger }
}

// NewStack returns an empty stack.
func NewStack(opts ...StackOption) *Stack {
	s := &Stack{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to be called after every change of the stack.
func (s *Stack) Subscribe(fn event.Handler[*Stack]) func() {
	return s.changed.Subscribe(fn)
}

// Execute executes cmd and pushes it. Commands reporting that they modified
// nothing are not pushed.
func (s *Stack) Execute(cmd *Command) (bool, error) {
	if s.active != nil {
		return false, fault.Logicf("undo.Stack.Execute", "transaction %q is open", s.activeText)
	}
	modified, err := cmd.Execute()
	if err != nil {
		return false, err
	}
	if !modified {
		return false, nil
	}
	s.push(cmd)
	s.logger.Debug("command executed", zap.String("command", cmd.Text()))
	s.changed.Publish(event.Changed, s)
	return true, nil
}

// BeginCommand opens a transaction.
func (s *Stack) BeginCommand(text string) error {
	if s.active != nil {
		return fault.Logicf("undo.Stack.BeginCommand", "transaction %q is already open", s.activeText)
	}
	s.active = &Group{logger: s.logger}
	s.activeText = text
	return nil
}

// AppendToCommand executes cmd as part of the open transaction.
func (s *Stack) AppendToCommand(cmd *Command) (bool, error) {
	if s.active == nil {
		return false, fault.Logic("undo.Stack.AppendToCommand")
	}
	return s.active.ExecChild(cmd)
}

// CommitCommand closes the transaction and pushes it as one entry.
func (s *Stack) CommitCommand() error {
	if s.active == nil {
		return fault.Logic("undo.Stack.CommitCommand")
	}
	group := s.active
	text := s.activeText
	s.active = nil
	s.activeText = ""
	if !group.anyModified() {
		return nil
	}
	cmd := &Command{text: text, action: group, state: StateExecuted, modified: true}
	s.push(cmd)
	s.changed.Publish(event.Changed, s)
	return nil
}

// AbortCommand reverts everything appended to the open transaction.
func (s *Stack) AbortCommand() error {
	if s.active == nil {
		return fault.Logic("undo.Stack.AbortCommand")
	}
	if err := s.active.Undo(); err != nil {
		return err
	}
	s.active = nil
	s.activeText = ""
	return nil
}

// IsCommandActive reports whether a transaction is open.
func (s *Stack) IsCommandActive() bool { return s.active != nil }

// Undo reverts the command before the current index.
func (s *Stack) Undo() error {
	if s.active != nil {
		return fault.Logicf("undo.Stack.Undo", "transaction %q is open", s.activeText)
	}
	if !s.CanUndo() {
		return nil
	}
	cmd := s.commands[s.index-1]
	if err := cmd.Undo(); err != nil {
		return err
	}
	s.index--
	s.logger.Debug("command undone", zap.String("command", cmd.Text()))
	s.changed.Publish(event.Changed, s)
	return nil
}

// Redo re-applies the command at the current index.
func (s *Stack) Redo() error {
	if s.active != nil {
		return fault.Logicf("undo.Stack.Redo", "transaction %q is open", s.activeText)
	}
	if !s.CanRedo() {
		return nil
	}
	cmd := s.commands[s.index]
	if err := cmd.Redo(); err != nil {
		return err
	}
	s.index++
	s.logger.Debug("command redone", zap.String("command", cmd.Text()))
	s.changed.Publish(event.Changed, s)
	return nil
}

func (s *Stack) CanUndo() bool { return s.index > 0 }

func (s *Stack) CanRedo() bool { return s.index < len(s.commands) }

// UndoText returns the text of the command Undo would revert.
func (s *Stack) UndoText() string {
	if !s.CanUndo() {
		return ""
	}
	return s.commands[s.index-1].Text()
}

// RedoText returns the text of the command Redo would re-apply.
func (s *Stack) RedoText() string {
	if !s.CanRedo() {
		return ""
	}
	return s.commands[s.index].Text()
}

// Len returns the number of commands in the history.
func (s *Stack) Len() int { return len(s.commands) }

// IsClean reports whether the stack is at the index last marked clean.
func (s *Stack) IsClean() bool { return s.index == s.cleanIndex }

// SetClean marks the current index as clean, typically after saving.
func (s *Stack) SetClean() {
	s.cleanIndex = s.index
	s.changed.Publish(event.Changed, s)
}

// Clear forgets the whole history. It fails while a transaction is open.
func (s *Stack) Clear() error {
	if s.active != nil {
		return fault.Logicf("undo.Stack.Clear", "transaction %q is open", s.activeText)
	}
	s.commands = nil
	s.index = 0
	s.cleanIndex = 0
	s.changed.Publish(event.Changed, s)
	return nil
}

func (s *Stack) push(cmd *Command) {
	s.commands = append(s.commands[:s.index], cmd)
	s.index++
	if s.cleanIndex > len(s.commands)-1 {
		// the clean state was in the dropped redo tail
		s.cleanIndex = -1
	}
}
