package undo

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ScopeGuard collects compensating actions for a multi-step operation.
//
// Register one compensation after every step that succeeded. When the whole
// operation succeeds call Dismiss; otherwise Rollback runs the compensations
// in reverse order. The usual shape is
//
//	func (x *Thing) Apply() (err error) {
//		sg := undo.NewScopeGuard(len(x.parts))
//		defer sg.Finish(&err, x.logger)
//		for _, p := range x.parts {
//			if err := p.Apply(); err != nil {
//				return err
//			}
//			sg.Add(p.Revert)
//		}
//		return nil
//	}
type ScopeGuard struct {
	steps     []func() error
	dismissed bool
}

// NewScopeGuard returns a guard with capacity for n compensations.
func NewScopeGuard(n int) *ScopeGuard {
	return &ScopeGuard{steps: make([]func() error, 0, n)}
}

// Add registers a compensation for the step that just succeeded.
func (g *ScopeGuard) Add(compensate func() error) {
	g.steps = append(g.steps, compensate)
}

// Len returns the number of pending compensations.
func (g *ScopeGuard) Len() int { return len(g.steps) }

// Dismiss discards all compensations.
func (g *ScopeGuard) Dismiss() {
	g.dismissed = true
	g.steps = nil
}

// Rollback runs the registered compensations in reverse order and returns the
// combined errors of those that failed. A dismissed guard does nothing.
func (g *ScopeGuard) Rollback() error {
	if g.dismissed {
		return nil
	}
	var errs error
	for i := len(g.steps) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, g.steps[i]())
	}
	g.steps = nil
	g.dismissed = true
	return errs
}

// Finish dismisses the guard when *errp is nil and rolls back otherwise.
// *errp is never replaced: compensation failures are only logged.
func (g *ScopeGuard) Finish(errp *error, logger *zap.Logger) {
	if errp == nil || *errp == nil {
		g.Dismiss()
		return
	}
	if rbErr := g.Rollback(); rbErr != nil && logger != nil {
		logger.Warn("rollback failed",
			zap.NamedError("cause", *errp),
			zap.Errors("rollback", multierr.Errors(rbErr)))
	}
}
