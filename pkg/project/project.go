// Package project implements the circuit consistency engine of a project:
// the circuit registry with its net classes, net signals and component
// instances, the rule check messages they maintain, and the undo commands
// that change them.
//
// All types in this package are meant to be used from a single goroutine.
// Change notifications are delivered synchronously.
package project

import (
	"slices"

	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/attr"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/erc"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/event"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/library"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/undo"
)

// NamespaceProject is the attribute namespace of project level variables.
const NamespaceProject = "PRJ"

// Settings are the project settings relevant to the circuit.
type Settings struct {
	// LocaleOrder selects the default value of new components.
	LocaleOrder []string
	// NormOrder selects the name prefix of new components.
	NormOrder []string
}

// DefaultSettings returns the settings of a new project.
func DefaultSettings() Settings {
	return Settings{LocaleOrder: []string{library.DefaultLocale}}
}

// Project ties a library, a circuit and its rule check messages together.
type Project struct {
	name       string
	library    library.Repository
	settings   Settings
	attributes *attr.List
	circuit    *Circuit
	erc        *erc.Registry
	undo       *undo.Stack
	logger     *zap.Logger

	attributesChanged event.Bus[*Project]
}

// Option configures a Project.
type Option func(*Project)

// WithLogger sets the logger handed to the circuit, the rule check registry
// and the undo stack.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Project) { p.logger = logger }
}

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(p *Project) { p.settings = s }
}

// WithAttributes sets the project attributes.
func WithAttributes(l *attr.List) Option {
	return func(p *Project) { p.attributes = l.Clone() }
}

// New returns a project with an empty circuit.
func New(name string, lib library.Repository, opts ...Option) *Project {
	p := &Project{
		name:       name,
		library:    lib,
		settings:   DefaultSettings(),
		attributes: &attr.List{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.erc = erc.NewRegistry(p.logger.Named("erc"))
	p.circuit = newCircuit(p, p.erc)
	p.undo = undo.NewStack(undo.WithLogger(p.logger.Named("undo")))
	return p
}

func (p *Project) Name() string                { return p.name }
func (p *Project) Library() library.Repository { return p.library }
func (p *Project) Circuit() *Circuit           { return p.circuit }
func (p *Project) ERC() *erc.Registry          { return p.erc }
func (p *Project) UndoStack() *undo.Stack      { return p.undo }
func (p *Project) Logger() *zap.Logger         { return p.logger }

// Settings returns a copy of the settings.
func (p *Project) Settings() Settings {
	return Settings{
		LocaleOrder: slices.Clone(p.settings.LocaleOrder),
		NormOrder:   slices.Clone(p.settings.NormOrder),
	}
}

// Attributes returns a copy of the project attributes.
func (p *Project) Attributes() *attr.List { return p.attributes.Clone() }

// SetAttributes replaces the project attributes and notifies dependents.
func (p *Project) SetAttributes(l *attr.List) {
	if p.attributes.Equal(l) {
		return
	}
	p.attributes = l.Clone()
	p.attributesChanged.Publish(event.Changed, p)
}

// OnAttributesChanged registers fn to be called after the project
// attributes changed.
func (p *Project) OnAttributesChanged(fn func(*Project)) (unsubscribe func()) {
	return p.attributesChanged.Subscribe(func(e event.Event[*Project]) { fn(e.Payload) })
}

// AttributeValue resolves NAME and the project attributes in the PRJ (or
// empty) namespace. The project has no parent scope.
func (p *Project) AttributeValue(namespace, key string, _ bool) (string, bool) {
	if namespace != "" && namespace != NamespaceProject {
		return "", false
	}
	if key == "NAME" {
		return p.name, true
	}
	if a, ok := p.attributes.Get(key); ok {
		return a.Display(true), true
	}
	return "", false
}
