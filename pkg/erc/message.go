// Package erc holds electrical rule check messages.
//
// Messages are owned by circuit objects: an owner registers each of its
// messages once when it is constructed, then only flips visibility and text
// as its state changes, and unregisters them when it is destroyed. A Registry
// collects all messages of one project and tells observers about changes.
package erc

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/event"
)

// Severity classifies a message by domain and weight.
type Severity int

const (
	CircuitError Severity = iota
	CircuitWarning
	SchematicError
	SchematicWarning
	BoardError
	BoardWarning
)

func (s Severity) String() string {
	switch s {
	case CircuitError:
		return "circuit error"
	case CircuitWarning:
		return "circuit warning"
	case SchematicError:
		return "schematic error"
	case SchematicWarning:
		return "schematic warning"
	case BoardError:
		return "board error"
	case BoardWarning:
		return "board warning"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// IsError reports whether s is one of the error severities.
func (s Severity) IsError() bool {
	return s == CircuitError || s == SchematicError || s == BoardError
}

// OwnerKind names the class of object owning a message.
type OwnerKind string

const (
	OwnerComponent       OwnerKind = "Component"
	OwnerComponentSignal OwnerKind = "ComponentSignal"
	OwnerNetSignal       OwnerKind = "NetSignal"
	OwnerNetClass        OwnerKind = "NetClass"
)

// Key identifies a message: which object owns it and what it is about.
type Key struct {
	OwnerKind OwnerKind
	OwnerKey  string
	MsgKey    string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.OwnerKind, k.OwnerKey, k.MsgKey)
}

// Message is a single rule check result. Only its text, visibility and
// ignore flag change after registration.
type Message struct {
	registry *Registry
	key      Key
	severity Severity
	text     string
	visible  bool
	ignored  bool
}

func (m *Message) Key() Key             { return m.key }
func (m *Message) Severity() Severity   { return m.severity }
func (m *Message) Text() string         { return m.text }
func (m *Message) IsVisible() bool      { return m.visible }
func (m *Message) IsIgnored() bool      { return m.ignored }
func (m *Message) IsRegistered() bool   { return m.registry != nil }
func (m *Message) OwnerKind() OwnerKind { return m.key.OwnerKind }
func (m *Message) OwnerKey() string     { return m.key.OwnerKey }
func (m *Message) MsgKey() string       { return m.key.MsgKey }

// IsActive reports whether the message is visible and not ignored.
func (m *Message) IsActive() bool { return m.visible && !m.ignored }

// SetText updates the text.
func (m *Message) SetText(text string) {
	if text == m.text {
		return
	}
	m.text = text
	m.changed()
}

// SetVisible shows or hides the message.
func (m *Message) SetVisible(visible bool) {
	if visible == m.visible {
		return
	}
	m.visible = visible
	m.changed()
}

// SetIgnored marks the message as acknowledged by the user.
func (m *Message) SetIgnored(ignored bool) {
	if ignored == m.ignored {
		return
	}
	m.ignored = ignored
	m.changed()
}

// Unregister removes the message from its registry. It is a no-op for
// messages that are not registered.
func (m *Message) Unregister() {
	if m.registry != nil {
		m.registry.unregister(m)
	}
}

func (m *Message) changed() {
	if m.registry != nil {
		m.registry.bus.Publish(event.Changed, m)
	}
}
