package project

import "github.com/google/uuid"

// The placement layer (schematic and board editors) owns symbols, devices,
// pins and pads. The circuit only keeps non-owning references to them to know
// whether its objects are in use. Implementations are expected to be
// pointers so that they compare by identity.

// Symbol is a placed symbol variant item of a component instance.
type Symbol interface {
	Circuit() *Circuit
	// Schematic identifies the sheet the symbol is placed on.
	Schematic() uuid.UUID
	// SymbolVariantItem is the UUID of the library item the symbol shows.
	SymbolVariantItem() uuid.UUID
}

// Device is a board placement of a component instance.
type Device interface {
	Circuit() *Circuit
}

// SymbolPin is a pin of a placed symbol mapped to a component signal.
type SymbolPin interface {
	Circuit() *Circuit
	// IsConnected reports whether a wire is attached to the pin.
	IsConnected() bool
}

// FootprintPad is a pad of a placed device mapped to a component signal.
type FootprintPad interface {
	Circuit() *Circuit
	// IsUsed reports whether a trace or plane is attached to the pad.
	IsUsed() bool
}
