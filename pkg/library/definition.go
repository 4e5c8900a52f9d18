package library

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/attr"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// Definition is the on-disk (YAML) form of a component.
type Definition struct {
	UUID           string             `yaml:"uuid" validate:"required,uuid"`
	Name           string             `yaml:"name" validate:"required"`
	Description    string             `yaml:"description,omitempty"`
	SchematicOnly  bool               `yaml:"schematic_only,omitempty"`
	DefaultValues  map[string]string  `yaml:"default_values,omitempty"`
	Prefixes       map[string]string  `yaml:"prefixes,omitempty"`
	Attributes     []AttributeDef     `yaml:"attributes,omitempty" validate:"dive"`
	Signals        []SignalDef        `yaml:"signals,omitempty" validate:"dive"`
	Variants       []SymbolVariantDef `yaml:"variants" validate:"required,min=1,dive"`
	DefaultVariant string             `yaml:"default_variant,omitempty" validate:"omitempty,uuid"`
}

// AttributeDef is a component default attribute.
type AttributeDef struct {
	Key   string `yaml:"key" validate:"required"`
	Type  string `yaml:"type" validate:"required,attrtype"`
	Unit  string `yaml:"unit,omitempty"`
	Value string `yaml:"value"`
}

// SignalDef declares a component signal.
type SignalDef struct {
	UUID          string `yaml:"uuid" validate:"required,uuid"`
	Name          string `yaml:"name" validate:"required"`
	Required      bool   `yaml:"required,omitempty"`
	ForcedNetName string `yaml:"forced_net_name,omitempty"`
}

// SymbolVariantDef declares a symbol variant.
type SymbolVariantDef struct {
	UUID  string                 `yaml:"uuid" validate:"required,uuid"`
	Name  string                 `yaml:"name" validate:"required"`
	Norm  string                 `yaml:"norm,omitempty"`
	Items []SymbolVariantItemDef `yaml:"items" validate:"dive"`
}

// SymbolVariantItemDef declares one placeable symbol of a variant.
type SymbolVariantItemDef struct {
	UUID     string         `yaml:"uuid" validate:"required,uuid"`
	Symbol   string         `yaml:"symbol" validate:"required,uuid"`
	Suffix   string         `yaml:"suffix,omitempty"`
	Required bool           `yaml:"required,omitempty"`
	Pins     []PinSignalDef `yaml:"pins,omitempty" validate:"dive"`
}

// PinSignalDef maps a pin to a signal; an empty signal leaves the pin
// unconnected.
type PinSignalDef struct {
	Pin    string `yaml:"pin" validate:"required,uuid"`
	Signal string `yaml:"signal,omitempty" validate:"omitempty,uuid"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	err := validate.RegisterValidation("attrtype", func(fl validator.FieldLevel) bool {
		_, err := attr.ParseType(fl.Field().String())
		return err == nil
	})
	if err != nil {
		panic(err)
	}
}

// Decode reads one YAML component definition and builds it.
func Decode(r io.Reader) (*Component, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fault.WrapRuntime(err, "library: invalid component definition")
	}
	return def.Build()
}

// DecodeBytes is Decode for in-memory data.
func DecodeBytes(data []byte) (*Component, error) {
	return Decode(bytes.NewReader(data))
}

// Build validates the definition and returns the immutable component.
// All failures are RuntimeErrors naming the offending element.
func (d *Definition) Build() (*Component, error) {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fault.WrapRuntime(err, "library: component %q: invalid field %s", d.Name, verrs[0].Namespace())
		}
		return nil, fault.WrapRuntime(err, "library: component %q", d.Name)
	}

	c := &Component{
		uuid:          uuid.MustParse(d.UUID),
		name:          d.Name,
		description:   d.Description,
		schematicOnly: d.SchematicOnly,
		defaultValues: copyMap(d.DefaultValues),
		prefixes:      copyMap(d.Prefixes),
	}

	attrs := make([]attr.Attribute, 0, len(d.Attributes))
	for _, a := range d.Attributes {
		typ, _ := attr.ParseType(a.Type)
		attrs = append(attrs, attr.Attribute{Key: a.Key, Type: typ, Value: a.Value, Unit: a.Unit})
	}
	list, err := attr.NewList(attrs...)
	if err != nil {
		return nil, fault.WrapRuntime(err, "library: component %s: attributes", c.uuid)
	}
	c.attributes = list

	for _, s := range d.Signals {
		sig := &Signal{
			uuid:          uuid.MustParse(s.UUID),
			name:          s.Name,
			required:      s.Required,
			forcedNetName: s.ForcedNetName,
		}
		if _, dup := c.Signal(sig.uuid); dup {
			return nil, fault.Runtimef("library: component %s: duplicate signal %s", c.uuid, sig.uuid)
		}
		c.signals = append(c.signals, sig)
	}

	for _, vd := range d.Variants {
		v, err := c.buildVariant(vd)
		if err != nil {
			return nil, err
		}
		if _, dup := c.SymbolVariant(v.uuid); dup {
			return nil, fault.Runtimef("library: component %s: duplicate symbol variant %s", c.uuid, v.uuid)
		}
		c.variants = append(c.variants, v)
	}

	c.defaultVariant = c.variants[0].uuid
	if d.DefaultVariant != "" {
		c.defaultVariant = uuid.MustParse(d.DefaultVariant)
		if _, ok := c.SymbolVariant(c.defaultVariant); !ok {
			return nil, fault.Runtimef("library: component %s: unknown default symbol variant %s", c.uuid, c.defaultVariant)
		}
	}
	return c, nil
}

func (c *Component) buildVariant(vd SymbolVariantDef) (*SymbolVariant, error) {
	v := &SymbolVariant{uuid: uuid.MustParse(vd.UUID), name: vd.Name, norm: vd.Norm}
	for _, id := range vd.Items {
		item := &SymbolVariantItem{
			uuid:     uuid.MustParse(id.UUID),
			symbol:   uuid.MustParse(id.Symbol),
			suffix:   id.Suffix,
			required: id.Required,
		}
		if _, dup := v.Item(item.uuid); dup {
			return nil, fault.Runtimef("library: symbol variant %s: duplicate item %s", v.uuid, item.uuid)
		}
		for _, p := range id.Pins {
			ps := PinSignal{Pin: uuid.MustParse(p.Pin)}
			if p.Signal != "" {
				ps.Signal = uuid.MustParse(p.Signal)
				if _, ok := c.Signal(ps.Signal); !ok {
					return nil, fault.Runtimef("library: symbol variant item %s: pin %s maps to unknown signal %s",
						item.uuid, ps.Pin, ps.Signal)
				}
			}
			item.pins = append(item.pins, ps)
		}
		v.items = append(v.items, item)
	}
	return v, nil
}

// Encode writes c as a YAML definition.
func Encode(w io.Writer, c *Component) error {
	def := c.Definition()
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return fmt.Errorf("library: encode %s: %w", c.uuid, err)
	}
	return enc.Close()
}

// Definition returns the on-disk form of c.
func (c *Component) Definition() *Definition {
	d := &Definition{
		UUID:           c.uuid.String(),
		Name:           c.name,
		Description:    c.description,
		SchematicOnly:  c.schematicOnly,
		DefaultValues:  copyMap(c.defaultValues),
		Prefixes:       copyMap(c.prefixes),
		DefaultVariant: c.defaultVariant.String(),
	}
	for _, a := range c.attributes.Items() {
		d.Attributes = append(d.Attributes, AttributeDef{Key: a.Key, Type: string(a.Type), Unit: a.Unit, Value: a.Value})
	}
	for _, s := range c.signals {
		d.Signals = append(d.Signals, SignalDef{
			UUID: s.uuid.String(), Name: s.name, Required: s.required, ForcedNetName: s.forcedNetName,
		})
	}
	for _, v := range c.variants {
		vd := SymbolVariantDef{UUID: v.uuid.String(), Name: v.name, Norm: v.norm}
		for _, it := range v.items {
			id := SymbolVariantItemDef{
				UUID: it.uuid.String(), Symbol: it.symbol.String(), Suffix: it.suffix, Required: it.required,
			}
			for _, p := range it.pins {
				pd := PinSignalDef{Pin: p.Pin.String()}
				if p.Signal != uuid.Nil {
					pd.Signal = p.Signal.String()
				}
				id.Pins = append(id.Pins, pd)
			}
			vd.Items = append(vd.Items, id)
		}
		d.Variants = append(d.Variants, vd)
	}
	return d
}

func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
