package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

func TestAttributeValidate(t *testing.T) {
	tests := []struct {
		name    string
		attr    Attribute
		runtime bool
		logic   bool
	}{
		{"string", Attribute{Key: "MPN", Type: TypeString, Value: "LM317"}, false, false},
		{"resistance", Attribute{Key: "R", Type: TypeResistance, Value: "4.7", Unit: "kiloohm"}, false, false},
		{"empty quantity", Attribute{Key: "C", Type: TypeCapacitance, Unit: "nanofarad"}, false, false},
		{"empty key", Attribute{Key: "  ", Type: TypeString}, true, false},
		{"wrong unit", Attribute{Key: "R", Type: TypeResistance, Value: "1", Unit: "volt"}, false, true},
		{"missing unit", Attribute{Key: "R", Type: TypeResistance, Value: "1"}, false, true},
		{"unit on string", Attribute{Key: "S", Type: TypeString, Value: "x", Unit: "ohm"}, false, true},
		{"non numeric", Attribute{Key: "V", Type: TypeVoltage, Value: "high", Unit: "volt"}, false, true},
		{"unknown type", Attribute{Key: "X", Type: "colour"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attr.Validate()
			assert.Equal(t, tt.runtime, fault.IsRuntime(err), "runtime: %v", err)
			assert.Equal(t, tt.logic, fault.IsLogic(err), "logic: %v", err)
		})
	}
}

func TestAttributeDisplay(t *testing.T) {
	a, err := New("R", TypeResistance, "10", "kiloohm")
	require.NoError(t, err)
	assert.Equal(t, "10kΩ", a.Display(true))
	assert.Equal(t, "10", a.Display(false))
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("frequency")
	require.NoError(t, err)
	assert.Equal(t, TypeFrequency, typ)
	_, err = ParseType("colour")
	assert.True(t, fault.IsRuntime(err))
}

func TestListDuplicateKey(t *testing.T) {
	a, _ := String("A", "1")
	b, _ := String("A", "2")
	_, err := NewList(a, b)
	require.True(t, fault.IsRuntime(err))
	assert.Contains(t, err.Error(), `"A"`)
}

func TestListSetRemoveEqual(t *testing.T) {
	a, _ := String("A", "1")
	b, _ := String("B", "2")
	l, err := NewList(a, b)
	require.NoError(t, err)

	clone := l.Clone()
	assert.True(t, l.Equal(clone))

	a2, _ := String("A", "changed")
	require.NoError(t, clone.Set(a2))
	assert.False(t, l.Equal(clone))
	got, ok := clone.Get("A")
	require.True(t, ok)
	assert.Equal(t, "changed", got.Value)
	assert.Equal(t, 0, clone.IndexOf("A"), "set keeps the position")

	assert.True(t, clone.Remove("B"))
	assert.False(t, clone.Remove("B"))
	assert.Equal(t, 1, clone.Len())

	var empty *List
	assert.True(t, empty.Equal(&List{}))
	assert.Error(t, clone.Set(Attribute{Type: TypeString}))
}

type mapProvider map[string]string

func (m mapProvider) AttributeValue(ns, key string, passToParents bool) (string, bool) {
	if ns != "" {
		key = ns + "::" + key
	}
	v, ok := m[key]
	return v, ok
}

func TestSubstitute(t *testing.T) {
	p := mapProvider{
		"NAME":       "R1",
		"VALUE":      "{{RESISTANCE}}",
		"RESISTANCE": "10kΩ",
		"PRJ::NAME":  "demo",
		"LOOP":       "{{LOOP}}",
	}
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"{{NAME}}", "R1"},
		{"{{NAME}}: {{VALUE}}", "R1: 10kΩ"},
		{"{{PRJ::NAME}}/{{NAME}}", "demo/R1"},
		{"{{UNKNOWN}} stays", "{{UNKNOWN}} stays"},
		{"{{CMP::UNKNOWN}}", "{{CMP::UNKNOWN}}"},
		{"a { b } c", "a { b } c"},
		{"{{ NAME }}", "{{ NAME }}"},
		{"unterminated {{NAME", "unterminated {{NAME"},
		{"{{LOOP}}", "{{LOOP}}"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.in, p))
		})
	}
	assert.Equal(t, "{{NAME}}", Substitute("{{NAME}}", nil))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"NAME", "PRJ::AUTHOR"}, Placeholders("x {{NAME}} y {{PRJ::AUTHOR}}"))
	assert.Nil(t, Placeholders("no placeholders"))
}
