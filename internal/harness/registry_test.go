package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/scenariotools/internal/tst"
)

type color int

func (c *color) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "red":
		*c = 1
	case "blue":
		*c = 2
	default:
		return errors.New("unknown color " + node.Value)
	}
	return nil
}

func valueNode(t *testing.T, src string) yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return *doc.Content[0]
}

func TestRegistry_Builtins(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		typ  string
		src  string
		want any
	}{
		{"int", "42", 42},
		{"int64", "-7", int64(-7)},
		{"string", "hello", "hello"},
		{"bool", "true", true},
		{"float64", "2.5", 2.5},
	}
	for _, tt := range tests {
		got, err := reg.Decode(TypedValue{Type: tt.typ, Value: valueNode(t, tt.src)})
		require.NoError(t, err, tt.typ)
		assert.Equal(t, tt.want, got)
	}
}

func TestRegistry_DecodeNil(t *testing.T) {
	got, err := NewRegistry().Decode(TypedValue{Type: NilType})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegistry_DecodeCustomUnmarshaler(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterType("color", color(0)))

	got, err := reg.Decode(TypedValue{Type: "color", Value: valueNode(t, "blue")})
	require.NoError(t, err)
	assert.Equal(t, color(2), got)

	_, err = reg.Decode(TypedValue{Type: "color", Value: valueNode(t, "green")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown color green")
}

func TestRegistry_DecodeUnknownType(t *testing.T) {
	_, err := NewRegistry().Decode(TypedValue{Type: "colour", Value: valueNode(t, "red")})
	assert.EqualError(t, err, `unknown type "colour"`)
}

func TestRegistry_RegistrationErrors(t *testing.T) {
	reg := NewRegistry()

	assert.Error(t, reg.RegisterType("int", 0), "duplicate builtin")
	assert.Error(t, reg.RegisterType(NilType, 0), "reserved name")
	assert.Error(t, reg.RegisterType("x", nil), "nil sample")

	require.NoError(t, reg.RegisterCall("f", func() {}))
	assert.Error(t, reg.RegisterCall("f", func() {}), "duplicate call")

	err := reg.RegisterCall("g", 42)
	require.Error(t, err)
	assert.True(t, tst.IsUnsupportedCallable(err))

	require.NoError(t, reg.RegisterFixture("fx", func() any { return 1 }))
	assert.Error(t, reg.RegisterFixture("fx", func() any { return 2 }))
	assert.Error(t, reg.RegisterFixture("nil", nil))
}

func TestRegistry_Listings(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCall("zeta", func(n int, rest ...any) {}))
	require.NoError(t, reg.RegisterCall("alpha", func(s string) error { return nil }))
	require.NoError(t, reg.RegisterFixture("second", func() any { return 2 }))
	require.NoError(t, reg.RegisterFixture("first", func() any { return 1 }))

	calls := reg.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "alpha", calls[0].Name)
	assert.Equal(t, "(string)", calls[0].Shape.String())
	assert.Equal(t, "zeta", calls[1].Name)
	assert.Equal(t, "(int, ...interface {})", calls[1].Shape.String())

	types := reg.Types()
	require.Len(t, types, 5)
	assert.Equal(t, TypeInfo{Name: "bool", GoType: "bool"}, types[0])

	assert.Equal(t, []string{"second", "first"}, reg.Fixtures())

	fn, ok := reg.Lookup("alpha")
	assert.True(t, ok)
	assert.NotNil(t, fn)
	_, ok = reg.Lookup("beta")
	assert.False(t, ok)
}

func TestRegistry_NewContextPutsFixturesLast(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterFixture("counter", func() any { return &Counter{} }))

	c, err := reg.NewContext([]TypedValue{
		{Type: "string", Value: valueNode(t, "a")},
		{Type: NilType},
	})
	require.NoError(t, err)
	assert.Equal(t, "(string, nil, *harness.Counter)", c.String())

	c2, err := reg.NewContext(nil)
	require.NoError(t, err)
	first, _ := c.Get(2)
	second, _ := c2.Get(0)
	assert.NotSame(t, first, second, "each context gets a fresh fixture")
}

func TestRegistry_CheckReportsEverything(t *testing.T) {
	reg := testRegistry(t)
	s := parse(t, `
name: n
description: d
context: [{type: colour, value: red}]
steps:
  - call: greet
    with: [{type: name, value: [1]}]
    steps: [{call: wave}]
  - call: jump
`)
	err := reg.Check(s)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `context[0]: unknown type "colour"`)
	assert.Contains(t, msg, "steps[0].with[0]: decode name")
	assert.Contains(t, msg, `steps[0].steps[0]: unknown call "wave"`)
	assert.Contains(t, msg, `steps[1]: unknown call "jump"`)
}
