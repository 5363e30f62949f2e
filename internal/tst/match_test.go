package tst

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Base struct {
	Name string
}

type Derived struct {
	Base
	Extra int
}

type Other struct {
	Base
}

type Middle struct {
	Base
}

type Outer struct {
	*Middle
}

type Shaper interface {
	Area() float64
}

type Square struct {
	Side float64
}

func (s Square) Area() float64 { return s.Side * s.Side }

type Counter struct {
	N int
}

func (c *Counter) Inc() { c.N++ }

type Incrementer interface {
	Inc()
}

type Names []string

func TestMatch_ExactRegardlessOfPosition(t *testing.T) {
	for _, ctx := range []*Context{
		NewContext("first", 1, 2.5),
		NewContext(1, "first", 2.5),
		NewContext(1, 2.5, "first"),
	} {
		got, err := Match[string](ctx)
		require.NoError(t, err)
		assert.Equal(t, "first", got)
	}
}

func TestMatch_EarliestWinsWithinTier(t *testing.T) {
	ctx := NewContext(1.5, "a", 2.5, "b")

	s, err := Match[string](ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", s)

	f, err := Match[float64](ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)
}

func TestMatch_StringAmongScalars(t *testing.T) {
	ctx := NewContext(95.0, true, 'R', 'U', "Hi!", int16(1))

	sel, err := MatchType(ctx, reflect.TypeOf((*string)(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, 4, sel.Index)
	assert.Equal(t, PriorityExact, sel.Priority)

	got, err := Match[string](ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hi!", got)
}

func TestMatch_NoNumericConversion(t *testing.T) {
	_, err := Match[float64](NewContext(42, int16(1), uint8(2)))
	require.Error(t, err)
	assert.True(t, IsMatchNotFound(err))

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "float64", te.Target)
	assert.Equal(t, "(int, int16, uint8)", te.Context)
}

func TestMatch_EmptyContext(t *testing.T) {
	_, err := Match[int](NewContext())
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMatch_ExactPointerSharesSlot(t *testing.T) {
	ctx := NewContext("pi", 3.14)

	p, err := Match[*float64](ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 3.14, *p)

	*p = 2.71
	v, err := Match[float64](ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.71, v)
}

func TestMatch_InterfaceIsReference(t *testing.T) {
	ctx := NewContext(1, Square{Side: 2})

	sel, err := MatchType(ctx, reflect.TypeOf((*Shaper)(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, PriorityReference, sel.Priority)

	s, err := Match[Shaper](ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Area())
}

func TestMatch_IdenticalUnderlyingTypeIsReference(t *testing.T) {
	ctx := NewContext([]string{"a", "b"})

	sel, err := MatchType(ctx, reflect.TypeOf((*Names)(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, PriorityReference, sel.Priority)

	got, err := Match[Names](ctx)
	require.NoError(t, err)
	assert.Equal(t, Names{"a", "b"}, got)
}

func TestMatch_EmbeddedBase(t *testing.T) {
	ctx := NewContext(Derived{Base: Base{Name: "derived"}, Extra: 7})

	b, err := Match[Base](ctx)
	require.NoError(t, err)
	assert.Equal(t, "derived", b.Name)

	sel, err := MatchType(ctx, reflect.TypeOf((**Base)(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, PriorityPointer, sel.Priority)

	p, err := Match[*Base](ctx)
	require.NoError(t, err)
	p.Name = "renamed"

	d, err := Match[Derived](ctx)
	require.NoError(t, err)
	assert.Equal(t, "renamed", d.Name)
	assert.Equal(t, 7, d.Extra)
}

func TestMatch_ExactBeatsDerived(t *testing.T) {
	// Derived-to-base binding ranks below both exact tiers.
	ctx := NewContext(Derived{Base: Base{Name: "derived"}}, Base{Name: "base"})

	b, err := Match[Base](ctx)
	require.NoError(t, err)
	assert.Equal(t, "base", b.Name)

	p, err := Match[*Base](ctx)
	require.NoError(t, err)
	assert.Equal(t, "base", p.Name)
}

func TestMatch_DerivedPointerElement(t *testing.T) {
	d := &Derived{Base: Base{Name: "owned"}}
	ctx := NewContext(d)

	p, err := Match[*Base](ctx)
	require.NoError(t, err)
	assert.Same(t, &d.Base, p)
}

func TestMatch_NilPointerPartwayDownEmbeddedPath(t *testing.T) {
	ctx := NewContext(Outer{})

	sel, err := MatchType(ctx, reflect.TypeOf((*Base)(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, PriorityReference, sel.Priority)

	_, err = Match[Base](ctx)
	require.Error(t, err)
	assert.True(t, IsMatchNotFound(err))
	assert.Contains(t, err.Error(), "nil *tst.Middle on embedded field path")

	_, err = Match[*Base](ctx)
	assert.True(t, IsMatchNotFound(err))

	called := false
	b, err := Bind(func(Base) { called = true }, ctx)
	require.NoError(t, err)
	_, err = b.Invoke()
	assert.True(t, IsMatchNotFound(err))
	assert.False(t, called)
}

func TestMatch_EmbeddedPathThroughPointer(t *testing.T) {
	m := &Middle{Base: Base{Name: "inner"}}
	ctx := NewContext(Outer{Middle: m})

	b, err := Match[Base](ctx)
	require.NoError(t, err)
	assert.Equal(t, "inner", b.Name)

	p, err := Match[*Base](ctx)
	require.NoError(t, err)
	assert.Same(t, &m.Base, p)
}

func TestMatch_DerivedTieGoesToEarliest(t *testing.T) {
	ctx := NewContext(Other{Base: Base{Name: "other"}}, Derived{Base: Base{Name: "derived"}})

	b, err := Match[Base](ctx)
	require.NoError(t, err)
	assert.Equal(t, "other", b.Name)
}

func TestMatch_PointerMethodSet(t *testing.T) {
	ctx := NewContext(Counter{})

	sel, err := MatchType(ctx, reflect.TypeOf((*Incrementer)(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, PriorityPointer, sel.Priority)

	inc, err := Match[Incrementer](ctx)
	require.NoError(t, err)
	inc.Inc()
	inc.Inc()

	c, err := Match[Counter](ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, c.N)
}

func TestMatch_ValueThroughPointer(t *testing.T) {
	x := 1.25
	ctx := NewContext(&x)

	sel, err := MatchType(ctx, reflect.TypeOf((*float64)(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, PriorityValue, sel.Priority)

	v, err := Match[float64](ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.25, v)
}

func TestMatch_ValueThroughNilPointerFails(t *testing.T) {
	var p *float64
	_, err := Match[float64](NewContext(p))
	require.Error(t, err)
	assert.True(t, IsMatchNotFound(err))
}

func TestMatch_UntypedNil(t *testing.T) {
	ctx := NewContext(nil)

	p, err := Match[*int](ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	e, err := Match[error](ctx)
	require.NoError(t, err)
	assert.Nil(t, e)

	_, err = Match[int](ctx)
	assert.True(t, IsMatchNotFound(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		target    reflect.Type
		candidate reflect.Type
		want      Priority
	}{
		{"same type", reflect.TypeOf((*int)(nil)).Elem(), reflect.TypeOf((*int)(nil)).Elem(), PriorityExact},
		{"address of value", reflect.TypeOf((**int)(nil)).Elem(), reflect.TypeOf((*int)(nil)).Elem(), PriorityExactPointer},
		{"interface", reflect.TypeOf((*Shaper)(nil)).Elem(), reflect.TypeOf((*Square)(nil)).Elem(), PriorityReference},
		{"any", reflect.TypeOf((*any)(nil)).Elem(), reflect.TypeOf((*string)(nil)).Elem(), PriorityReference},
		{"embedded value", reflect.TypeOf((*Base)(nil)).Elem(), reflect.TypeOf((*Derived)(nil)).Elem(), PriorityReference},
		{"embedded through pointer", reflect.TypeOf((*Base)(nil)).Elem(), reflect.TypeOf((**Derived)(nil)).Elem(), PriorityReference},
		{"address of embedded", reflect.TypeOf((**Base)(nil)).Elem(), reflect.TypeOf((*Derived)(nil)).Elem(), PriorityPointer},
		{"pointer method set", reflect.TypeOf((*Incrementer)(nil)).Elem(), reflect.TypeOf((*Counter)(nil)).Elem(), PriorityPointer},
		{"copy of pointee", reflect.TypeOf((*int)(nil)).Elem(), reflect.TypeOf((**int)(nil)).Elem(), PriorityValue},
		{"nil to pointer", reflect.TypeOf((**int)(nil)).Elem(), nil, PriorityCustom},
		{"nil to slice", reflect.TypeOf((*[]int)(nil)).Elem(), nil, PriorityCustom},
		{"nil to int", reflect.TypeOf((*int)(nil)).Elem(), nil, PriorityNone},
		{"int to float", reflect.TypeOf((*float64)(nil)).Elem(), reflect.TypeOf((*int)(nil)).Elem(), PriorityNone},
		{"rune to string", reflect.TypeOf((*string)(nil)).Elem(), reflect.TypeOf((*rune)(nil)).Elem(), PriorityNone},
		{"ambiguous embedding", reflect.TypeOf((*Base)(nil)).Elem(), reflect.TypeOf((*struct {
			Derived
			Other
		})(nil)).Elem(), PriorityNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.target, tt.candidate))
		})
	}
}

func TestPriority_Order(t *testing.T) {
	order := []Priority{
		PriorityNone,
		PriorityCustom,
		PriorityValue,
		PriorityPointer,
		PriorityReference,
		PriorityExactPointer,
		PriorityExact,
	}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1], order[i])
	}
}

func TestPriority_StringRoundTrip(t *testing.T) {
	for p := PriorityNone; p <= PriorityExact; p++ {
		got, ok := ParsePriority(p.String())
		require.True(t, ok, p.String())
		assert.Equal(t, p, got)
	}

	_, ok := ParsePriority("best")
	assert.False(t, ok)
	assert.Equal(t, "Priority(42)", Priority(42).String())
}
