package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stof/units"
	"stof/value"
)

func TestTruthy(t *testing.T) {
	assert.False(t, value.Truthy(value.Null()))
	assert.False(t, value.Truthy(value.Int(0)))
	assert.False(t, value.Truthy(value.Units(0, units.Meters)))
	assert.False(t, value.Truthy(value.Str("")))
	assert.True(t, value.Truthy(value.Str("x")))
	assert.True(t, value.Truthy(value.Bool(true)))
}

func TestRefTransparentEquality(t *testing.T) {
	ref := value.NewRef(value.Int(5))
	assert.True(t, value.Equal(ref, value.Int(5)))
}

func TestAngleEquality(t *testing.T) {
	deg := value.Units(180, units.Degrees)
	rad := value.Units(3.141592653589793, units.Radians)
	assert.True(t, value.Equal(deg, rad))
}

func TestNullIsIdentityForAdd(t *testing.T) {
	out, errv := value.Add(0, value.Null(), value.Int(5))
	require.Nil(t, errv)
	assert.True(t, value.Equal(out, value.Int(5)))
}

func TestIntegerDivisionByZeroErrors(t *testing.T) {
	_, errv := value.Div(1, value.Int(4), value.Int(0))
	require.NotNil(t, errv)
}

func TestMixedUnitDimensionFallsBackToFloat(t *testing.T) {
	out, errv := value.Add(0, value.Units(1, units.Meters), value.Units(1, units.Seconds))
	require.Nil(t, errv)
	assert.Equal(t, value.KindFloat, out.Kind)
}

func TestUnitAwareAddition(t *testing.T) {
	out, errv := value.Add(0, value.Units(1, units.Meters), value.Units(100, units.Centimeters))
	require.Nil(t, errv)
	assert.Equal(t, value.KindUnits, out.Kind)
	assert.InDelta(t, 2.0, out.F, 1e-9)
}

func TestCastStringToInt(t *testing.T) {
	out, errv := value.Cast(0, value.Str("42"), value.IntType())
	require.Nil(t, errv)
	assert.Equal(t, int64(42), out.I)
}

func TestCastFailureNeverReturnsThirdKind(t *testing.T) {
	_, errv := value.Cast(0, value.Obj(1), value.IntType())
	require.NotNil(t, errv)
}

func TestSemVerSatisfiesCaret(t *testing.T) {
	sv := value.SemVerV(1, 4, 2, "", "")
	assert.True(t, sv.SemVer.Satisfies("^1.2"))
	assert.False(t, sv.SemVer.Satisfies("^2.0"))
}

func TestOrderedSetPreservesInsertionOrder(t *testing.T) {
	s := value.NewSet()
	s.Set.Add(value.Int(3))
	s.Set.Add(value.Int(1))
	s.Set.Add(value.Int(2))
	items := s.Set.Items()
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[0].I)
	assert.Equal(t, int64(1), items[1].I)
}
