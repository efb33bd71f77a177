package units_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stof/units"
)

func TestConvertLength(t *testing.T) {
	v, err := units.Convert(1, units.Kilometers, units.Meters)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, v)
}

func TestConvertIncompatibleDimensions(t *testing.T) {
	_, err := units.Convert(1, units.Meters, units.Seconds)
	assert.Error(t, err)
}

func TestAngleEqualityWithinSixDecimals(t *testing.T) {
	degVal, err := units.Convert(180, units.Degrees, units.PositiveRadians)
	require.NoError(t, err)
	radVal, err := units.Convert(math.Pi, units.Radians, units.PositiveRadians)
	require.NoError(t, err)
	assert.InDelta(t, radVal, degVal, 1e-6)
}

func TestNegativeAngleNormalizesPositive(t *testing.T) {
	v, err := units.Convert(-90, units.Degrees, units.PositiveRadians)
	require.NoError(t, err)
	assert.Greater(t, v, 0.0)
}

func TestCommonBaseUnit(t *testing.T) {
	assert.Equal(t, units.Meters, units.Common(units.Feet, units.Inches))
	assert.Equal(t, units.PositiveRadians, units.Common(units.Degrees, units.Radians))
	assert.Equal(t, units.Undefined, units.Common(units.Meters, units.Seconds))
}

func TestTemperatureConversion(t *testing.T) {
	v, err := units.Convert(0, units.Celsius, units.Fahrenheit)
	require.NoError(t, err)
	assert.Equal(t, 32.0, v)
}
