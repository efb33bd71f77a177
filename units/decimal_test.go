package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stof/units"
)

func TestConvertExactMatchesConvertForLength(t *testing.T) {
	want, err := units.Convert(5280, units.Feet, units.Miles)
	require.NoError(t, err)
	got, err := units.ConvertExact(5280, units.Feet, units.Miles)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)
}

func TestConvertExactRoundTripsWithoutDrift(t *testing.T) {
	out, err := units.ConvertExact(1, units.Miles, units.Meters)
	require.NoError(t, err)
	back, err := units.ConvertExact(out, units.Meters, units.Miles)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, back, 1e-12)
}

func TestConvertExactIncompatibleDimensionsErrors(t *testing.T) {
	_, err := units.ConvertExact(1, units.Meters, units.Seconds)
	assert.Error(t, err)
}

func TestConvertExactTemperatureMatchesConvert(t *testing.T) {
	want, err := units.Convert(100, units.Celsius, units.Fahrenheit)
	require.NoError(t, err)
	got, err := units.ConvertExact(100, units.Celsius, units.Fahrenheit)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
