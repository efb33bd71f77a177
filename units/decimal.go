package units

import "github.com/shopspring/decimal"

// linearFactorDecimal mirrors linearFactors as exact decimals rather than
// float64 literals, so a chain of conversions (e.g. feet -> meters ->
// kilometers) never accumulates the rounding error repeated float64
// multiplication/division can introduce.
var linearFactorDecimal = map[Units]decimal.Decimal{
	Meters: decimal.NewFromInt(1), Centimeters: decimal.NewFromFloat(0.01),
	Millimeters: decimal.NewFromFloat(0.001), Kilometers: decimal.NewFromInt(1000),
	Inches: decimal.NewFromFloat(0.0254), Feet: decimal.NewFromFloat(0.3048),
	Yards: decimal.NewFromFloat(0.9144), Miles: decimal.NewFromFloat(1609.344),

	Kilograms: decimal.NewFromInt(1), Grams: decimal.NewFromFloat(0.001),
	Milligrams: decimal.NewFromFloat(0.000001),
	Pounds:     decimal.NewFromFloat(0.45359237), Ounces: decimal.NewFromFloat(0.028349523125),

	Seconds: decimal.NewFromInt(1), Milliseconds: decimal.NewFromFloat(0.001),
	Microseconds: decimal.NewFromFloat(0.000001), Nanoseconds: decimal.NewFromFloat(0.000000001),
	Minutes: decimal.NewFromInt(60), Hours: decimal.NewFromInt(3600), Days: decimal.NewFromInt(86400),

	Radians: decimal.NewFromInt(1), PositiveRadians: decimal.NewFromInt(1),
	Degrees: decimal.NewFromFloat(0.017453292519943295),

	Bytes: decimal.NewFromInt(1), Kilobytes: decimal.NewFromInt(1024),
	Megabytes: decimal.NewFromInt(1024 * 1024), Gigabytes: decimal.NewFromInt(1024 * 1024 * 1024),
	Terabytes: decimal.NewFromInt(1024 * 1024 * 1024 * 1024),
}

// ConvertExact is Convert's decimal-backed counterpart: same dimension
// rules and temperature/angle special cases, but the base-unit multiply
// and divide route through shopspring/decimal so a multi-hop conversion
// (feet -> meters -> feet) round-trips exactly instead of drifting by a
// float64 ULP. value/arith.go uses this for unit-converting arithmetic
// between two differently-unitted Nums, where that drift would otherwise
// leak into the six-decimal-place comparison spec §8 requires for angles.
func ConvertExact(v float64, from, to Units) (float64, error) {
	if from == to {
		return v, nil
	}
	if from == Undefined || to == Undefined {
		return v, nil
	}
	if from.Dimension() != to.Dimension() {
		return Convert(v, from, to)
	}
	if from.Dimension() == DimTemperature {
		return convertTemperature(v, from, to), nil
	}

	dv := decimal.NewFromFloat(v)
	base := dv.Mul(linearFactorDecimal[from])
	out := base.Div(linearFactorDecimal[to])
	f, _ := out.Float64()

	if to == PositiveRadians || from == PositiveRadians {
		f = normalizePositiveRadians(f, to)
	}
	return f, nil
}
