package emission

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/vehicalc/pkg/models"
)

const tolerance = 1e-9

func TestSelectStrategy(t *testing.T) {
	withFuel := InputRecord{Username: "a", Vehicle: Car, Fuel: Diesel, FuelEfficiency: 12, Distance: 10, Month: models.Mar}
	noFuel := InputRecord{Username: "a", Vehicle: Motorcycle, Distance: 10, Month: models.Mar}

	tests := []struct {
		name  string
		rec   InputRecord
		urban bool
		want  StrategyKind
	}{
		{"fuel data wins over urban", withFuel, true, FuelBased},
		{"fuel data without urban", withFuel, false, FuelBased},
		{"urban without fuel data", noFuel, true, UrbanAdjusted},
		{"plain distance", noFuel, false, DistanceBased},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategy(tt.rec, tt.urban))
		})
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		kind StrategyKind
		rec  InputRecord
		want float64
	}{
		{"gasoline", FuelBased, InputRecord{Fuel: Gasoline, FuelEfficiency: 10, Distance: 100}, 23.1},
		{"diesel", FuelBased, InputRecord{Fuel: Diesel, FuelEfficiency: 10, Distance: 100}, 26.8},
		{"distance", DistanceBased, InputRecord{Distance: 50}, 10.5},
		{"urban", UrbanAdjusted, InputRecord{Distance: 50}, 12.6},
		{"small distance", DistanceBased, InputRecord{Distance: 0.1}, 0.021},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.kind, tt.rec)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tolerance)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestComputeInvariantErrors(t *testing.T) {
	_, err := Compute(FuelBased, InputRecord{Fuel: Gasoline, FuelEfficiency: 0, Distance: 10})
	assert.ErrorIs(t, err, ErrDivisionByZero)
	var ierr *InvariantError
	assert.True(t, errors.As(err, &ierr))

	_, err = Compute(FuelBased, InputRecord{Fuel: FuelType(42), FuelEfficiency: 5, Distance: 10})
	assert.ErrorIs(t, err, ErrUnknownFuelType)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))

	_, err = Compute(StrategyKind(0), InputRecord{Distance: 1})
	assert.Error(t, err)
}

func TestCalculate(t *testing.T) {
	rec, err := NewInputRecord(RawInput{
		Username: "bob",
		Vehicle:  "car",
		Distance: "50",
		Month:    "Feb",
	})
	require.NoError(t, err)

	res, err := Calculate(rec, true)
	require.NoError(t, err)
	assert.Equal(t, UrbanAdjusted, res.Strategy)
	assert.InDelta(t, 12.6, res.KgCO2, tolerance)

	res, err = Calculate(rec, false)
	require.NoError(t, err)
	assert.Equal(t, DistanceBased, res.Strategy)
	assert.InDelta(t, 10.5, res.KgCO2, tolerance)
}

func TestStrategyKindString(t *testing.T) {
	assert.Equal(t, "fuel", FuelBased.String())
	assert.Equal(t, "urban", UrbanAdjusted.String())
	assert.Equal(t, "distance", DistanceBased.String())
}
