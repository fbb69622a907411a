package emission

import "fmt"

// Emission factors, kg CO2 per unit
const (
	GasolineFactor = 2.31 // per fuel unit
	DieselFactor   = 2.68 // per fuel unit
	DistanceFactor = 0.21 // per km, flat average
	UrbanFactor    = 1.2  // distance inflation for stop-and-go traffic
)

var fuelFactors = map[FuelType]float64{
	Gasoline: GasolineFactor,
	Diesel:   DieselFactor,
}

// Result is the outcome of one calculation
type Result struct {
	Strategy StrategyKind
	KgCO2    float64
}

// Calculate selects the strategy for rec and computes its emission
func Calculate(rec InputRecord, urban bool) (Result, error) {
	kind := SelectStrategy(rec, urban)
	kg, err := Compute(kind, rec)
	if err != nil {
		return Result{}, err
	}
	return Result{Strategy: kind, KgCO2: kg}, nil
}

// Compute evaluates a single formula against rec
func Compute(kind StrategyKind, rec InputRecord) (float64, error) {
	switch kind {
	case FuelBased:
		return fuelBased(rec)
	case UrbanAdjusted:
		return rec.Distance * UrbanFactor * DistanceFactor, nil
	case DistanceBased:
		return rec.Distance * DistanceFactor, nil
	default:
		return 0, fmt.Errorf("unknown strategy %s", kind)
	}
}

// FuelFactor returns the emission factor for a fuel type
func FuelFactor(f FuelType) (float64, error) {
	factor, ok := fuelFactors[f]
	if !ok {
		return 0, &InvariantError{Code: ErrUnknownFuelType, Detail: fmt.Sprintf("fuel %d has no factor", int(f))}
	}
	return factor, nil
}

func fuelBased(rec InputRecord) (float64, error) {
	if rec.FuelEfficiency == 0 {
		return 0, &InvariantError{Code: ErrDivisionByZero, Detail: "fuel efficiency is zero"}
	}
	factor, err := FuelFactor(rec.Fuel)
	if err != nil {
		return 0, err
	}
	fuelUsed := rec.Distance / rec.FuelEfficiency
	return fuelUsed * factor, nil
}
