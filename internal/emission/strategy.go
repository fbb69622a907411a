package emission

import "fmt"

// StrategyKind selects one of the three emission formulas
type StrategyKind int

const (
	FuelBased StrategyKind = iota + 1
	UrbanAdjusted
	DistanceBased
)

func (k StrategyKind) String() string {
	switch k {
	case FuelBased:
		return "fuel"
	case UrbanAdjusted:
		return "urban"
	case DistanceBased:
		return "distance"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// SelectStrategy applies a strict priority chain: fuel data wins, then
// urban mode, then the flat distance formula
func SelectStrategy(rec InputRecord, urban bool) StrategyKind {
	if rec.HasFuelData() {
		return FuelBased
	}
	if urban {
		return UrbanAdjusted
	}
	return DistanceBased
}
