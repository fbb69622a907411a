package emission

import (
	"math"
	"strconv"
	"strings"

	"github.com/jgoulah/vehicalc/pkg/models"
)

// VehicleType identifies the kind of vehicle. It does not affect the
// current formulas
type VehicleType int

const (
	Car VehicleType = iota + 1
	Motorcycle
	Van
)

var vehicleNames = map[VehicleType]string{
	Car:        "car",
	Motorcycle: "motorcycle",
	Van:        "van",
}

func (v VehicleType) String() string {
	if name, ok := vehicleNames[v]; ok {
		return name
	}
	return "unknown"
}

// FuelType identifies the fuel burned. The zero value means no fuel data
type FuelType int

const (
	NoFuel FuelType = iota
	Gasoline
	Diesel
)

var fuelNames = map[FuelType]string{
	Gasoline: "gasoline",
	Diesel:   "diesel",
}

func (f FuelType) String() string {
	if name, ok := fuelNames[f]; ok {
		return name
	}
	if f == NoFuel {
		return ""
	}
	return "unknown"
}

// RawInput carries the unparsed field values supplied by the CLI.
// Empty Fuel and FuelEfficiency mean the value was not supplied
type RawInput struct {
	Username       string
	Vehicle        string
	Fuel           string
	FuelEfficiency string
	Distance       string
	Month          string
}

// InputRecord is a validated emission-reporting event. Construct it with
// NewInputRecord. Fuel data is present when Fuel is not NoFuel, and then
// FuelEfficiency is positive
type InputRecord struct {
	Username       string
	Vehicle        VehicleType
	Fuel           FuelType
	FuelEfficiency float64
	Distance       float64
	Month          models.Month
}

// HasFuelData reports whether the record carries fuel type and efficiency
func (r InputRecord) HasFuelData() bool {
	return r.Fuel != NoFuel
}

// NewInputRecord validates raw field values. It returns a *ValidationError
// for the first field that fails
func NewInputRecord(in RawInput) (InputRecord, error) {
	var rec InputRecord

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return InputRecord{}, invalid(ErrInvalidUsername, "username", in.Username, "username must be a non-empty string")
	}
	rec.Username = username

	vehicle, err := ParseVehicleType(in.Vehicle)
	if err != nil {
		return InputRecord{}, err
	}
	rec.Vehicle = vehicle

	fuel, err := ParseFuelType(in.Fuel)
	if err != nil {
		return InputRecord{}, err
	}
	rec.Fuel = fuel

	hasEfficiency := strings.TrimSpace(in.FuelEfficiency) != ""
	if hasEfficiency {
		eff, err := parsePositive("fuel efficiency", in.FuelEfficiency)
		if err != nil {
			return InputRecord{}, err
		}
		rec.FuelEfficiency = eff
	}

	dist, err := parsePositive("distance", in.Distance)
	if err != nil {
		return InputRecord{}, err
	}
	rec.Distance = dist

	month, err := models.ParseMonth(in.Month)
	if err != nil {
		return InputRecord{}, invalid(ErrInvalidMonth, "month", in.Month,
			"month must be one of: "+strings.Join(models.MonthCodes(), ", "))
	}
	rec.Month = month

	if (fuel != NoFuel) != hasEfficiency {
		return InputRecord{}, invalid(ErrInconsistentFuelData, "fuel", in.Fuel,
			"fuel type and fuel efficiency must be given together")
	}

	return rec, nil
}

// ParseVehicleType matches car, motorcycle or van in any case
func ParseVehicleType(s string) (VehicleType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for v, n := range vehicleNames {
		if n == name {
			return v, nil
		}
	}
	return 0, invalid(ErrInvalidVehicleType, "vehicle", s, "vehicle type must be one of: car, motorcycle, van")
}

// ParseFuelType matches gasoline or diesel in any case. An empty string
// yields NoFuel
func ParseFuelType(s string) (FuelType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return NoFuel, nil
	}
	for f, n := range fuelNames {
		if n == name {
			return f, nil
		}
	}
	return NoFuel, invalid(ErrInvalidFuelType, "fuel", s, "fuel type must be one of: gasoline, diesel, or empty")
}

func parsePositive(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, invalid(ErrInvalidNumericField, field, s, field+" must be a positive number")
	}
	return v, nil
}
