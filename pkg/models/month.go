package models

import "fmt"

// Month is one of the twelve fixed calendar month codes
type Month int

const (
	Jan Month = iota
	Feb
	Mar
	Apr
	May
	Jun
	Jul
	Aug
	Sep
	Oct
	Nov
	Dec
)

// MonthCount is the number of months tracked per ledger entry
const MonthCount = 12

var monthCodes = [MonthCount]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Months returns all months in calendar order
func Months() []Month {
	months := make([]Month, MonthCount)
	for i := range months {
		months[i] = Month(i)
	}
	return months
}

// MonthCodes returns the twelve three-letter codes in calendar order
func MonthCodes() []string {
	codes := make([]string, MonthCount)
	copy(codes, monthCodes[:])
	return codes
}

// ParseMonth matches a code exactly ("Jan", not "jan" or "January")
func ParseMonth(code string) (Month, error) {
	for i, c := range monthCodes {
		if c == code {
			return Month(i), nil
		}
	}
	return 0, fmt.Errorf("unknown month code %q", code)
}

// Valid reports whether m is one of the twelve months
func (m Month) Valid() bool {
	return m >= Jan && m <= Dec
}

func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthCodes[m]
}

// MarshalText encodes the month as its code
func (m Month) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid month %d", int(m))
	}
	return []byte(monthCodes[m]), nil
}

// UnmarshalText decodes a month code
func (m *Month) UnmarshalText(text []byte) error {
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
