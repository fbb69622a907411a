package models

import "sort"

// MonthlyTotals holds accumulated kg CO2 per month, indexed by Month
type MonthlyTotals [MonthCount]float64

// Ledger maps a username to its monthly totals. It is the full-table
// snapshot exchanged with ledger stores
type Ledger map[string]MonthlyTotals

// Usernames returns the ledger keys in sorted order
func (l Ledger) Usernames() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the ledger
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for name, totals := range l {
		out[name] = totals
	}
	return out
}
