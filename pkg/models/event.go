package models

import "time"

// EmissionEvent represents a single recorded trip and its emission
type EmissionEvent struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Vehicle        string    `json:"vehicle"`
	Fuel           string    `json:"fuel,omitempty"` // Empty when no fuel data was given
	FuelEfficiency float64   `json:"fuel_efficiency,omitempty"`
	Distance       float64   `json:"distance"`
	Month          Month     `json:"month"`
	Strategy       string    `json:"strategy"` // "fuel", "urban" or "distance"
	KgCO2          float64   `json:"kg_co2"`
	CreatedAt      time.Time `json:"created_at"`
	Published      bool      `json:"-"`
}
