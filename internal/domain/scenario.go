package domain

import "time"

// Scenario is a stored inference run. A rebuild replaces the scenario of
// the same variant; scenarios of other variants are kept.
type Scenario struct {
	ID               string         `json:"id"`
	Variant          Variant        `json:"variant"`
	Revision         string         `json:"revision"` // snapshot fingerprint the run was computed on
	CreatedAt        time.Time      `json:"created_at"`
	UsedUnaccounted  int            `json:"used_unaccounted"`
	TotalUnaccounted int            `json:"total_unaccounted"`
	Routes           []AssumedRoute `json:"routes"`
}
