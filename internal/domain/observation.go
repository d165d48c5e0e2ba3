package domain

import "time"

// InventoryObservation is a physical cable count for one direction,
// reported from a well at one of its ends
type InventoryObservation struct {
	WellID      WellID      `json:"well_id" yaml:"well_id" validate:"required,gt=0"`
	DirectionID DirectionID `json:"direction_id" yaml:"direction_id" validate:"required,gt=0"`
	Count       int         `json:"count" yaml:"count" validate:"gte=0"`
	CapturedAt  time.Time   `json:"captured_at" yaml:"captured_at"`
	Source      string      `json:"source,omitempty" yaml:"source,omitempty" validate:"max=255"`
}

// UnaccountedValue is the reconciled discrepancy for one direction.
// Known is false when no observation exists; Value is then meaningless
// and must not be read as zero.
type UnaccountedValue struct {
	DirectionID DirectionID `json:"direction_id"`
	Known       bool        `json:"known"`
	Value       int         `json:"value"`
	Observed    int         `json:"observed"`
	Recorded    int         `json:"recorded"`
	CapturedAt  time.Time   `json:"captured_at,omitempty"`
}

// Positive returns the value when it is known and above zero, else 0
func (u UnaccountedValue) Positive() int {
	if !u.Known || u.Value <= 0 {
		return 0
	}
	return u.Value
}
