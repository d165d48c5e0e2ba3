package domain

import (
	"fmt"
	"strconv"
)

// Variant selects the precision/coverage trade-off of assumed cable inference
type Variant int

const (
	VariantPrecision Variant = 1
	VariantBalanced  Variant = 2
	VariantCoverage  Variant = 3
)

// Variants lists all variants in ascending order
var Variants = []Variant{VariantPrecision, VariantBalanced, VariantCoverage}

// String returns the preset name of the variant
func (v Variant) String() string {
	switch v {
	case VariantPrecision:
		return "precision"
	case VariantBalanced:
		return "balanced"
	case VariantCoverage:
		return "coverage"
	default:
		return "variant(" + strconv.Itoa(int(v)) + ")"
	}
}

// Valid reports whether v is one of the known variants
func (v Variant) Valid() bool {
	return v >= VariantPrecision && v <= VariantCoverage
}

// ParseVariant accepts a variant number ("1".."3") or preset name
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "1", "precision":
		return VariantPrecision, nil
	case "2", "balanced":
		return VariantBalanced, nil
	case "3", "coverage":
		return VariantCoverage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Tier records which inference pass produced a route
type Tier string

const (
	TierPrecision Tier = "precision"
	TierBalanced  Tier = "balanced"
	TierCoverage  Tier = "coverage"
	TierFallback  Tier = "fallback" // single direction, no partner found
)

// AssumedRoute is an inferred cable route explaining unaccounted capacity.
// It is produced fresh by every inference run.
type AssumedRoute struct {
	Variant           Variant       `json:"variant"`
	Tier              Tier          `json:"tier"`
	StartWellID       WellID        `json:"start_well_id"`
	EndWellID         WellID        `json:"end_well_id"`
	DirectionIDs      []DirectionID `json:"direction_ids"`
	OwnerID           OwnerID       `json:"owner_id,omitempty"`
	OwnerUndetermined bool          `json:"owner_undetermined"`
	LengthM           float64       `json:"length_m"`
	Confidence        float64       `json:"confidence"`
}

// Hops returns the number of directions traversed
func (r *AssumedRoute) Hops() int {
	return len(r.DirectionIDs)
}
