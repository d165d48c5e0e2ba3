package inference

import (
	"fmt"

	"ductnet/internal/domain"
)

// OwnerRule controls which directions may be paired by owner
type OwnerRule string

const (
	OwnerStrict OwnerRule = "strict" // identical owner, or both unset
	OwnerPrefer OwnerRule = "prefer" // same owner first, any owner otherwise
	OwnerAny    OwnerRule = "any"
)

// Profile is the threshold set of one inference pass
type Profile struct {
	Tier      domain.Tier `yaml:"tier" json:"tier" validate:"required,oneof=precision balanced coverage"`
	OwnerRule OwnerRule   `yaml:"owner_rule" json:"owner_rule" validate:"required,oneof=strict prefer any"`

	// MaxHops bounds the directions of a paired route, both paired
	// directions included
	MaxHops int `yaml:"max_hops" json:"max_hops" validate:"gte=2,lte=64"`

	// MinSignal is the smallest share of the eligible unaccounted capacity a
	// partner must hold to be paired
	MinSignal float64 `yaml:"min_signal" json:"min_signal" validate:"gte=0,lte=1"`

	// TraverseObserved lets connecting chains cross observed directions
	// whose capacity is already explained. Otherwise only unobserved
	// directions connect.
	TraverseObserved bool `yaml:"traverse_observed" json:"traverse_observed"`

	// SingleEdgeFallback emits a one-direction route for every unit left
	// unpaired at the end of the pass
	SingleEdgeFallback bool `yaml:"single_edge_fallback" json:"single_edge_fallback"`

	Confidence         float64 `yaml:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	FallbackConfidence float64 `yaml:"fallback_confidence" json:"fallback_confidence" validate:"gte=0,lte=1"`
}

// Profiles holds the profile of each variant, indexed by variant - 1
type Profiles [3]Profile

// DefaultProfiles returns the built-in presets
func DefaultProfiles() Profiles {
	return Profiles{
		{
			Tier:       domain.TierPrecision,
			OwnerRule:  OwnerStrict,
			MaxHops:    4,
			MinSignal:  0.6,
			Confidence: 0.90,
		},
		{
			Tier:       domain.TierBalanced,
			OwnerRule:  OwnerPrefer,
			MaxHops:    8,
			MinSignal:  0.3,
			Confidence: 0.60,
		},
		{
			Tier:               domain.TierCoverage,
			OwnerRule:          OwnerAny,
			MaxHops:            16,
			MinSignal:          0,
			TraverseObserved:   true,
			SingleEdgeFallback: true,
			Confidence:         0.35,
			FallbackConfidence: 0.15,
		},
	}
}

// Cascade returns the profiles variant v runs, in order
func (p Profiles) Cascade(v domain.Variant) ([]Profile, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownVariant, int(v))
	}
	return p[:v], nil
}
