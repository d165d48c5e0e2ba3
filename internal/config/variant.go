package config

import (
	"fmt"

	"ductnet/internal/domain"
	"ductnet/internal/inference"
	"ductnet/internal/inventory"
	"ductnet/internal/validation"
)

// EffectiveProfiles returns the variant presets with overrides applied
func (c *Config) EffectiveProfiles() (inference.Profiles, error) {
	profiles := inference.DefaultProfiles()

	for name, o := range c.Inference.Variants {
		v, err := domain.ParseVariant(name)
		if err != nil {
			return profiles, fmt.Errorf("inference.variants: %w", err)
		}
		if o == nil {
			continue
		}
		p := &profiles[v-1]

		// Apply overrides
		if o.OwnerRule != nil {
			p.OwnerRule = inference.OwnerRule(*o.OwnerRule)
		}
		if o.MaxHops != nil {
			p.MaxHops = *o.MaxHops
		}
		if o.MinSignal != nil {
			p.MinSignal = *o.MinSignal
		}
		if o.TraverseObserved != nil {
			p.TraverseObserved = *o.TraverseObserved
		}
		if o.SingleEdgeFallback != nil {
			p.SingleEdgeFallback = *o.SingleEdgeFallback
		}
		if o.Confidence != nil {
			p.Confidence = *o.Confidence
		}
		if o.FallbackConfidence != nil {
			p.FallbackConfidence = *o.FallbackConfidence
		}
	}

	for _, v := range domain.Variants {
		if err := validation.Struct(profiles[v-1]); err != nil {
			return profiles, fmt.Errorf("inference.variants.%s: %w", v, err)
		}
	}
	return profiles, nil
}

// DefaultVariant returns the configured default variant
func (c *Config) DefaultVariant() domain.Variant {
	v := domain.Variant(c.Inference.DefaultVariant)
	if !v.Valid() {
		return domain.VariantBalanced
	}
	return v
}

// Palette returns the severity palette with configured anchors applied
func (c *Config) Palette() (inventory.Palette, error) {
	p := inventory.DefaultPalette()
	anchors := []struct {
		name  string
		value string
		dst   *inventory.Color
	}{
		{"unknown", c.Severity.Unknown, &p.Unknown},
		{"data_error", c.Severity.DataError, &p.DataError},
		{"consistent", c.Severity.Consistent, &p.Consistent},
		{"minor", c.Severity.Minor, &p.Minor},
		{"severe", c.Severity.Severe, &p.Severe},
	}
	for _, a := range anchors {
		if a.value == "" {
			continue
		}
		color, err := inventory.ParseColor(a.value)
		if err != nil {
			return p, fmt.Errorf("severity.%s: %w", a.name, err)
		}
		*a.dst = color
	}
	return p, nil
}
