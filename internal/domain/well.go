package domain

import "math"

// WellID identifies a well
type WellID int64

// OwnerID identifies an owner. Zero means the owner is not set.
type OwnerID int64

// NoOwner is the zero OwnerID
const NoOwner OwnerID = 0

// WellKind represents the kind of a well
type WellKind string

const (
	WellKindOrdinary   WellKind = "ordinary"
	WellKindEntryPoint WellKind = "entry_point" // network entry point
	WellKindPole       WellKind = "pole"
)

// Location is a WGS84 coordinate
type Location struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}

// Well represents a manhole or junction point in the duct network.
// Kind affects rendering only, never routing.
type Well struct {
	ID       WellID   `json:"id" yaml:"id" validate:"required,gt=0"`
	Number   string   `json:"number" yaml:"number" validate:"required,max=64"`
	Location Location `json:"location" yaml:"location"`
	Kind     WellKind `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=ordinary entry_point pole"`
}

// Owner is an organisation owning directions or cables
type Owner struct {
	ID   OwnerID `json:"id" yaml:"id" validate:"required,gt=0"`
	Name string  `json:"name" yaml:"name" validate:"required,max=255"`
}

const earthRadiusM = 6371008.8

// DistanceM returns the great-circle distance to another location in meters
func (l Location) DistanceM(other Location) float64 {
	lat1 := l.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (other.Lng - l.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(a)))
}
