package domain

// DirectionID identifies a channel direction
type DirectionID int64

// SlotID identifies a channel slot
type SlotID int64

// MaxSlotsPerDirection is the largest number of channel slots a direction holds
const MaxSlotsPerDirection = 16

// DirectionStatus represents the lifecycle state of a channel direction
type DirectionStatus string

const (
	DirectionStatusActive            DirectionStatus = "active"
	DirectionStatusPlanned           DirectionStatus = "planned"
	DirectionStatusUnderConstruction DirectionStatus = "under_construction"
	DirectionStatusDecommissioned    DirectionStatus = "decommissioned"
)

// ChannelDirection represents a physical run between two wells.
// Endpoints are unordered for routing purposes and LengthM is the only
// path weight.
type ChannelDirection struct {
	ID          DirectionID     `json:"id" yaml:"id" validate:"required,gt=0"`
	Number      string          `json:"number" yaml:"number" validate:"max=64"`
	StartWellID WellID          `json:"start_well_id" yaml:"start_well_id" validate:"required,gt=0"`
	EndWellID   WellID          `json:"end_well_id" yaml:"end_well_id" validate:"required,gt=0"`
	LengthM     float64         `json:"length_m" yaml:"length_m" validate:"gte=0"`
	SlotCount   int             `json:"slot_count" yaml:"slot_count" validate:"min=1,max=16"`
	OwnerID     OwnerID         `json:"owner_id,omitempty" yaml:"owner_id,omitempty" validate:"gte=0"`
	Status      DirectionStatus `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=active planned under_construction decommissioned"`
}

// Connects reports whether the direction has the given well as an endpoint
func (d *ChannelDirection) Connects(wellID WellID) bool {
	return d.StartWellID == wellID || d.EndWellID == wellID
}

// Other returns the endpoint opposite to wellID, or 0 if wellID is not an
// endpoint
func (d *ChannelDirection) Other(wellID WellID) WellID {
	switch wellID {
	case d.StartWellID:
		return d.EndWellID
	case d.EndWellID:
		return d.StartWellID
	default:
		return 0
	}
}

// IsDecommissioned reports whether the direction can no longer carry cables
func (d *ChannelDirection) IsDecommissioned() bool {
	return d.Status == DirectionStatusDecommissioned
}

// SlotStatus represents the physical state of a channel slot
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusReserved  SlotStatus = "reserved"
	SlotStatusDamaged   SlotStatus = "damaged"
)

// ChannelSlot is one conduit inside a channel direction. Number is unique
// within the direction and lies in 1..SlotCount.
type ChannelSlot struct {
	ID          SlotID      `json:"id" yaml:"id" validate:"required,gt=0"`
	DirectionID DirectionID `json:"direction_id" yaml:"direction_id" validate:"required,gt=0"`
	Number      int         `json:"number" yaml:"number" validate:"min=1,max=16"`
	Kind        string      `json:"kind,omitempty" yaml:"kind,omitempty" validate:"max=64"`
	Status      SlotStatus  `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=available reserved damaged"`
}

// Usable reports whether an unoccupied slot may receive a cable
func (s *ChannelSlot) Usable() bool {
	return s.Status == "" || s.Status == SlotStatusAvailable
}
