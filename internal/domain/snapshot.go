package domain

import "time"

// Snapshot holds every network record read at one point in time
type Snapshot struct {
	TakenAt      time.Time              `json:"taken_at,omitempty" yaml:"taken_at,omitempty"`
	Owners       []Owner                `json:"owners,omitempty" yaml:"owners,omitempty" validate:"dive"`
	Wells        []Well                 `json:"wells" yaml:"wells" validate:"dive"`
	Directions   []ChannelDirection     `json:"directions" yaml:"directions" validate:"dive"`
	Slots        []ChannelSlot          `json:"slots,omitempty" yaml:"slots,omitempty" validate:"dive"`
	Cables       []Cable                `json:"cables,omitempty" yaml:"cables,omitempty" validate:"dive"`
	Observations []InventoryObservation `json:"observations,omitempty" yaml:"observations,omitempty" validate:"dive"`
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Owners:       make([]Owner, 0),
		Wells:        make([]Well, 0),
		Directions:   make([]ChannelDirection, 0),
		Slots:        make([]ChannelSlot, 0),
		Cables:       make([]Cable, 0),
		Observations: make([]InventoryObservation, 0),
	}
}

// AddWell adds a well to the snapshot
func (s *Snapshot) AddWell(well Well) {
	s.Wells = append(s.Wells, well)
}

// AddDirection adds a channel direction to the snapshot
func (s *Snapshot) AddDirection(dir ChannelDirection) {
	s.Directions = append(s.Directions, dir)
}

// AddSlot adds a channel slot to the snapshot
func (s *Snapshot) AddSlot(slot ChannelSlot) {
	s.Slots = append(s.Slots, slot)
}

// AddCable adds a cable to the snapshot
func (s *Snapshot) AddCable(cable Cable) {
	s.Cables = append(s.Cables, cable)
}

// AddObservation adds an inventory observation to the snapshot
func (s *Snapshot) AddObservation(obs InventoryObservation) {
	s.Observations = append(s.Observations, obs)
}

// OwnerName returns the name of an owner, or "" when unknown
func (s *Snapshot) OwnerName(id OwnerID) string {
	for _, o := range s.Owners {
		if o.ID == id {
			return o.Name
		}
	}
	return ""
}
