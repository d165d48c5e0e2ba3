package domain

// CableID identifies a routed cable
type CableID int64

// CableTopology represents how a cable is laid
type CableTopology string

const (
	CableTopologyDuct   CableTopology = "duct"
	CableTopologyAerial CableTopology = "aerial"
	CableTopologyGround CableTopology = "ground"
)

// Cable is a cable recorded in the network. Duct cables list the channel
// slots they occupy, in route order. Aerial and ground cables carry a
// polyline and occupy no slots.
type Cable struct {
	ID       CableID       `json:"id" yaml:"id" validate:"required,gt=0"`
	Number   string        `json:"number,omitempty" yaml:"number,omitempty" validate:"max=64"`
	Topology CableTopology `json:"topology" yaml:"topology" validate:"required,oneof=duct aerial ground"`
	SlotIDs  []SlotID      `json:"slot_ids,omitempty" yaml:"slot_ids,omitempty"`
	Polyline []Location    `json:"polyline,omitempty" yaml:"polyline,omitempty" validate:"dive"`
	OwnerID  OwnerID       `json:"owner_id,omitempty" yaml:"owner_id,omitempty" validate:"gte=0"`
	Status   string        `json:"status,omitempty" yaml:"status,omitempty" validate:"max=64"`
}

// IsDuct reports whether the cable runs through channel slots
func (c *Cable) IsDuct() bool {
	return c.Topology == CableTopologyDuct
}

// PolylineLength returns the geodesic length of a polyline in meters
func PolylineLength(points []Location) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].DistanceM(points[i])
	}
	return total
}
