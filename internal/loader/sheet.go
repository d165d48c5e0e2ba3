// Package loader reads hand-written network sheets.
//
// A sheet names wells by their number and lets the author describe
// directions by their end wells and cables by the wells they pass, the way
// a field survey is written down. The loader assigns record IDs, creates
// the channel slots and lays each duct cable into the lowest free slot of
// every direction it passes.
package loader

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"ductnet/internal/domain"
)

// SheetYAML represents the sheet file structure
type SheetYAML struct {
	Version      string                  `yaml:"version"`
	TakenAt      time.Time               `yaml:"taken_at,omitempty"`
	Owners       []string                `yaml:"owners,omitempty"`
	Wells        map[string]*WellYAML    `yaml:"wells"`
	Directions   []DirectionYAML         `yaml:"directions"`
	Cables       []CableYAML             `yaml:"cables,omitempty"`
	Observations []ObservationYAML       `yaml:"observations,omitempty"`
	Slots        map[string]SlotKindYAML `yaml:"slot_kinds,omitempty"`
}

// WellYAML represents a well keyed by its number
type WellYAML struct {
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
	Kind string  `yaml:"kind,omitempty"`
}

// DirectionYAML represents a run between two wells. LengthM defaults to the
// great-circle distance between the wells when omitted.
type DirectionYAML struct {
	Number  string    `yaml:"number,omitempty"`
	Between [2]string `yaml:"between"`
	LengthM *float64  `yaml:"length_m,omitempty"`
	Slots   int       `yaml:"slots"`
	Owner   string    `yaml:"owner,omitempty"`
	Status  string    `yaml:"status,omitempty"`
}

// SlotKindYAML marks slot numbers of a direction with a kind or status,
// keyed by direction number
type SlotKindYAML struct {
	Kind    string `yaml:"kind,omitempty"`
	Damaged []int  `yaml:"damaged,omitempty"`
}

// CableYAML represents a cable by the wells it passes
type CableYAML struct {
	Number   string   `yaml:"number,omitempty"`
	Route    []string `yaml:"route"`
	Owner    string   `yaml:"owner,omitempty"`
	Topology string   `yaml:"topology,omitempty"`
	Status   string   `yaml:"status,omitempty"`
}

// ObservationYAML represents a cable count seen from a well toward another.
// Direction picks one of several parallel directions by number.
type ObservationYAML struct {
	At         string    `yaml:"at"`
	Toward     string    `yaml:"toward"`
	Direction  string    `yaml:"direction,omitempty"`
	Count      int       `yaml:"count"`
	CapturedAt time.Time `yaml:"captured_at"`
	Source     string    `yaml:"source,omitempty"`
}

// LoadSheet loads a network snapshot from a sheet file
func LoadSheet(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseSheet(data)
}

// ParseSheet parses a network snapshot from sheet bytes
func ParseSheet(data []byte) (*domain.Snapshot, error) {
	var sheet SheetYAML
	if err := yaml.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return convertSheet(&sheet)
}

type sheetState struct {
	snap      *domain.Snapshot
	owners    map[string]domain.OwnerID
	wells     map[string]*domain.Well
	dirs      []*domain.ChannelDirection
	byNumber  map[string]*domain.ChannelDirection
	slots     map[domain.DirectionID][]domain.SlotID // index = slot number - 1
	taken     map[domain.SlotID]bool
	nextSlot  domain.SlotID
	nextCable domain.CableID
}

func convertSheet(y *SheetYAML) (*domain.Snapshot, error) {
	st := &sheetState{
		snap:      domain.NewSnapshot(),
		owners:    make(map[string]domain.OwnerID),
		wells:     make(map[string]*domain.Well),
		byNumber:  make(map[string]*domain.ChannelDirection),
		slots:     make(map[domain.DirectionID][]domain.SlotID),
		taken:     make(map[domain.SlotID]bool),
		nextSlot:  1,
		nextCable: 1,
	}
	st.snap.TakenAt = y.TakenAt

	// Owners are numbered in listed order
	for i, name := range y.Owners {
		if _, dup := st.owners[name]; dup {
			return nil, fmt.Errorf("owner %q listed twice", name)
		}
		id := domain.OwnerID(i + 1)
		st.owners[name] = id
		st.snap.Owners = append(st.snap.Owners, domain.Owner{ID: id, Name: name})
	}

	// Wells are numbered in sorted order so IDs do not depend on map order
	numbers := make([]string, 0, len(y.Wells))
	for number := range y.Wells {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)
	for i, number := range numbers {
		w := y.Wells[number]
		if w == nil {
			w = &WellYAML{}
		}
		st.snap.AddWell(domain.Well{
			ID:       domain.WellID(i + 1),
			Number:   number,
			Location: domain.Location{Lat: w.Lat, Lng: w.Lng},
			Kind:     domain.WellKind(w.Kind),
		})
	}
	for i := range st.snap.Wells {
		st.wells[st.snap.Wells[i].Number] = &st.snap.Wells[i]
	}

	for i, d := range y.Directions {
		if err := st.addDirection(i, d, y.Slots); err != nil {
			return nil, err
		}
	}
	for i := range st.snap.Directions {
		st.dirs = append(st.dirs, &st.snap.Directions[i])
		if n := st.snap.Directions[i].Number; n != "" {
			st.byNumber[n] = &st.snap.Directions[i]
		}
	}

	for i, c := range y.Cables {
		if err := st.addCable(i, c); err != nil {
			return nil, err
		}
	}

	for i, o := range y.Observations {
		if err := st.addObservation(i, o); err != nil {
			return nil, err
		}
	}

	return st.snap, nil
}

func (st *sheetState) well(number string) (*domain.Well, error) {
	w, ok := st.wells[number]
	if !ok {
		return nil, fmt.Errorf("unknown well %q", number)
	}
	return w, nil
}

func (st *sheetState) owner(name string) (domain.OwnerID, error) {
	if name == "" {
		return domain.NoOwner, nil
	}
	id, ok := st.owners[name]
	if !ok {
		return domain.NoOwner, fmt.Errorf("unknown owner %q", name)
	}
	return id, nil
}

func (st *sheetState) addDirection(i int, d DirectionYAML, kinds map[string]SlotKindYAML) error {
	from, err := st.well(d.Between[0])
	if err != nil {
		return fmt.Errorf("directions[%d]: %w", i, err)
	}
	to, err := st.well(d.Between[1])
	if err != nil {
		return fmt.Errorf("directions[%d]: %w", i, err)
	}
	owner, err := st.owner(d.Owner)
	if err != nil {
		return fmt.Errorf("directions[%d]: %w", i, err)
	}

	length := from.Location.DistanceM(to.Location)
	if d.LengthM != nil {
		length = *d.LengthM
	}

	dir := domain.ChannelDirection{
		ID:          domain.DirectionID(i + 1),
		Number:      d.Number,
		StartWellID: from.ID,
		EndWellID:   to.ID,
		LengthM:     length,
		SlotCount:   d.Slots,
		OwnerID:     owner,
		Status:      domain.DirectionStatus(d.Status),
	}
	st.snap.AddDirection(dir)

	// Create slot records; counts outside 1..16 are left for graph
	// validation to report
	kind := kinds[d.Number]
	damaged := make(map[int]bool, len(kind.Damaged))
	for _, n := range kind.Damaged {
		damaged[n] = true
	}
	for n := 1; n <= d.Slots && n <= domain.MaxSlotsPerDirection; n++ {
		slot := domain.ChannelSlot{
			ID:          st.nextSlot,
			DirectionID: dir.ID,
			Number:      n,
			Kind:        kind.Kind,
		}
		if damaged[n] {
			slot.Status = domain.SlotStatusDamaged
		}
		st.snap.AddSlot(slot)
		st.slots[dir.ID] = append(st.slots[dir.ID], slot.ID)
		st.nextSlot++
	}
	return nil
}

// between returns the lowest-ID direction joining two wells
func (st *sheetState) between(a, b domain.WellID) *domain.ChannelDirection {
	for _, d := range st.dirs {
		if d.Connects(a) && d.Other(a) == b {
			return d
		}
	}
	return nil
}

func (st *sheetState) addCable(i int, c CableYAML) error {
	owner, err := st.owner(c.Owner)
	if err != nil {
		return fmt.Errorf("cables[%d]: %w", i, err)
	}
	topology := domain.CableTopology(c.Topology)
	if topology == "" {
		topology = domain.CableTopologyDuct
	}
	if len(c.Route) < 2 {
		return fmt.Errorf("cables[%d]: route needs at least two wells", i)
	}

	cable := domain.Cable{
		ID:       st.nextCable,
		Number:   c.Number,
		Topology: topology,
		OwnerID:  owner,
		Status:   c.Status,
	}
	st.nextCable++

	wells := make([]*domain.Well, len(c.Route))
	for j, number := range c.Route {
		if wells[j], err = st.well(number); err != nil {
			return fmt.Errorf("cables[%d]: %w", i, err)
		}
	}

	// Aerial and ground cables follow the wells as a polyline
	if !cable.IsDuct() {
		for _, w := range wells {
			cable.Polyline = append(cable.Polyline, w.Location)
		}
		st.snap.AddCable(cable)
		return nil
	}

	for j := 1; j < len(wells); j++ {
		dir := st.between(wells[j-1].ID, wells[j].ID)
		if dir == nil {
			return fmt.Errorf("cables[%d]: no direction between %s and %s",
				i, wells[j-1].Number, wells[j].Number)
		}
		slot, ok := st.freeSlot(dir.ID)
		if !ok {
			return fmt.Errorf("cables[%d]: direction %d between %s and %s is full",
				i, dir.ID, wells[j-1].Number, wells[j].Number)
		}
		st.taken[slot] = true
		cable.SlotIDs = append(cable.SlotIDs, slot)
	}
	st.snap.AddCable(cable)
	return nil
}

func (st *sheetState) freeSlot(dir domain.DirectionID) (domain.SlotID, bool) {
	for _, id := range st.slots[dir] {
		if st.taken[id] {
			continue
		}
		if s := st.slot(id); s != nil && s.Usable() {
			return id, true
		}
	}
	return 0, false
}

func (st *sheetState) slot(id domain.SlotID) *domain.ChannelSlot {
	// Slot IDs are assigned sequentially from 1
	idx := int(id) - 1
	if idx < 0 || idx >= len(st.snap.Slots) {
		return nil
	}
	return &st.snap.Slots[idx]
}

func (st *sheetState) addObservation(i int, o ObservationYAML) error {
	at, err := st.well(o.At)
	if err != nil {
		return fmt.Errorf("observations[%d]: %w", i, err)
	}

	var dir *domain.ChannelDirection
	if o.Direction != "" {
		dir = st.byNumber[o.Direction]
		if dir == nil {
			return fmt.Errorf("observations[%d]: unknown direction %q", i, o.Direction)
		}
		if !dir.Connects(at.ID) {
			return fmt.Errorf("observations[%d]: direction %q does not end at %s", i, o.Direction, o.At)
		}
	} else {
		toward, err := st.well(o.Toward)
		if err != nil {
			return fmt.Errorf("observations[%d]: %w", i, err)
		}
		if dir = st.between(at.ID, toward.ID); dir == nil {
			return fmt.Errorf("observations[%d]: no direction between %s and %s", i, o.At, o.Toward)
		}
	}

	st.snap.AddObservation(domain.InventoryObservation{
		WellID:      at.ID,
		DirectionID: dir.ID,
		Count:       o.Count,
		CapturedAt:  o.CapturedAt,
		Source:      o.Source,
	})
	return nil
}
