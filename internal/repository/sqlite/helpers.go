package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"ductnet/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ownerToNull stores NoOwner as NULL
func ownerToNull(id domain.OwnerID) sql.NullInt64 {
	if id == domain.NoOwner {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}

// nullToOwner reads NULL as NoOwner
func nullToOwner(ni sql.NullInt64) domain.OwnerID {
	if !ni.Valid {
		return domain.NoOwner
	}
	return domain.OwnerID(ni.Int64)
}

// timeLayout sorts lexically in UTC
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime stores times as sortable UTC text; the zero time is ""
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// parseTime reads formatTime output
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals a slice to nullable JSON string.
// Empty slices are stored as NULL.
func marshalToNull[T any](v []T) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a column to a record table:
// 1. Add field to the row struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update the columns constant - APPEND to end
// 4. Update toDomain() to map the new field
// 5. Update the insert args function and the VALUES placeholders
// 6. Add the column in sqlite.go migrate()
//
// CRITICAL: Column order must match between the columns constant,
// scanArgs() and the insert args.

// ============================================================================
// Owner and Well Rows
// ============================================================================

const ownerColumns = `id, name`

type ownerRow struct {
	ID   int64
	Name string
}

func (r *ownerRow) scanArgs() []interface{} {
	return []interface{}{&r.ID, &r.Name}
}

func (r *ownerRow) toDomain() domain.Owner {
	return domain.Owner{ID: domain.OwnerID(r.ID), Name: r.Name}
}

func ownerInsertArgs(o domain.Owner) []any {
	return []any{int64(o.ID), o.Name}
}

const wellColumns = `id, number, lat, lng, kind`

type wellRow struct {
	ID     int64
	Number string
	Lat    float64
	Lng    float64
	Kind   sql.NullString
}

func (r *wellRow) scanArgs() []interface{} {
	return []interface{}{&r.ID, &r.Number, &r.Lat, &r.Lng, &r.Kind}
}

func (r *wellRow) toDomain() domain.Well {
	return domain.Well{
		ID:       domain.WellID(r.ID),
		Number:   r.Number,
		Location: domain.Location{Lat: r.Lat, Lng: r.Lng},
		Kind:     domain.WellKind(nullToString(r.Kind)),
	}
}

func wellInsertArgs(w domain.Well) []any {
	return []any{int64(w.ID), w.Number, w.Location.Lat, w.Location.Lng, stringToNull(string(w.Kind))}
}

// ============================================================================
// Direction and Slot Rows
// ============================================================================

const directionColumns = `id, number, start_well_id, end_well_id, length_m, slot_count, owner_id, status`

type directionRow struct {
	ID        int64
	Number    sql.NullString
	StartWell int64
	EndWell   int64
	LengthM   float64
	SlotCount int
	OwnerID   sql.NullInt64
	Status    sql.NullString
}

// scanArgs MUST match directionColumns order
func (r *directionRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,        // 1
		&r.Number,    // 2
		&r.StartWell, // 3
		&r.EndWell,   // 4
		&r.LengthM,   // 5
		&r.SlotCount, // 6
		&r.OwnerID,   // 7
		&r.Status,    // 8
	}
}

func (r *directionRow) toDomain() domain.ChannelDirection {
	return domain.ChannelDirection{
		ID:          domain.DirectionID(r.ID),
		Number:      nullToString(r.Number),
		StartWellID: domain.WellID(r.StartWell),
		EndWellID:   domain.WellID(r.EndWell),
		LengthM:     r.LengthM,
		SlotCount:   r.SlotCount,
		OwnerID:     nullToOwner(r.OwnerID),
		Status:      domain.DirectionStatus(nullToString(r.Status)),
	}
}

func directionInsertArgs(d domain.ChannelDirection) []any {
	return []any{
		int64(d.ID),
		stringToNull(d.Number),
		int64(d.StartWellID),
		int64(d.EndWellID),
		d.LengthM,
		d.SlotCount,
		ownerToNull(d.OwnerID),
		stringToNull(string(d.Status)),
	}
}

const slotColumns = `id, direction_id, number, kind, status`

type slotRow struct {
	ID          int64
	DirectionID int64
	Number      int
	Kind        sql.NullString
	Status      sql.NullString
}

func (r *slotRow) scanArgs() []interface{} {
	return []interface{}{&r.ID, &r.DirectionID, &r.Number, &r.Kind, &r.Status}
}

func (r *slotRow) toDomain() domain.ChannelSlot {
	return domain.ChannelSlot{
		ID:          domain.SlotID(r.ID),
		DirectionID: domain.DirectionID(r.DirectionID),
		Number:      r.Number,
		Kind:        nullToString(r.Kind),
		Status:      domain.SlotStatus(nullToString(r.Status)),
	}
}

func slotInsertArgs(s domain.ChannelSlot) []any {
	return []any{int64(s.ID), int64(s.DirectionID), s.Number, stringToNull(s.Kind), stringToNull(string(s.Status))}
}

// ============================================================================
// Cable and Observation Rows
// ============================================================================

const cableColumns = `id, number, topology, slot_ids, polyline, owner_id, status`

type cableRow struct {
	ID           int64
	Number       sql.NullString
	Topology     string
	SlotIDsJSON  sql.NullString
	PolylineJSON sql.NullString
	OwnerID      sql.NullInt64
	Status       sql.NullString
}

// scanArgs MUST match cableColumns order
func (r *cableRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,           // 1
		&r.Number,       // 2
		&r.Topology,     // 3
		&r.SlotIDsJSON,  // 4
		&r.PolylineJSON, // 5
		&r.OwnerID,      // 6
		&r.Status,       // 7
	}
}

func (r *cableRow) toDomain() (domain.Cable, error) {
	cable := domain.Cable{
		ID:       domain.CableID(r.ID),
		Number:   nullToString(r.Number),
		Topology: domain.CableTopology(r.Topology),
		OwnerID:  nullToOwner(r.OwnerID),
		Status:   nullToString(r.Status),
	}
	if err := unmarshalJSONField(r.SlotIDsJSON, &cable.SlotIDs); err != nil {
		return cable, err
	}
	if err := unmarshalJSONField(r.PolylineJSON, &cable.Polyline); err != nil {
		return cable, err
	}
	return cable, nil
}

func cableInsertArgs(c domain.Cable) ([]any, error) {
	slotIDs, err := marshalToNull(c.SlotIDs)
	if err != nil {
		return nil, err
	}
	polyline, err := marshalToNull(c.Polyline)
	if err != nil {
		return nil, err
	}
	return []any{
		int64(c.ID),
		stringToNull(c.Number),
		string(c.Topology),
		slotIDs,
		polyline,
		ownerToNull(c.OwnerID),
		stringToNull(c.Status),
	}, nil
}

const observationColumns = `well_id, direction_id, count, captured_at, source`

type observationRow struct {
	WellID      int64
	DirectionID int64
	Count       int
	CapturedAt  string
	Source      sql.NullString
}

func (r *observationRow) scanArgs() []interface{} {
	return []interface{}{&r.WellID, &r.DirectionID, &r.Count, &r.CapturedAt, &r.Source}
}

func (r *observationRow) toDomain() (domain.InventoryObservation, error) {
	at, err := parseTime(r.CapturedAt)
	if err != nil {
		return domain.InventoryObservation{}, err
	}
	return domain.InventoryObservation{
		WellID:      domain.WellID(r.WellID),
		DirectionID: domain.DirectionID(r.DirectionID),
		Count:       r.Count,
		CapturedAt:  at,
		Source:      nullToString(r.Source),
	}, nil
}

func observationInsertArgs(o domain.InventoryObservation) []any {
	return []any{int64(o.WellID), int64(o.DirectionID), o.Count, formatTime(o.CapturedAt), stringToNull(o.Source)}
}

// ============================================================================
// Scenario Row
// ============================================================================

const scenarioColumns = `id, variant, revision, created_at, used_unaccounted, total_unaccounted, routes`

type scenarioRow struct {
	ID               string
	Variant          int
	Revision         string
	CreatedAt        string
	UsedUnaccounted  int
	TotalUnaccounted int
	RoutesJSON       string
}

// scanArgs MUST match scenarioColumns order
func (r *scenarioRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,               // 1
		&r.Variant,          // 2
		&r.Revision,         // 3
		&r.CreatedAt,        // 4
		&r.UsedUnaccounted,  // 5
		&r.TotalUnaccounted, // 6
		&r.RoutesJSON,       // 7
	}
}

func (r *scenarioRow) toDomain() (*domain.Scenario, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	s := &domain.Scenario{
		ID:               r.ID,
		Variant:          domain.Variant(r.Variant),
		Revision:         r.Revision,
		CreatedAt:        created,
		UsedUnaccounted:  r.UsedUnaccounted,
		TotalUnaccounted: r.TotalUnaccounted,
	}
	if err := json.Unmarshal([]byte(r.RoutesJSON), &s.Routes); err != nil {
		return nil, err
	}
	return s, nil
}

func scenarioInsertArgs(s *domain.Scenario) ([]any, error) {
	routes := s.Routes
	if routes == nil {
		routes = []domain.AssumedRoute{}
	}
	data, err := json.Marshal(routes)
	if err != nil {
		return nil, err
	}
	return []any{
		s.ID,
		int(s.Variant),
		s.Revision,
		formatTime(s.CreatedAt),
		s.UsedUnaccounted,
		s.TotalUnaccounted,
		string(data),
	}, nil
}
