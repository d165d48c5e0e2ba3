package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrDiscontinuousRoute is returned when a route extension does not start
	// where the existing route ends
	ErrDiscontinuousRoute = errors.New("route extension does not continue from route end")

	// ErrUnknownVariant is returned for variant numbers outside 1..3
	ErrUnknownVariant = errors.New("unknown inference variant")
)

// InvalidTopologyError reports malformed network input. It is fatal for the
// request: the snapshot must be fixed before the engine can run.
type InvalidTopologyError struct {
	Entity string // "well", "direction", "slot", "cable", "observation"
	ID     int64
	Reason string
}

func (e *InvalidTopologyError) Error() string {
	return fmt.Sprintf("invalid topology: %s %d: %s", e.Entity, e.ID, e.Reason)
}

// NotFoundError reports a reference to a record absent from the snapshot
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NoPathFoundError reports that no feasible path connects two wells
type NoPathFoundError struct {
	From WellID
	To   WellID
}

func (e *NoPathFoundError) Error() string {
	return fmt.Sprintf("no path from well %d to well %d", e.From, e.To)
}

// RouteOverlapError reports that reaching To from From is only possible by
// reusing directions the route already occupies
type RouteOverlapError struct {
	From     WellID
	To       WellID
	Blocking []DirectionID
}

func (e *RouteOverlapError) Error() string {
	ids := make([]string, len(e.Blocking))
	for i, id := range e.Blocking {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("route from well %d to well %d would reuse directions [%s]",
		e.From, e.To, strings.Join(ids, ", "))
}

// AmbiguousObservationWarning records conflicting same-timestamp counts for
// one direction. It is resolved by keeping the larger count and is never
// returned as an error.
type AmbiguousObservationWarning struct {
	DirectionID DirectionID `json:"direction_id"`
	CapturedAt  time.Time   `json:"captured_at"`
	Counts      []int       `json:"counts"`
	Chosen      int         `json:"chosen"`
}

func (w AmbiguousObservationWarning) String() string {
	return fmt.Sprintf("direction %d: conflicting counts %v at %s, using %d",
		w.DirectionID, w.Counts, w.CapturedAt.Format(time.RFC3339), w.Chosen)
}

// IsBadInput reports whether err describes malformed input rather than the
// absence of a solution
func IsBadInput(err error) bool {
	var topo *InvalidTopologyError
	var notFound *NotFoundError
	return errors.As(err, &topo) || errors.As(err, &notFound) ||
		errors.Is(err, ErrDiscontinuousRoute) || errors.Is(err, ErrUnknownVariant)
}

// IsNoSolution reports whether err means the request was valid but no route
// satisfies it
func IsNoSolution(err error) bool {
	var noPath *NoPathFoundError
	var overlap *RouteOverlapError
	return errors.As(err, &noPath) || errors.As(err, &overlap)
}
