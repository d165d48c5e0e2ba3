// Package validation checks input records field by field before they reach
// the graph builder.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"ductnet/internal/domain"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid record")

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// ValidateSnapshot validates every record of a snapshot against its struct
// tags. Cross-record checks (missing references, duplicate IDs) are left
// to network.Build. Failures match both ErrInvalid and
// *domain.InvalidTopologyError naming the offending record.
func ValidateSnapshot(snap *domain.Snapshot) error {
	if snap == nil {
		return invalid(&domain.InvalidTopologyError{Entity: "snapshot", Reason: "snapshot cannot be nil"})
	}
	if err := validate.Struct(snap); err != nil {
		fe, ok := firstFieldError(err)
		if !ok {
			return err
		}
		entity, id := recordOf(snap, fe.Namespace())
		return invalid(&domain.InvalidTopologyError{Entity: entity, ID: id, Reason: describe(fe)})
	}
	return nil
}

// ValidateObservations validates observations supplied apart from a
// snapshot. The error names the observation by its index.
func ValidateObservations(obs []domain.InventoryObservation) error {
	for i := range obs {
		if err := validate.Struct(&obs[i]); err != nil {
			fe, ok := firstFieldError(err)
			if !ok {
				return err
			}
			return invalid(&domain.InvalidTopologyError{Entity: "observation", ID: int64(i), Reason: describe(fe)})
		}
	}
	return nil
}

// Struct validates any tagged struct
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func invalid(topo *domain.InvalidTopologyError) error {
	return fmt.Errorf("%w: %w", ErrInvalid, topo)
}

func firstFieldError(err error) (validator.FieldError, bool) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return nil, false
	}
	return validationErrs[0], true
}

// recordOf maps a namespace like "Snapshot.Directions[3].SlotCount" to the
// entity name and ID of the record at that index. Observations carry no ID
// and report their index.
func recordOf(snap *domain.Snapshot, namespace string) (string, int64) {
	parts := strings.SplitN(namespace, ".", 3)
	if len(parts) < 2 {
		return "snapshot", 0
	}
	field, index, ok := splitIndex(parts[1])
	if !ok {
		return "snapshot", 0
	}
	switch field {
	case "Owners":
		return "owner", int64(snap.Owners[index].ID)
	case "Wells":
		return "well", int64(snap.Wells[index].ID)
	case "Directions":
		return "direction", int64(snap.Directions[index].ID)
	case "Slots":
		return "slot", int64(snap.Slots[index].ID)
	case "Cables":
		return "cable", int64(snap.Cables[index].ID)
	case "Observations":
		return "observation", int64(index)
	}
	return "snapshot", 0
}

// splitIndex splits "Wells[2]" into "Wells" and 2
func splitIndex(segment string) (string, int, bool) {
	open := strings.IndexByte(segment, '[')
	if open < 0 || !strings.HasSuffix(segment, "]") {
		return "", 0, false
	}
	index, err := strconv.Atoi(segment[open+1 : len(segment)-1])
	if err != nil || index < 0 {
		return "", 0, false
	}
	return segment[:open], index, true
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	fe, ok := firstFieldError(err)
	if !ok {
		return err
	}
	return fmt.Errorf("%w: %s", ErrInvalid, describe(fe))
}

// describe renders one field error as "Namespace: problem"
func describe(e validator.FieldError) string {
	field := e.Namespace()
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: field is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s, got %v", field, param, e.Value())
	case "max", "lte":
		return fmt.Sprintf("%s: must not exceed %s, got %v", field, param, e.Value())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s, got %v", field, param, e.Value())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %q", field, param, e.Value())
	default:
		return fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
	}
}
