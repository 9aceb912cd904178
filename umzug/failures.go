package umzug

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// FailureCode names a domain failure variant on the wire
type FailureCode string

const (
	CodeInvalidContent      FailureCode = "invalidContent"
	CodeNoContent           FailureCode = "noContent"
	CodeServerError         FailureCode = "serverError"
	CodeConstraintViolation FailureCode = "constraintViolation"
	CodeModelNotFound       FailureCode = "modelNotFound"
)

// ConstraintName names a server-side constraint
type ConstraintName string

const (
	ConstraintBoxUnique      ConstraintName = "box_unique"
	ConstraintItemUnique     ConstraintName = "item_unique"
	ConstraintPackingUnique  ConstraintName = "packing_unique"
	ConstraintPackingNonzero ConstraintName = "packing_nonzero"
)

// Constraint is a violated server-side constraint
type Constraint struct {
	Name   ConstraintName
	Title  string    // box_unique, item_unique
	Item   uuid.UUID // packing_unique
	Box    uuid.UUID // packing_unique
	Amount int       // packing_nonzero
}

// Description returns a human-readable description of the violation
func (c Constraint) Description() string {
	switch c.Name {
	case ConstraintBoxUnique:
		return "A box with this title already exists."
	case ConstraintItemUnique:
		return "An item with this title already exists."
	case ConstraintPackingUnique:
		return "This item is already packed."
	case ConstraintPackingNonzero:
		return "Invalid amount."
	default:
		return "The API responded with an unexpected failure."
	}
}

var errUnknownVariant = errors.New("unknown failure variant")

// Failure is the shared shape of all per-endpoint failures
type Failure struct {
	Code       FailureCode
	Constraint *Constraint // set for constraintViolation
	ModelID    uuid.UUID   // set for modelNotFound
}

// Error implements the error interface
func (f Failure) Error() string {
	return f.Description()
}

// Description returns a human-readable description of the failure
func (f Failure) Description() string {
	switch f.Code {
	case CodeInvalidContent:
		return "The API responded with invalid content."
	case CodeNoContent:
		return "The API responded with empty content."
	case CodeServerError:
		return "An internal API error occurred."
	case CodeConstraintViolation:
		if f.Constraint != nil {
			return f.Constraint.Description()
		}
	}
	return "The API responded with an unexpected failure."
}

// schema is the closed set of variants an endpoint may answer with
type schema struct {
	codes       []FailureCode
	constraints []ConstraintName
}

var (
	listSchema   = schema{codes: []FailureCode{CodeInvalidContent, CodeNoContent, CodeServerError}}
	deleteSchema = schema{codes: []FailureCode{CodeInvalidContent, CodeNoContent, CodeModelNotFound}}

	boxesCreateSchema = schema{
		codes:       []FailureCode{CodeInvalidContent, CodeNoContent, CodeConstraintViolation},
		constraints: []ConstraintName{ConstraintBoxUnique},
	}
	boxesUpdateSchema = schema{
		codes:       []FailureCode{CodeInvalidContent, CodeNoContent, CodeConstraintViolation, CodeModelNotFound},
		constraints: []ConstraintName{ConstraintBoxUnique},
	}
	itemsCreateSchema = schema{
		codes:       []FailureCode{CodeInvalidContent, CodeNoContent, CodeConstraintViolation},
		constraints: []ConstraintName{ConstraintItemUnique},
	}
	itemsUpdateSchema = schema{
		codes:       []FailureCode{CodeInvalidContent, CodeNoContent, CodeConstraintViolation, CodeModelNotFound},
		constraints: []ConstraintName{ConstraintItemUnique},
	}
	packingsCreateSchema = schema{
		codes:       []FailureCode{CodeInvalidContent, CodeNoContent, CodeConstraintViolation},
		constraints: []ConstraintName{ConstraintPackingUnique, ConstraintPackingNonzero},
	}
	packingsUpdateSchema = schema{
		codes:       []FailureCode{CodeInvalidContent, CodeNoContent, CodeConstraintViolation, CodeModelNotFound},
		constraints: []ConstraintName{ConstraintPackingUnique, ConstraintPackingNonzero},
	}
)

// decode reads a single-key tagged variant, {"name": payload}, or a bare
// "name" string for payload-less variants
func (s schema) decode(data []byte) (Failure, error) {
	name, payload, err := splitVariant(data)
	if err != nil {
		return Failure{}, err
	}

	code := FailureCode(name)
	if !slices.Contains(s.codes, code) {
		return Failure{}, fmt.Errorf("%w: %q", errUnknownVariant, name)
	}

	f := Failure{Code: code}
	switch code {
	case CodeConstraintViolation:
		c, err := s.decodeConstraint(payload)
		if err != nil {
			return Failure{}, err
		}
		f.Constraint = &c
	case CodeModelNotFound:
		var p struct {
			ModelID *uuid.UUID `json:"modelID"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return Failure{}, err
		}
		if p.ModelID == nil {
			return Failure{}, fmt.Errorf("modelNotFound: %w", errMissingField)
		}
		f.ModelID = *p.ModelID
	}
	return f, nil
}

// decodeConstraint accepts the payload with or without the "constraint" wrapper
func (s schema) decodeConstraint(payload []byte) (Constraint, error) {
	var wrapped struct {
		Constraint json.RawMessage `json:"constraint"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && len(wrapped.Constraint) > 0 {
		payload = wrapped.Constraint
	}

	name, body, err := splitVariant(payload)
	if err != nil {
		return Constraint{}, err
	}
	c := Constraint{Name: ConstraintName(name)}
	if !slices.Contains(s.constraints, c.Name) {
		return Constraint{}, fmt.Errorf("%w: constraint %q", errUnknownVariant, name)
	}

	var fields struct {
		Title  *string    `json:"title"`
		Item   *uuid.UUID `json:"item"`
		Box    *uuid.UUID `json:"box"`
		Amount *int       `json:"amount"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return Constraint{}, err
	}

	switch c.Name {
	case ConstraintBoxUnique, ConstraintItemUnique:
		if fields.Title == nil {
			return Constraint{}, fmt.Errorf("%s: %w", name, errMissingField)
		}
		c.Title = *fields.Title
	case ConstraintPackingUnique:
		if fields.Item == nil || fields.Box == nil {
			return Constraint{}, fmt.Errorf("%s: %w", name, errMissingField)
		}
		c.Item, c.Box = *fields.Item, *fields.Box
	case ConstraintPackingNonzero:
		if fields.Amount == nil {
			return Constraint{}, fmt.Errorf("%s: %w", name, errMissingField)
		}
		c.Amount = *fields.Amount
	}
	return c, nil
}

func splitVariant(data []byte) (string, json.RawMessage, error) {
	data = bytes.TrimSpace(data)

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return name, json.RawMessage("{}"), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("%w: expected exactly one variant, got %d", errUnknownVariant, len(obj))
	}
	var payload json.RawMessage
	for k, v := range obj {
		name, payload = k, v
	}
	if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		payload = json.RawMessage("{}")
	}
	return name, payload, nil
}

// ListFailure is returned by the list endpoints of boxes, items and packings
type ListFailure struct{ Failure }

func (ListFailure) InvalidContent() ListFailure {
	return ListFailure{Failure{Code: CodeInvalidContent}}
}
func (ListFailure) NoContent() ListFailure {
	return ListFailure{Failure{Code: CodeNoContent}}
}

func (f *ListFailure) UnmarshalJSON(data []byte) (err error) {
	f.Failure, err = listSchema.decode(data)
	return err
}

// DeleteFailure is returned by the delete endpoints
type DeleteFailure struct{ Failure }

func (DeleteFailure) InvalidContent() DeleteFailure {
	return DeleteFailure{Failure{Code: CodeInvalidContent}}
}
func (DeleteFailure) NoContent() DeleteFailure {
	return DeleteFailure{Failure{Code: CodeNoContent}}
}

func (f *DeleteFailure) UnmarshalJSON(data []byte) (err error) {
	f.Failure, err = deleteSchema.decode(data)
	return err
}

// BoxesCreateFailure is returned when creating a box
type BoxesCreateFailure struct{ Failure }

func (BoxesCreateFailure) InvalidContent() BoxesCreateFailure {
	return BoxesCreateFailure{Failure{Code: CodeInvalidContent}}
}
func (BoxesCreateFailure) NoContent() BoxesCreateFailure {
	return BoxesCreateFailure{Failure{Code: CodeNoContent}}
}

func (f *BoxesCreateFailure) UnmarshalJSON(data []byte) (err error) {
	f.Failure, err = boxesCreateSchema.decode(data)
	return err
}

// BoxesUpdateFailure is returned when renaming a box
type BoxesUpdateFailure struct{ Failure }

func (BoxesUpdateFailure) InvalidContent() BoxesUpdateFailure {
	return BoxesUpdateFailure{Failure{Code: CodeInvalidContent}}
}
func (BoxesUpdateFailure) NoContent() BoxesUpdateFailure {
	return BoxesUpdateFailure{Failure{Code: CodeNoContent}}
}

func (f *BoxesUpdateFailure) UnmarshalJSON(data []byte) (err error) {
	f.Failure, err = boxesUpdateSchema.decode(data)
	return err
}

// ItemsCreateFailure is returned when creating an item
type ItemsCreateFailure struct{ Failure }

func (ItemsCreateFailure) InvalidContent() ItemsCreateFailure {
	return ItemsCreateFailure{Failure{Code: CodeInvalidContent}}
}
func (ItemsCreateFailure) NoContent() ItemsCreateFailure {
	return ItemsCreateFailure{Failure{Code: CodeNoContent}}
}

func (f *ItemsCreateFailure) UnmarshalJSON(data []byte) (err error) {
	f.Failure, err = itemsCreateSchema.decode(data)
	return err
}

// ItemsUpdateFailure is returned when updating an item
type ItemsUpdateFailure struct{ Failure }

func (ItemsUpdateFailure) InvalidContent() ItemsUpdateFailure {
	return ItemsUpdateFailure{Failure{Code: CodeInvalidContent}}
}
func (ItemsUpdateFailure) NoContent() ItemsUpdateFailure {
	return ItemsUpdateFailure{Failure{Code: CodeNoContent}}
}

func (f *ItemsUpdateFailure) UnmarshalJSON(data []byte) (err error) {
	f.Failure, err = itemsUpdateSchema.decode(data)
	return err
}

// PackingsCreateFailure is returned when creating a packing
type PackingsCreateFailure struct{ Failure }

func (PackingsCreateFailure) InvalidContent() PackingsCreateFailure {
	return PackingsCreateFailure{Failure{Code: CodeInvalidContent}}
}
func (PackingsCreateFailure) NoContent() PackingsCreateFailure {
	return PackingsCreateFailure{Failure{Code: CodeNoContent}}
}

func (f *PackingsCreateFailure) UnmarshalJSON(data []byte) (err error) {
	f.Failure, err = packingsCreateSchema.decode(data)
	return err
}

// PackingsUpdateFailure is returned when updating a packing
type PackingsUpdateFailure struct{ Failure }

func (PackingsUpdateFailure) InvalidContent() PackingsUpdateFailure {
	return PackingsUpdateFailure{Failure{Code: CodeInvalidContent}}
}
func (PackingsUpdateFailure) NoContent() PackingsUpdateFailure {
	return PackingsUpdateFailure{Failure{Code: CodeNoContent}}
}

func (f *PackingsUpdateFailure) UnmarshalJSON(data []byte) (err error) {
	f.Failure, err = packingsUpdateSchema.decode(data)
	return err
}
