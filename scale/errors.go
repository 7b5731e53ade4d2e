/*
errors.go - Centralized error types for the conversion engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The two spec-level failures (incompatible unit category, quantity out of
  configured scale) are structured errors that name the offending unit,
  quantity and converter; everything else is a plain sentinel.

ERROR CATEGORIES:
  1. Conversion errors  - Convert preconditions (category, range)
  2. Catalog errors     - Unknown units
  3. Management errors  - Registry/persistence rule violations

All failures here are caller-visible validation failures, never transient:
there is no retry, fallback or partial result.

USAGE:
  result, err := conv.Convert(qty, "kilogram", "")
  if errors.Is(err, scale.ErrIncompatibleUnitCategory) { ... }

  var oor *scale.OutOfRangeError
  if errors.As(err, &oor) { log.Println(oor.Quantity) }
*/
package scale

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrIncompatibleUnitCategory is returned when a supplied input or output
	// unit belongs to a different category than the converter's configured
	// source/destination unit.
	ErrIncompatibleUnitCategory = errors.New("incompatible unit category")

	// ErrQuantityOutOfRange is returned when the normalized quantity exceeds
	// every configured scale line's upper bound.
	ErrQuantityOutOfRange = errors.New("quantity out of configured scale")

	// ErrUnknownUnit is returned by catalog implementations for units that
	// were never registered.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrConverterNotFound is returned when a referenced converter doesn't exist.
	ErrConverterNotFound = errors.New("converter not found")

	// ErrDuplicateName is returned when creating a converter whose name is
	// already taken. Converter names are globally unique.
	ErrDuplicateName = errors.New("converter name already exists")

	// ErrMissingName is returned by Validate for a blank converter name.
	ErrMissingName = errors.New("converter name is required")

	// ErrNoScaleLines is returned by Validate for a converter with no lines.
	ErrNoScaleLines = errors.New("converter has no scale lines")

	// ErrMissingUnitService is returned by Validate when no catalog is bound.
	ErrMissingUnitService = errors.New("converter has no unit service")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnitDirection says which side of a conversion an incompatible unit was
// supplied for.
type UnitDirection string

const (
	DirectionInput  UnitDirection = "input"
	DirectionOutput UnitDirection = "output"
)

// IncompatibleUnitError reports a category mismatch between a supplied unit
// and the converter's configured unit for that direction.
type IncompatibleUnitError struct {
	Converter string
	Direction UnitDirection
	Unit      UnitID
	UnitName  string
	Expected  CategoryID
}

func (e *IncompatibleUnitError) Error() string {
	if e.Direction == DirectionOutput {
		return fmt.Sprintf("cannot convert to %s (expected a %s unit) using converter %s",
			e.UnitName, e.Expected, e.Converter)
	}
	return fmt.Sprintf("cannot convert from %s (expected a %s unit) using converter %s",
		e.UnitName, e.Expected, e.Converter)
}

func (e *IncompatibleUnitError) Unwrap() error {
	return ErrIncompatibleUnitCategory
}

// OutOfRangeError reports a quantity above every configured scale line.
// Quantity is the normalized quantity, denominated in the source unit.
type OutOfRangeError struct {
	Converter string
	Quantity  decimal.Decimal
	Unit      UnitID
	UnitName  string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("cannot convert %s %s using converter %s: quantity is out of the configured scale",
		e.Quantity, e.UnitName, e.Converter)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrQuantityOutOfRange
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than a broken configuration or store.
func IsClientError(err error) bool {
	return errors.Is(err, ErrIncompatibleUnitCategory) ||
		errors.Is(err, ErrQuantityOutOfRange) ||
		errors.Is(err, ErrUnknownUnit) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrMissingName) ||
		errors.Is(err, ErrNoScaleLines)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrConverterNotFound) ||
		errors.Is(err, ErrUnknownUnit)
}
