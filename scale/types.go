/*
Package scale provides the core scale-based unit conversion engine.

PURPOSE:
  This package contains the pure domain logic for piecewise ("scale line")
  unit-of-measure conversion. Instead of a single linear factor, a quantity
  is converted with one of several coefficient/constant pairs, chosen by
  which quantity bracket the input falls into, then rounded by policy.

KEY CONCEPTS IN THIS FILE (types.go):
  - Converter: source/destination units + rounding policy + ordered scale lines
  - ScaleLine: an (upper bound, coefficient, constant) bracket rule
  - RoundingPolicy: closed enum {None, Ceil, Nearest, Floor}
  - UnitService: the injected unit-catalog capability

DESIGN PRINCIPLES:
  1. Purity: Convert reads configuration, computes, and returns. No mutation.
  2. Precision: decimal.Decimal everywhere; bracket boundary equality
     (maxQuantity >= quantity) is load-bearing, so no float drift allowed.
  3. Injection: unit category checks and same-category conversion go through
     the small UnitService interface, never an ambient catalog.

USAGE:
  conv := &scale.Converter{
      Name:            "flour-to-eggs",
      SourceUnit:      "gram",
      DestinationUnit: "egg",
      Rounding:        scale.RoundCeil,
      Lines:           scale.NewLineTable([]scale.ScaleLine{line}),
      Units:           catalog,
  }
  result, err := conv.Convert(decimal.NewFromInt(101), "", "")

SEE ALSO:
  - table.go:   Ordered scale-line container and lower-bound lookup
  - convert.go: The Convert operation and rounding dispatch
  - errors.go:  Error taxonomy
*/
package scale

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// UnitID identifies a unit of measure in the external catalog.
// The zero value means "not specified" in Convert arguments.
type UnitID string

// CategoryID identifies a group of mutually convertible units.
type CategoryID string

// =============================================================================
// PRECISION
// =============================================================================

// Precision is the number of fractional digits carried by quantities,
// bounds, coefficients and constants.
const Precision = 4

// Quantize rounds a value to the engine's fixed precision.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(Precision)
}

// =============================================================================
// ROUNDING POLICY
// =============================================================================

// RoundingPolicy is the post-transform adjustment applied to a result.
// It is a closed set; ApplyRounding in convert.go dispatches on it.
type RoundingPolicy string

const (
	RoundNone    RoundingPolicy = "none"    // Leave the value unrounded
	RoundCeil    RoundingPolicy = "ceil"    // Toward positive infinity
	RoundNearest RoundingPolicy = "nearest" // Nearest integer, half away from zero
	RoundFloor   RoundingPolicy = "floor"   // Toward negative infinity
)

// ParseRoundingPolicy maps a config string to a policy.
// Unknown values fall back to RoundNone, matching a blank selection.
func ParseRoundingPolicy(s string) RoundingPolicy {
	switch s {
	case "ceil":
		return RoundCeil
	case "nearest", "round":
		return RoundNearest
	case "floor":
		return RoundFloor
	default:
		return RoundNone
	}
}

// =============================================================================
// SCALE LINE - One bracket of the piecewise conversion
// =============================================================================

// ScaleLine is a quantity-bracket rule. A quantity q (in the converter's
// source unit) matches this line when q <= MaxQuantity and no line with a
// smaller MaxQuantity also satisfies that. The transform is affine:
//
//	result = q * Coefficient + Constant
type ScaleLine struct {
	MaxQuantity decimal.Decimal
	Coefficient decimal.Decimal
	Constant    decimal.Decimal
}

// NewScaleLine builds a line with all values quantized to Precision.
func NewScaleLine(maxQuantity, coefficient, constant decimal.Decimal) ScaleLine {
	return ScaleLine{
		MaxQuantity: Quantize(maxQuantity),
		Coefficient: Quantize(coefficient),
		Constant:    Quantize(constant),
	}
}

// Apply evaluates the affine transform for a quantity.
func (l ScaleLine) Apply(quantity decimal.Decimal) decimal.Decimal {
	return quantity.Mul(l.Coefficient).Add(l.Constant)
}

// MustParseDecimal converts a decimal literal, panicking on malformed input.
// Intended for constants and tests, not for request parsing.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// UNIT SERVICE - Injected unit catalog capability
// =============================================================================

// UnitService is the capability the converter needs from the external unit
// catalog. Implementations must be safe for concurrent use; the engine calls
// it at most twice per conversion (normalize + denormalize).
type UnitService interface {
	// Category returns the unit category a unit belongs to.
	// Returns an error wrapping ErrUnknownUnit for unregistered units.
	Category(unit UnitID) (CategoryID, error)

	// Convert converts a quantity between two units of the same category.
	// Returns an error for unknown units or cross-category pairs.
	Convert(quantity decimal.Decimal, from, to UnitID) (decimal.Decimal, error)

	// Name returns a display name for error messages. Implementations
	// should return the raw ID for unknown units rather than fail.
	Name(unit UnitID) string
}

// =============================================================================
// CONVERTER - A named piecewise conversion rule set
// =============================================================================

// Converter holds one scale-based conversion configuration. Converters are
// created and edited by administrative workflows (factory + store); Convert
// itself only reads, so a loaded Converter is safe for concurrent use.
type Converter struct {
	// Name is unique across all converters. Uniqueness is enforced by the
	// persistence layer, not here.
	Name string

	// SourceUnit denominates scale-line bounds and normalized quantities.
	SourceUnit UnitID

	// DestinationUnit denominates the affine-transform result.
	DestinationUnit UnitID

	// Rounding is applied once, as the final step of Convert.
	Rounding RoundingPolicy

	// Lines is the ordered bracket table, owned by this converter.
	Lines *LineTable

	// Description is free text with no semantic effect.
	Description string

	// Units is the injected catalog capability.
	Units UnitService
}

// Validate checks a converter configuration before it is accepted by the
// management surface. Convert assumes a validated converter.
func (c *Converter) Validate() error {
	if c.Name == "" {
		return ErrMissingName
	}
	if c.Lines == nil || c.Lines.Len() == 0 {
		return ErrNoScaleLines
	}
	if c.Units == nil {
		return ErrMissingUnitService
	}
	if _, err := c.Units.Category(c.SourceUnit); err != nil {
		return err
	}
	if _, err := c.Units.Category(c.DestinationUnit); err != nil {
		return err
	}
	return nil
}
