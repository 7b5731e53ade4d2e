/*
convert.go - The convert operation and rounding dispatch

PURPOSE:
  Implements the single non-trivial operation of the engine:

    normalize -> select scale line -> affine transform -> denormalize -> round

  Convert is a pure read: it never mutates the converter, performs at most
  two catalog calls, and terminates in time bounded by the line count.

ALGORITHM:
  1. If an input unit is supplied, it must share the source unit's category;
     quantities in a different unit of that category are converted into the
     source unit first. An omitted input unit means "already in source unit".
  2. If an output unit is supplied, it must share the destination unit's
     category. Checked up front so a bad output unit fails before any
     bracket lookup.
  3. The line with the smallest MaxQuantity >= normalized quantity is
     selected; no matching line is a QuantityOutOfRange failure.
  4. result = quantity * coefficient + constant, denominated in the
     destination unit, then converted to the output unit when one was given.
  5. The rounding policy is applied last, exactly once.

EXAMPLE:
  "flour-to-eggs": gram -> egg, one line {max 100000, coeff 0.01, const 0},
  rounding ceil. Convert(101) = ceil(1.01) = 2. Convert(100) = ceil(1.00) = 1.

SEE ALSO:
  - table.go:  Line selection
  - errors.go: Failure taxonomy
*/
package scale

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CONVERT
// =============================================================================

// Convert runs the scale-based conversion for a quantity.
//
// inputUnit and outputUnit are optional: the zero UnitID defaults them to
// the converter's SourceUnit and DestinationUnit respectively. Supplied
// units must belong to the same category as the configured ones, otherwise
// the call fails wrapping ErrIncompatibleUnitCategory. A quantity above
// every scale line fails wrapping ErrQuantityOutOfRange.
func (c *Converter) Convert(quantity decimal.Decimal, inputUnit, outputUnit UnitID) (decimal.Decimal, error) {
	qty := Quantize(quantity)

	// Normalize into the source unit.
	if inputUnit != "" {
		if err := c.checkCategory(inputUnit, c.SourceUnit, DirectionInput); err != nil {
			return decimal.Zero, err
		}
		if inputUnit != c.SourceUnit {
			converted, err := c.Units.Convert(qty, inputUnit, c.SourceUnit)
			if err != nil {
				return decimal.Zero, err
			}
			qty = Quantize(converted)
		}
	}

	// Reject a bad output unit before any bracket lookup.
	if outputUnit != "" {
		if err := c.checkCategory(outputUnit, c.DestinationUnit, DirectionOutput); err != nil {
			return decimal.Zero, err
		}
	}

	line, ok := c.Lines.Lookup(qty)
	if !ok {
		return decimal.Zero, &OutOfRangeError{
			Converter: c.Name,
			Quantity:  qty,
			Unit:      c.SourceUnit,
			UnitName:  c.Units.Name(c.SourceUnit),
		}
	}

	result := line.Apply(qty)

	// Denormalize into the requested output unit.
	if outputUnit != "" && outputUnit != c.DestinationUnit {
		converted, err := c.Units.Convert(result, c.DestinationUnit, outputUnit)
		if err != nil {
			return decimal.Zero, err
		}
		result = converted
	}

	return ApplyRounding(result, c.Rounding), nil
}

// checkCategory verifies that a supplied unit shares its category with the
// configured unit for that direction.
func (c *Converter) checkCategory(supplied, configured UnitID, dir UnitDirection) error {
	suppliedCat, err := c.Units.Category(supplied)
	if err != nil {
		return err
	}
	configuredCat, err := c.Units.Category(configured)
	if err != nil {
		return err
	}
	if suppliedCat != configuredCat {
		return &IncompatibleUnitError{
			Converter: c.Name,
			Direction: dir,
			Unit:      supplied,
			UnitName:  c.Units.Name(supplied),
			Expected:  configuredCat,
		}
	}
	return nil
}

// =============================================================================
// ROUNDING
// =============================================================================

// ApplyRounding applies a rounding policy to a value. Idempotent: applying
// the same policy twice yields the same result. RoundNearest uses
// half-away-from-zero, matching math.Round.
func ApplyRounding(value decimal.Decimal, policy RoundingPolicy) decimal.Decimal {
	switch policy {
	case RoundCeil:
		return value.Ceil()
	case RoundFloor:
		return value.Floor()
	case RoundNearest:
		return value.Round(0)
	default:
		return value
	}
}
