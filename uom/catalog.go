/*
Package uom provides the unit-of-measure catalog.

PURPOSE:
  Supplies the unit knowledge the scale engine depends on: which category a
  unit belongs to, how to convert a quantity between two units of the same
  category, and display names for error messages. The engine only sees the
  small scale.UnitService capability; this package is the concrete catalog
  behind it.

MODEL:
  Every unit carries a Factor: the amount of its category's base unit that
  one of this unit represents. Same-category conversion is then linear:

    qty_in_to = qty_in_from * from.Factor / to.Factor

  Example (mass, base gram): kilogram Factor=1000, milligram Factor=0.001.
  5 kilogram -> gram: 5 * 1000 / 1 = 5000.

  Cross-category conversion is invalid by definition; that is the scale
  engine's whole reason for existing.

CONCURRENCY:
  A Catalog is immutable after Build; all reads are lock-free and safe for
  concurrent use.

SEE ALSO:
  - scale/types.go: The UnitService interface this catalog implements
  - defaults.go:    Seed catalog used by demos and tests
*/
package uom

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/uom-engine/scale"
)

// =============================================================================
// UNIT
// =============================================================================

// Unit is one entry of the catalog.
type Unit struct {
	ID       scale.UnitID
	Name     string
	Category scale.CategoryID

	// Factor is the amount of the category's base unit per 1 of this unit.
	// The base unit itself has Factor 1.
	Factor decimal.Decimal
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is an immutable unit lookup table implementing scale.UnitService.
type Catalog struct {
	units map[scale.UnitID]Unit
}

// Build creates a catalog from a unit list. Later duplicates of the same
// unit ID overwrite earlier ones.
func Build(units []Unit) *Catalog {
	m := make(map[scale.UnitID]Unit, len(units))
	for _, u := range units {
		m[u.ID] = u
	}
	return &Catalog{units: m}
}

// Get returns a unit by ID.
func (c *Catalog) Get(id scale.UnitID) (Unit, error) {
	u, ok := c.units[id]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %s", scale.ErrUnknownUnit, id)
	}
	return u, nil
}

// Units returns all units, in unspecified order.
func (c *Catalog) Units() []Unit {
	out := make([]Unit, 0, len(c.units))
	for _, u := range c.units {
		out = append(out, u)
	}
	return out
}

// Category returns the category a unit belongs to.
func (c *Catalog) Category(id scale.UnitID) (scale.CategoryID, error) {
	u, err := c.Get(id)
	if err != nil {
		return "", err
	}
	return u.Category, nil
}

// Convert converts a quantity between two units of the same category.
func (c *Catalog) Convert(quantity decimal.Decimal, from, to scale.UnitID) (decimal.Decimal, error) {
	fu, err := c.Get(from)
	if err != nil {
		return decimal.Zero, err
	}
	tu, err := c.Get(to)
	if err != nil {
		return decimal.Zero, err
	}
	if fu.Category != tu.Category {
		return decimal.Zero, fmt.Errorf("cannot convert between %s (%s) and %s (%s): %w",
			fu.Name, fu.Category, tu.Name, tu.Category, scale.ErrIncompatibleUnitCategory)
	}
	if from == to {
		return quantity, nil
	}
	return quantity.Mul(fu.Factor).Div(tu.Factor), nil
}

// Name returns the display name of a unit, falling back to the raw ID for
// units the catalog doesn't know. Error paths need a printable name even
// when the unit lookup itself is the failure.
func (c *Catalog) Name(id scale.UnitID) string {
	if u, ok := c.units[id]; ok {
		return u.Name
	}
	return string(id)
}

// Compile-time check that Catalog implements scale.UnitService.
var _ scale.UnitService = (*Catalog)(nil)
