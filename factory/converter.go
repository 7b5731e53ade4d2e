/*
Package factory provides JSON to Go converter-definition conversion.

PURPOSE:
  Converts JSON converter definitions into scale.Converter values. This
  enables conversion rules to be configured without code changes - an
  operations team can define scales in JSON, and the factory creates the
  proper Go structs bound to a unit catalog.

WHY JSON?
  - Non-developers can define conversion scales
  - Easy integration with the admin API
  - Version control for scale definitions
  - Database storage of converter configs

JSON SCHEMA:
  {
    "name": "flour-to-eggs",
    "source_unit": "gram",
    "destination_unit": "egg",
    "rounding": "ceil",
    "description": "1 egg per 100g of flour",
    "lines": [
      {"max_quantity": "100000", "coefficient": "0.01", "constant": "0"}
    ]
  }

  Decimal fields accept JSON numbers or strings; strings are preferred to
  keep the 4-digit precision exact in configuration files.

USAGE:
  f := factory.New(catalog)
  conv, err := f.Parse(jsonStr)

SEE ALSO:
  - scale/types.go: Converter type definition
  - api/handlers.go: Stores/loads definitions through this factory
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/uom-engine/scale"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConverterJSON is the JSON representation of a converter.
type ConverterJSON struct {
	Name            string     `json:"name"`
	SourceUnit      string     `json:"source_unit"`
	DestinationUnit string     `json:"destination_unit"`
	Rounding        string     `json:"rounding,omitempty"`
	Description     string     `json:"description,omitempty"`
	Lines           []LineJSON `json:"lines"`
}

// LineJSON represents one scale line. Lines keep their listed order; when
// two lines share the same max_quantity, the earlier one wins at lookup.
type LineJSON struct {
	MaxQuantity decimal.Decimal `json:"max_quantity"`
	Coefficient decimal.Decimal `json:"coefficient"`
	Constant    decimal.Decimal `json:"constant"`
}

// =============================================================================
// CONVERTER FACTORY
// =============================================================================

// Factory builds converters bound to a unit catalog.
type Factory struct {
	units scale.UnitService
}

// New creates a factory bound to the given unit catalog.
func New(units scale.UnitService) *Factory {
	return &Factory{units: units}
}

// Parse parses a JSON string into a validated converter.
func (f *Factory) Parse(jsonStr string) (*scale.Converter, error) {
	var cj ConverterJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse converter JSON: %w", err)
	}
	return f.FromJSON(cj)
}

// FromJSON converts a ConverterJSON into a validated scale.Converter.
func (f *Factory) FromJSON(cj ConverterJSON) (*scale.Converter, error) {
	lines := make([]scale.ScaleLine, 0, len(cj.Lines))
	for _, lj := range cj.Lines {
		lines = append(lines, scale.NewScaleLine(lj.MaxQuantity, lj.Coefficient, lj.Constant))
	}

	conv := &scale.Converter{
		Name:            cj.Name,
		SourceUnit:      scale.UnitID(cj.SourceUnit),
		DestinationUnit: scale.UnitID(cj.DestinationUnit),
		Rounding:        scale.ParseRoundingPolicy(cj.Rounding),
		Description:     cj.Description,
		Lines:           scale.NewLineTable(lines),
		Units:           f.units,
	}

	if err := conv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid converter %q: %w", cj.Name, err)
	}
	return conv, nil
}

// ToJSON converts a converter back to its JSON representation.
// Line order follows the table's ascending bound order.
func (f *Factory) ToJSON(c *scale.Converter) ConverterJSON {
	cj := ConverterJSON{
		Name:            c.Name,
		SourceUnit:      string(c.SourceUnit),
		DestinationUnit: string(c.DestinationUnit),
		Rounding:        string(c.Rounding),
		Description:     c.Description,
	}
	for _, l := range c.Lines.Lines() {
		cj.Lines = append(cj.Lines, LineJSON{
			MaxQuantity: l.MaxQuantity,
			Coefficient: l.Coefficient,
			Constant:    l.Constant,
		})
	}
	return cj
}

// =============================================================================
// PRESET DEFINITIONS
// =============================================================================

// FlourToEggsJSON returns the canonical demo definition: 1 egg per 100 g of
// flour, capped at 100 kg, rounded up so a partial egg becomes a whole one.
func FlourToEggsJSON() string {
	return `{
		"name": "flour-to-eggs",
		"source_unit": "gram",
		"destination_unit": "egg",
		"rounding": "ceil",
		"description": "1 egg per 100g of flour",
		"lines": [
			{"max_quantity": "100000", "coefficient": "0.01", "constant": "0"}
		]
	}`
}

// PackagingJSON returns a tiered packaging definition: orders up to 10
// units ship in 1 box, up to 50 in 2, up to 200 in one box per 25 units
// plus a pallet base of 2.
func PackagingJSON() string {
	return `{
		"name": "units-to-boxes",
		"source_unit": "unit",
		"destination_unit": "unit",
		"rounding": "ceil",
		"description": "tiered packaging scale",
		"lines": [
			{"max_quantity": "10", "coefficient": "0", "constant": "1"},
			{"max_quantity": "50", "coefficient": "0", "constant": "2"},
			{"max_quantity": "200", "coefficient": "0.04", "constant": "2"}
		]
	}`
}
