/*
defaults.go - Seed catalog for demos and tests

PURPOSE:
  A small, realistic catalog covering three categories (mass, volume,
  count). Production deployments load units from the store instead; this
  set exists so the server can be seeded and the examples from the module
  documentation work out of the box.
*/
package uom

import (
	"github.com/shopspring/decimal"

	"github.com/warp/uom-engine/scale"
)

// Categories of the default catalog.
const (
	CategoryMass   scale.CategoryID = "mass"
	CategoryVolume scale.CategoryID = "volume"
	CategoryCount  scale.CategoryID = "count"
)

// Unit IDs of the default catalog.
const (
	UnitMilligram  scale.UnitID = "milligram"
	UnitGram       scale.UnitID = "gram"
	UnitKilogram   scale.UnitID = "kilogram"
	UnitMilliliter scale.UnitID = "milliliter"
	UnitLiter      scale.UnitID = "liter"
	UnitPiece      scale.UnitID = "unit"
	UnitDozen      scale.UnitID = "dozen"
	UnitEgg        scale.UnitID = "egg"
)

// DefaultCatalog returns the seed catalog. Base units (factor 1) are gram,
// liter and unit.
func DefaultCatalog() *Catalog {
	one := decimal.NewFromInt(1)
	return Build([]Unit{
		{ID: UnitMilligram, Name: "Milligram", Category: CategoryMass, Factor: scale.MustParseDecimal("0.001")},
		{ID: UnitGram, Name: "Gram", Category: CategoryMass, Factor: one},
		{ID: UnitKilogram, Name: "Kilogram", Category: CategoryMass, Factor: decimal.NewFromInt(1000)},
		{ID: UnitMilliliter, Name: "Milliliter", Category: CategoryVolume, Factor: scale.MustParseDecimal("0.001")},
		{ID: UnitLiter, Name: "Liter", Category: CategoryVolume, Factor: one},
		{ID: UnitPiece, Name: "Unit", Category: CategoryCount, Factor: one},
		{ID: UnitDozen, Name: "Dozen", Category: CategoryCount, Factor: decimal.NewFromInt(12)},
		{ID: UnitEgg, Name: "Egg", Category: CategoryCount, Factor: one},
	})
}
