package scale_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/uom-engine/scale"
	"github.com/warp/uom-engine/uom"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return scale.MustParseDecimal(s)
}

func line(maxQty, coeff, constant string) scale.ScaleLine {
	return scale.NewScaleLine(dec(maxQty), dec(coeff), dec(constant))
}

// flourToEggs is the canonical converter: 1 egg per 100g of flour.
func flourToEggs(rounding scale.RoundingPolicy) *scale.Converter {
	return &scale.Converter{
		Name:            "flour-to-eggs",
		SourceUnit:      uom.UnitGram,
		DestinationUnit: uom.UnitEgg,
		Rounding:        rounding,
		Lines:           scale.NewLineTable([]scale.ScaleLine{line("100000", "0.01", "0")}),
		Units:           uom.DefaultCatalog(),
	}
}

// =============================================================================
// ROUNDING POLICY TESTS
// =============================================================================

func TestConvert_CeilRounding(t *testing.T) {
	// GIVEN: 1 egg per 100g, rounding up
	// WHEN: Converting 101g
	// THEN: 1.01 eggs rounds up to 2

	conv := flourToEggs(scale.RoundCeil)

	result, err := conv.Convert(dec("101"), "", "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("2")), "got %s", result)

	// Exactly 100g is exactly 1 egg, no rounding needed
	result, err = conv.Convert(dec("100"), "", "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("1")), "got %s", result)
}

func TestConvert_FloorRounding(t *testing.T) {
	conv := flourToEggs(scale.RoundFloor)

	result, err := conv.Convert(dec("101"), "", "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("1")), "got %s", result)
}

func TestConvert_NearestRounding(t *testing.T) {
	conv := flourToEggs(scale.RoundNearest)

	// 149.9g -> 1.499 eggs -> 1
	result, err := conv.Convert(dec("149.9"), "", "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("1")), "got %s", result)

	// 150.1g -> 1.501 eggs -> 2
	result, err = conv.Convert(dec("150.1"), "", "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("2")), "got %s", result)
}

func TestConvert_NoRounding(t *testing.T) {
	conv := flourToEggs(scale.RoundNone)

	result, err := conv.Convert(dec("101"), "", "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("1.01")), "got %s", result)
}

func TestApplyRounding_Idempotent(t *testing.T) {
	policies := []scale.RoundingPolicy{
		scale.RoundNone, scale.RoundCeil, scale.RoundNearest, scale.RoundFloor,
	}
	values := []string{"1.01", "1.499", "1.5", "-1.5", "-2.7", "0", "3"}

	for _, p := range policies {
		for _, v := range values {
			once := scale.ApplyRounding(dec(v), p)
			twice := scale.ApplyRounding(once, p)
			assert.True(t, once.Equal(twice), "policy %s value %s: %s != %s", p, v, once, twice)
		}
	}
}

func TestApplyRounding_NegativeValues(t *testing.T) {
	// Ceil goes toward positive infinity, floor toward negative infinity,
	// nearest rounds halves away from zero.
	assert.True(t, scale.ApplyRounding(dec("-1.5"), scale.RoundCeil).Equal(dec("-1")))
	assert.True(t, scale.ApplyRounding(dec("-1.5"), scale.RoundFloor).Equal(dec("-2")))
	assert.True(t, scale.ApplyRounding(dec("-1.5"), scale.RoundNearest).Equal(dec("-2")))
	assert.True(t, scale.ApplyRounding(dec("-1.4"), scale.RoundNearest).Equal(dec("-1")))
}

// =============================================================================
// RANGE TESTS
// =============================================================================

func TestConvert_QuantityOutOfRange(t *testing.T) {
	// GIVEN: A converter whose largest bound is 50
	// WHEN: Converting 60
	// THEN: Fails with ErrQuantityOutOfRange, naming quantity and converter

	conv := &scale.Converter{
		Name:            "small-scale",
		SourceUnit:      uom.UnitGram,
		DestinationUnit: uom.UnitEgg,
		Rounding:        scale.RoundNone,
		Lines:           scale.NewLineTable([]scale.ScaleLine{line("50", "1", "0")}),
		Units:           uom.DefaultCatalog(),
	}

	_, err := conv.Convert(dec("60"), "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, scale.ErrQuantityOutOfRange)

	var oor *scale.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.True(t, oor.Quantity.Equal(dec("60")))
	assert.Equal(t, "small-scale", oor.Converter)
	assert.Contains(t, err.Error(), "small-scale")
}

func TestConvert_BoundaryIsInclusive(t *testing.T) {
	// maxQuantity >= quantity: a quantity exactly on the largest bound matches
	conv := flourToEggs(scale.RoundNone)

	result, err := conv.Convert(dec("100000"), "", "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("1000")), "got %s", result)

	_, err = conv.Convert(dec("100000.0001"), "", "")
	assert.ErrorIs(t, err, scale.ErrQuantityOutOfRange)
}

// =============================================================================
// UNIT NORMALIZATION TESTS
// =============================================================================

func TestConvert_NormalizesInputUnit(t *testing.T) {
	// GIVEN: A gram-denominated converter
	// WHEN: Converting 0.101 kilogram
	// THEN: Normalized to 101g, same result as Convert(101)

	conv := flourToEggs(scale.RoundCeil)

	result, err := conv.Convert(dec("0.101"), uom.UnitKilogram, "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("2")), "got %s", result)
}

func TestConvert_DenormalizesOutputUnit(t *testing.T) {
	// 1300g -> 13 eggs -> 13/12 dozen -> ceil -> 2
	conv := flourToEggs(scale.RoundCeil)

	result, err := conv.Convert(dec("1300"), "", uom.UnitDozen)
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("2")), "got %s", result)
}

func TestConvert_IdentityUnitsAreNoOps(t *testing.T) {
	// Explicitly passing the configured units gives the same result as
	// omitting them.
	conv := flourToEggs(scale.RoundCeil)

	explicit, err := conv.Convert(dec("101"), uom.UnitGram, uom.UnitEgg)
	require.NoError(t, err)
	implicit, err := conv.Convert(dec("101"), "", "")
	require.NoError(t, err)
	assert.True(t, explicit.Equal(implicit))
}

func TestConvert_NormalizedQuantitySelectsLine(t *testing.T) {
	// Bracket selection happens AFTER normalization: 0.06kg = 60g must be
	// out of range for a table capped at 50g even though 0.06 < 50.
	conv := &scale.Converter{
		Name:            "small-scale",
		SourceUnit:      uom.UnitGram,
		DestinationUnit: uom.UnitEgg,
		Rounding:        scale.RoundNone,
		Lines:           scale.NewLineTable([]scale.ScaleLine{line("50", "1", "0")}),
		Units:           uom.DefaultCatalog(),
	}

	_, err := conv.Convert(dec("0.06"), uom.UnitKilogram, "")
	assert.ErrorIs(t, err, scale.ErrQuantityOutOfRange)
}

// =============================================================================
// CATEGORY MISMATCH TESTS
// =============================================================================

func TestConvert_IncompatibleInputUnit(t *testing.T) {
	conv := flourToEggs(scale.RoundCeil)

	_, err := conv.Convert(dec("1"), uom.UnitLiter, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, scale.ErrIncompatibleUnitCategory)

	var iue *scale.IncompatibleUnitError
	require.ErrorAs(t, err, &iue)
	assert.Equal(t, scale.DirectionInput, iue.Direction)
	assert.Equal(t, uom.CategoryMass, iue.Expected)
	assert.Contains(t, err.Error(), "Liter")
	assert.Contains(t, err.Error(), "flour-to-eggs")
}

func TestConvert_IncompatibleOutputUnit(t *testing.T) {
	conv := flourToEggs(scale.RoundCeil)

	_, err := conv.Convert(dec("101"), "", uom.UnitGram)
	require.Error(t, err)

	var iue *scale.IncompatibleUnitError
	require.ErrorAs(t, err, &iue)
	assert.Equal(t, scale.DirectionOutput, iue.Direction)
	assert.Equal(t, uom.CategoryCount, iue.Expected)
}

func TestConvert_OutputCheckPrecedesRangeCheck(t *testing.T) {
	// A bad output unit is rejected even when the quantity would also be
	// out of range.
	conv := flourToEggs(scale.RoundCeil)

	_, err := conv.Convert(dec("999999999"), "", uom.UnitGram)
	assert.ErrorIs(t, err, scale.ErrIncompatibleUnitCategory)
	assert.NotErrorIs(t, err, scale.ErrQuantityOutOfRange)
}

func TestConvert_CategoryMismatchRegardlessOfQuantity(t *testing.T) {
	conv := flourToEggs(scale.RoundCeil)

	for _, q := range []string{"-5", "0", "101", "999999999"} {
		_, err := conv.Convert(dec(q), uom.UnitLiter, "")
		assert.ErrorIs(t, err, scale.ErrIncompatibleUnitCategory, "quantity %s", q)
	}
}

func TestConvert_UnknownInputUnit(t *testing.T) {
	conv := flourToEggs(scale.RoundCeil)

	_, err := conv.Convert(dec("101"), "furlong", "")
	assert.ErrorIs(t, err, scale.ErrUnknownUnit)
}

// =============================================================================
// MULTI-LINE AND EDGE CASES
// =============================================================================

func TestConvert_MultiLineTieredScale(t *testing.T) {
	// Tiered packaging: <=10 units -> 1 box, <=50 -> 2 boxes,
	// <=200 -> 0.04/unit + 2 base.
	conv := &scale.Converter{
		Name:            "units-to-boxes",
		SourceUnit:      uom.UnitPiece,
		DestinationUnit: uom.UnitPiece,
		Rounding:        scale.RoundCeil,
		Lines: scale.NewLineTable([]scale.ScaleLine{
			line("10", "0", "1"),
			line("50", "0", "2"),
			line("200", "0.04", "2"),
		}),
		Units: uom.DefaultCatalog(),
	}

	cases := []struct {
		qty  string
		want string
	}{
		{"1", "1"},
		{"10", "1"},
		{"11", "2"},
		{"50", "2"},
		{"51", "5"},  // 51*0.04+2 = 4.04 -> 5
		{"200", "10"}, // 200*0.04+2 = 10
	}
	for _, tc := range cases {
		result, err := conv.Convert(dec(tc.qty), "", "")
		require.NoError(t, err, "qty %s", tc.qty)
		assert.True(t, result.Equal(dec(tc.want)), "qty %s: want %s got %s", tc.qty, tc.want, result)
	}
}

func TestConvert_NegativeAndZeroQuantities(t *testing.T) {
	// Nothing forbids negative or zero inputs; they match the first bracket
	// whose bound is >= the quantity.
	conv := flourToEggs(scale.RoundNone)

	result, err := conv.Convert(dec("0"), "", "")
	require.NoError(t, err)
	assert.True(t, result.IsZero())

	result, err = conv.Convert(dec("-100"), "", "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("-1")), "got %s", result)
}

func TestConvert_ConstantOffset(t *testing.T) {
	// result = q*coefficient + constant
	conv := &scale.Converter{
		Name:            "with-constant",
		SourceUnit:      uom.UnitGram,
		DestinationUnit: uom.UnitEgg,
		Rounding:        scale.RoundNone,
		Lines:           scale.NewLineTable([]scale.ScaleLine{line("1000", "0.5", "3")}),
		Units:           uom.DefaultCatalog(),
	}

	result, err := conv.Convert(dec("10"), "", "")
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("8")), "got %s", result)
}

// =============================================================================
// VALIDATE TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	catalog := uom.DefaultCatalog()
	valid := flourToEggs(scale.RoundCeil)
	require.NoError(t, valid.Validate())

	noName := flourToEggs(scale.RoundCeil)
	noName.Name = ""
	assert.ErrorIs(t, noName.Validate(), scale.ErrMissingName)

	noLines := flourToEggs(scale.RoundCeil)
	noLines.Lines = scale.NewLineTable(nil)
	assert.ErrorIs(t, noLines.Validate(), scale.ErrNoScaleLines)

	badUnit := flourToEggs(scale.RoundCeil)
	badUnit.SourceUnit = "furlong"
	badUnit.Units = catalog
	assert.ErrorIs(t, badUnit.Validate(), scale.ErrUnknownUnit)

	noService := flourToEggs(scale.RoundCeil)
	noService.Units = nil
	assert.ErrorIs(t, noService.Validate(), scale.ErrMissingUnitService)
}
