package uom_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/uom-engine/scale"
	"github.com/warp/uom-engine/uom"
)

func dec(s string) decimal.Decimal {
	return scale.MustParseDecimal(s)
}

func TestCatalog_SameCategoryConversion(t *testing.T) {
	catalog := uom.DefaultCatalog()

	cases := []struct {
		qty  string
		from scale.UnitID
		to   scale.UnitID
		want string
	}{
		{"5", uom.UnitKilogram, uom.UnitGram, "5000"},
		{"2500", uom.UnitGram, uom.UnitKilogram, "2.5"},
		{"1500", uom.UnitMilligram, uom.UnitGram, "1.5"},
		{"3", uom.UnitLiter, uom.UnitMilliliter, "3000"},
		{"24", uom.UnitPiece, uom.UnitDozen, "2"},
		{"2", uom.UnitDozen, uom.UnitPiece, "24"},
	}

	for _, tc := range cases {
		got, err := catalog.Convert(dec(tc.qty), tc.from, tc.to)
		require.NoError(t, err, "%s %s -> %s", tc.qty, tc.from, tc.to)
		assert.True(t, got.Equal(dec(tc.want)), "%s %s -> %s: want %s got %s",
			tc.qty, tc.from, tc.to, tc.want, got)
	}
}

func TestCatalog_SameUnitIsIdentity(t *testing.T) {
	catalog := uom.DefaultCatalog()

	got, err := catalog.Convert(dec("7.1234"), uom.UnitGram, uom.UnitGram)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("7.1234")))
}

func TestCatalog_CrossCategoryRejected(t *testing.T) {
	catalog := uom.DefaultCatalog()

	_, err := catalog.Convert(dec("1"), uom.UnitGram, uom.UnitLiter)
	require.Error(t, err)
	assert.ErrorIs(t, err, scale.ErrIncompatibleUnitCategory)
	assert.Contains(t, err.Error(), "Gram")
	assert.Contains(t, err.Error(), "Liter")
}

func TestCatalog_UnknownUnit(t *testing.T) {
	catalog := uom.DefaultCatalog()

	_, err := catalog.Convert(dec("1"), "furlong", uom.UnitGram)
	assert.ErrorIs(t, err, scale.ErrUnknownUnit)

	_, err = catalog.Category("furlong")
	assert.ErrorIs(t, err, scale.ErrUnknownUnit)
}

func TestCatalog_Category(t *testing.T) {
	catalog := uom.DefaultCatalog()

	cat, err := catalog.Category(uom.UnitKilogram)
	require.NoError(t, err)
	assert.Equal(t, uom.CategoryMass, cat)

	cat, err = catalog.Category(uom.UnitEgg)
	require.NoError(t, err)
	assert.Equal(t, uom.CategoryCount, cat)
}

func TestCatalog_NameFallsBackToID(t *testing.T) {
	catalog := uom.DefaultCatalog()

	assert.Equal(t, "Kilogram", catalog.Name(uom.UnitKilogram))
	assert.Equal(t, "furlong", catalog.Name("furlong"))
}
