package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/uom-engine/scale"
	"github.com/warp/uom-engine/scale/store"
	"github.com/warp/uom-engine/uom"
)

func testConverter(name string) *scale.Converter {
	return &scale.Converter{
		Name:            name,
		SourceUnit:      uom.UnitGram,
		DestinationUnit: uom.UnitEgg,
		Rounding:        scale.RoundCeil,
		Lines: scale.NewLineTable([]scale.ScaleLine{
			scale.NewScaleLine(
				scale.MustParseDecimal("100000"),
				scale.MustParseDecimal("0.01"),
				scale.MustParseDecimal("0"),
			),
		}),
		Units: uom.DefaultCatalog(),
	}
}

func TestMemory_SaveGetDelete(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, testConverter("a")))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, scale.ErrConverterNotFound)

	require.NoError(t, m.Delete(ctx, "a"))
	assert.ErrorIs(t, m.Delete(ctx, "a"), scale.ErrConverterNotFound)
}

func TestMemory_DuplicateNameRejected(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, testConverter("dup")))
	assert.ErrorIs(t, m.Save(ctx, testConverter("dup")), scale.ErrDuplicateName)

	// Replace overwrites instead
	replacement := testConverter("dup")
	replacement.Rounding = scale.RoundFloor
	require.NoError(t, m.Replace(ctx, replacement))

	got, err := m.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, scale.RoundFloor, got.Rounding)
}

func TestMemory_ListOrderedByName(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, m.Save(ctx, testConverter(name)))
	}

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "bravo", list[1].Name)
	assert.Equal(t, "charlie", list[2].Name)
}

func TestMemory_SaveValidates(t *testing.T) {
	m := store.NewMemory()

	invalid := testConverter("")
	assert.ErrorIs(t, m.Save(context.Background(), invalid), scale.ErrMissingName)
}
