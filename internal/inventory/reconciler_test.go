package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wholesail/wholesail-backend/pkg/enums"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
)

func TestComputeDecrementUnitsAndPallets(t *testing.T) {
	snap := Snapshot{BaseUnitStock: 100, QuantityInPack: 6, UnitsPerPallet: 48}

	units, err := ComputeDecrement(2, enums.SellingTypeUnits, snap)
	require.NoError(t, err)
	assert.Equal(t, 12, units.ConsumedBaseUnits)
	assert.Equal(t, 88, units.NewBaseUnitStock)
	assert.Equal(t, "2 units x 6 units/pack = 12 base units", units.Trail)

	snap.BaseUnitStock = units.NewBaseUnitStock
	pallets, err := ComputeDecrement(1, enums.SellingTypePallets, snap)
	require.NoError(t, err)
	assert.Equal(t, 48, pallets.ConsumedBaseUnits)
	assert.Equal(t, 40, pallets.NewBaseUnitStock)
	assert.Equal(t, "1 pallet x 48 units/pallet = 48 base units", pallets.Trail)
}

func TestComputeDecrementAllowsOversell(t *testing.T) {
	snap := Snapshot{BaseUnitStock: 10, QuantityInPack: 6, UnitsPerPallet: 48}

	dec, err := ComputeDecrement(1, enums.SellingTypePallets, snap)
	require.NoError(t, err)
	assert.Equal(t, -38, dec.NewBaseUnitStock)
}

func TestComputeDecrementValidation(t *testing.T) {
	snap := Snapshot{BaseUnitStock: 100, QuantityInPack: 6, UnitsPerPallet: 48}

	_, err := ComputeDecrement(0, enums.SellingTypeUnits, snap)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = ComputeDecrement(1, enums.SellingType("crates"), snap)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestComputeDecrementNormalizesZeroConversionRates(t *testing.T) {
	snap := Snapshot{BaseUnitStock: 10, QuantityInPack: 0, UnitsPerPallet: 0}

	dec, err := ComputeDecrement(3, enums.SellingTypeUnits, snap)
	require.NoError(t, err)
	assert.Equal(t, 3, dec.ConsumedBaseUnits)
}

func TestView(t *testing.T) {
	view := View(Snapshot{BaseUnitStock: 100, QuantityInPack: 6, UnitsPerPallet: 48})
	assert.Equal(t, 16, view.AvailableUnits)
	assert.Equal(t, 2, view.AvailablePallets)
}

func TestViewFloorsNegativeStock(t *testing.T) {
	view := View(Snapshot{BaseUnitStock: -10, QuantityInPack: 6, UnitsPerPallet: 48})
	assert.Equal(t, -2, view.AvailableUnits)
	assert.Equal(t, -1, view.AvailablePallets)
}
