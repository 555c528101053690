// Package inventory owns the base-unit stock model. All quantity math runs
// through the reconciler so every caller applies the same unit and pallet
// conversion, and every mutation lands in the stock movement ledger.
package inventory

import (
	"fmt"

	"github.com/wholesail/wholesail-backend/pkg/enums"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
)

// Snapshot is the per-product inventory state the reconciler operates on.
type Snapshot struct {
	BaseUnitStock  int
	QuantityInPack int
	UnitsPerPallet int
}

// Decrement describes one stock reduction in base units. Trail carries the
// human-readable conversion for the audit ledger.
type Decrement struct {
	ConsumedBaseUnits int
	NewBaseUnitStock  int
	Trail             string
}

// DerivedView is the display-facing stock in sale formats, floored so a
// partial pack or pallet never counts as sellable.
type DerivedView struct {
	AvailableUnits   int
	AvailablePallets int
}

// ComputeDecrement converts an ordered quantity in its selling format to a
// base-unit reduction. The result may drive stock negative; oversell is kept
// visible so the deficit can be reconciled, not clamped away.
func ComputeDecrement(quantity int, sellingType enums.SellingType, snap Snapshot) (Decrement, error) {
	if quantity <= 0 {
		return Decrement{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"quantity": quantity})
	}
	if !sellingType.IsValid() {
		return Decrement{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown selling type").
			WithDetails(map[string]any{"sellingType": string(sellingType)})
	}

	perQuantity := snap.QuantityInPack
	noun := "units"
	rateNoun := "units/pack"
	if sellingType == enums.SellingTypePallets {
		perQuantity = snap.UnitsPerPallet
		noun = "pallets"
		rateNoun = "units/pallet"
	}
	if perQuantity < 1 {
		perQuantity = 1
	}
	if quantity == 1 {
		noun = noun[:len(noun)-1]
	}

	consumed := quantity * perQuantity
	return Decrement{
		ConsumedBaseUnits: consumed,
		NewBaseUnitStock:  snap.BaseUnitStock - consumed,
		Trail:             fmt.Sprintf("%d %s x %d %s = %d base units", quantity, noun, perQuantity, rateNoun, consumed),
	}, nil
}

// View derives the displayable unit and pallet counts from base-unit stock.
func View(snap Snapshot) DerivedView {
	pack := snap.QuantityInPack
	if pack < 1 {
		pack = 1
	}
	pallet := snap.UnitsPerPallet
	if pallet < 1 {
		pallet = 1
	}
	return DerivedView{
		AvailableUnits:   floorDiv(snap.BaseUnitStock, pack),
		AvailablePallets: floorDiv(snap.BaseUnitStock, pallet),
	}
}

// floorDiv rounds toward negative infinity so oversold stock shows a full
// unit of deficit rather than rounding toward zero.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
