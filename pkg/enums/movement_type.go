package enums

import "fmt"

// MovementType classifies a row in the stock movement ledger.
type MovementType string

const (
	MovementTypeInitial        MovementType = "initial"
	MovementTypePurchase       MovementType = "purchase"
	MovementTypeManualIncrease MovementType = "manual_increase"
	MovementTypeManualDecrease MovementType = "manual_decrease"
)

var validMovementTypes = []MovementType{
	MovementTypeInitial,
	MovementTypePurchase,
	MovementTypeManualIncrease,
	MovementTypeManualDecrease,
}

// String implements fmt.Stringer.
func (m MovementType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementType.
func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
