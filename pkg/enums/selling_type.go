package enums

import "fmt"

// SellingType is the unit of sale declared on an order line.
type SellingType string

const (
	SellingTypeUnits   SellingType = "units"
	SellingTypePallets SellingType = "pallets"
)

var validSellingTypes = []SellingType{
	SellingTypeUnits,
	SellingTypePallets,
}

// String implements fmt.Stringer.
func (s SellingType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SellingType.
func (s SellingType) IsValid() bool {
	for _, candidate := range validSellingTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSellingType converts raw input into a SellingType.
func ParseSellingType(value string) (SellingType, error) {
	for _, candidate := range validSellingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid selling type %q", value)
}
