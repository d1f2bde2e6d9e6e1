package enums

import "fmt"

// OperationType classifies a ledger row for display and reporting. All types
// contribute their signed quantity identically when net growth is summed.
type OperationType string

const (
	OperationTypeAdd      OperationType = "add"
	OperationTypeSubtract OperationType = "subtract"
	OperationTypeMerge    OperationType = "merge"
)

var validOperationTypes = []OperationType{
	OperationTypeAdd,
	OperationTypeSubtract,
	OperationTypeMerge,
}

// IsValid reports whether the value matches the canonical operation type enum.
func (o OperationType) IsValid() bool {
	for _, candidate := range validOperationTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOperationType converts the raw string to OperationType.
func ParseOperationType(value string) (OperationType, error) {
	for _, candidate := range validOperationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operation type %q", value)
}
