package enums

import "fmt"

// TrendDimension selects how multi-day trend rows are grouped into series.
type TrendDimension string

const (
	TrendDimensionDate     TrendDimension = "date"
	TrendDimensionShop     TrendDimension = "shop"
	TrendDimensionCourier  TrendDimension = "courier"
	TrendDimensionCategory TrendDimension = "category"
)

var validTrendDimensions = []TrendDimension{
	TrendDimensionDate,
	TrendDimensionShop,
	TrendDimensionCourier,
	TrendDimensionCategory,
}

// IsValid reports whether the value matches the canonical trend dimension enum.
func (d TrendDimension) IsValid() bool {
	for _, candidate := range validTrendDimensions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseTrendDimension converts the raw string to TrendDimension.
func ParseTrendDimension(value string) (TrendDimension, error) {
	for _, candidate := range validTrendDimensions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trend dimension %q", value)
}
