package dashboard

import (
	"github.com/google/uuid"

	"github.com/packtally/packtally-backend/pkg/db/models"
	"github.com/packtally/packtally-backend/pkg/enums"
)

// CourierTotal is a per-courier sum inside a shop breakdown.
type CourierTotal struct {
	CourierID uuid.UUID `json:"courier_id"`
	Name      string    `json:"name"`
	Total     int64     `json:"total"`
}

// ShopTotal is a per-shop sum inside a courier breakdown.
type ShopTotal struct {
	ShopID uuid.UUID `json:"shop_id"`
	Name   string    `json:"name"`
	Total  int64     `json:"total"`
}

// ShopDailyRow is one shop in the daily snapshot. Shops with no rows for the
// date stay in the list with HasData false and Total 0.
type ShopDailyRow struct {
	ShopID   uuid.UUID      `json:"shop_id"`
	Name     string         `json:"name"`
	HasData  bool           `json:"has_data"`
	Total    int64          `json:"total"`
	Couriers []CourierTotal `json:"couriers"`
}

// CourierDailyRow is one courier in the daily snapshot.
type CourierDailyRow struct {
	CourierID uuid.UUID   `json:"courier_id"`
	Name      string      `json:"name"`
	Total     int64       `json:"total"`
	Shops     []ShopTotal `json:"shops"`
}

// CategoryGroup buckets shops under one shop category.
type CategoryGroup struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Name       string     `json:"name"`
	Total      int64      `json:"total"`
	Shops      []ShopTotal `json:"shops"`
}

// DailySnapshot is the full single-date rollup.
type DailySnapshot struct {
	Date            string                        `json:"date"`
	GrandTotal      int64                         `json:"grand_total"`
	OperationTotals map[enums.OperationType]int64 `json:"operation_totals"`
	CoverageRate    float64                       `json:"coverage_rate"`
	ActiveShops     int                           `json:"active_shops"`
	ShopsWithData   int                           `json:"shops_with_data"`
	Shops           []ShopDailyRow                `json:"shops"`
	Couriers        []CourierDailyRow             `json:"couriers"`
	Categories      []CategoryGroup               `json:"categories"`
}

// TrendQuery shapes a multi-day trend read.
type TrendQuery struct {
	Dimension  enums.TrendDimension
	Days       int
	ShopID     *uuid.UUID
	CourierID  *uuid.UUID
	CategoryID *uuid.UUID
	TopSeries  int
}

// TrendSeries is one named series over the trend's date span. A date absent
// from Data counts as zero for consumers, never as a gap to skip.
type TrendSeries struct {
	Key   string           `json:"key"`
	Name  string           `json:"name"`
	Data  map[string]int64 `json:"data"`
	Total int64            `json:"total"`
}

// TrendResult carries the per-key series plus the total-by-date aggregate,
// which sums across all keys of the filtered row set and survives series
// truncation.
type TrendResult struct {
	Dimension   enums.TrendDimension `json:"dimension"`
	Dates       []string             `json:"dates"`
	Series      []TrendSeries        `json:"series"`
	TotalByDate map[string]int64     `json:"total_by_date"`
}

// DaySummary is the lightweight per-day figure set.
type DaySummary struct {
	Date          string  `json:"date"`
	Total         int64   `json:"total"`
	ShopsWithData int     `json:"shops_with_data"`
	CoverageRate  float64 `json:"coverage_rate"`
}

// Summary pairs today's figures with tomorrow's forecast rows.
type Summary struct {
	Today    DaySummary `json:"today"`
	Tomorrow DaySummary `json:"tomorrow"`
}

// HierarchyResult returns a parent courier's own rows, its children's rows,
// and their concatenation. ChildTypeCount counts child catalog rows and is
// unrelated to any ledger quantity.
type HierarchyResult struct {
	ParentID       uuid.UUID            `json:"parent_id"`
	ParentName     string               `json:"parent_name"`
	Own            []models.LedgerEntry `json:"own"`
	Children       []models.LedgerEntry `json:"children"`
	Total          []models.LedgerEntry `json:"total"`
	OwnNet         int64                `json:"own_net"`
	ChildrenNet    int64                `json:"children_net"`
	ChildTypeCount int                  `json:"child_type_count"`
}
