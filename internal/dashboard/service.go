// Package dashboard builds daily snapshots, multi-day trends, and
// hierarchical courier rollups from the ledger and the catalogs. Results are
// memoized in an injected rollup cache; secondary catalog failures degrade to
// empty parts instead of failing the whole read.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/packtally/packtally-backend/internal/growth"
	"github.com/packtally/packtally-backend/internal/rollupcache"
	"github.com/packtally/packtally-backend/pkg/config"
	"github.com/packtally/packtally-backend/pkg/dates"
	"github.com/packtally/packtally-backend/pkg/db/models"
	"github.com/packtally/packtally-backend/pkg/enums"
	pkgerrors "github.com/packtally/packtally-backend/pkg/errors"
	"github.com/packtally/packtally-backend/pkg/logger"
	"github.com/packtally/packtally-backend/pkg/metrics"
)

type ledgerReader interface {
	ListByDate(ctx context.Context, date string) ([]models.LedgerEntry, error)
	ListByDateRange(ctx context.Context, start, end string, filter growth.Scope) ([]models.LedgerEntry, error)
	ListByCouriers(ctx context.Context, courierIDs []uuid.UUID) ([]models.LedgerEntry, error)
}

type shopCatalog interface {
	ListActive(ctx context.Context) ([]models.Shop, error)
}

type courierCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.CourierType, error)
	ListActive(ctx context.Context) ([]models.CourierType, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]models.CourierType, error)
}

type shopCategoryCatalog interface {
	ListShopCategories(ctx context.Context) ([]models.ShopCategory, error)
}

// Service exposes the aggregated dashboard reads.
type Service interface {
	Daily(ctx context.Context, date string, categoryID *uuid.UUID) (*DailySnapshot, error)
	Trend(ctx context.Context, query TrendQuery) (*TrendResult, error)
	Summary(ctx context.Context) (*Summary, error)
	OperationStats(ctx context.Context, scope growth.Scope) (*growth.Stats, error)
	CourierHierarchy(ctx context.Context, parentID uuid.UUID) (*HierarchyResult, error)
	FlushCache(ctx context.Context) error
}

type service struct {
	ledger     ledgerReader
	shops      shopCatalog
	couriers   courierCatalog
	categories shopCategoryCatalog
	calc       growth.Calculator
	cache      rollupcache.Cache
	clock      *dates.Clock
	cfg        config.DashboardConfig
	logg       *logger.Logger
	cacheMet   *metrics.CacheMetrics
}

// NewService wires the aggregation engine with its collaborators. The cache
// is an explicit instance so tests can construct isolated ones.
func NewService(
	ledger ledgerReader,
	shops shopCatalog,
	couriers courierCatalog,
	categories shopCategoryCatalog,
	calc growth.Calculator,
	cache rollupcache.Cache,
	clock *dates.Clock,
	cfg config.DashboardConfig,
	logg *logger.Logger,
	cacheMet *metrics.CacheMetrics,
) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	if shops == nil {
		return nil, fmt.Errorf("shop catalog required")
	}
	if couriers == nil {
		return nil, fmt.Errorf("courier catalog required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category catalog required")
	}
	if calc == nil {
		return nil, fmt.Errorf("growth calculator required")
	}
	if cache == nil {
		return nil, fmt.Errorf("rollup cache required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock required")
	}
	return &service{
		ledger:     ledger,
		shops:      shops,
		couriers:   couriers,
		categories: categories,
		calc:       calc,
		cache:      cache,
		clock:      clock,
		cfg:        cfg,
		logg:       logg,
		cacheMet:   cacheMet,
	}, nil
}

// cached runs compute on a miss and stores its marshaled result. Hits are
// returned verbatim from the cache with no revalidation against the ledger.
func cached[T any](ctx context.Context, s *service, endpoint, key string, ttl time.Duration, compute func() (*T, error)) (*T, error) {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.warn(ctx, "rollup cache read failed", err)
	}
	if ok {
		var out T
		if err := json.Unmarshal(payload, &out); err == nil {
			s.cacheMet.IncHit(endpoint)
			return &out, nil
		}
		s.warn(ctx, "rollup cache payload corrupt", err)
	}
	s.cacheMet.IncMiss(endpoint)

	result, err := compute()
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return result, nil
	}
	if err := s.cache.Set(ctx, key, encoded, ttl); err != nil {
		s.warn(ctx, "rollup cache write failed", err)
	}
	return result, nil
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	if err != nil {
		ctx = s.logg.WithField(ctx, "error", err.Error())
	}
	s.logg.Warn(ctx, msg)
}

func roundRate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(numerator)).
		Div(decimal.NewFromInt(int64(denominator))).
		Round(2)
	out, _ := rate.Float64()
	return out
}

func (s *service) Daily(ctx context.Context, date string, categoryID *uuid.UUID) (*DailySnapshot, error) {
	normalized, err := dates.Parse(date)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid date").
			WithDetails(map[string]string{"date": "must be a calendar date (YYYY-MM-DD)"})
	}

	filters := map[string]string{"date": normalized}
	if categoryID != nil {
		filters["category_id"] = categoryID.String()
	}
	key := rollupcache.BuildKey("daily", filters)

	return cached(ctx, s, "daily", key, s.cfg.RollupTTL, func() (*DailySnapshot, error) {
		return s.computeDaily(ctx, normalized, categoryID)
	})
}

func (s *service) computeDaily(ctx context.Context, date string, categoryID *uuid.UUID) (*DailySnapshot, error) {
	rows, err := s.ledger.ListByDate(ctx, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load ledger rows for date")
	}

	var secondary error

	shops, err := s.shops.ListActive(ctx)
	if err != nil {
		secondary = multierr.Append(secondary, err)
		shops = nil
	}
	courierTypes, err := s.couriers.ListActive(ctx)
	if err != nil {
		secondary = multierr.Append(secondary, err)
		courierTypes = nil
	}
	shopCategories, err := s.categories.ListShopCategories(ctx)
	if err != nil {
		secondary = multierr.Append(secondary, err)
		shopCategories = nil
	}
	if secondary != nil {
		s.warn(ctx, "daily rollup degraded, catalog reads failed", secondary)
	}

	if categoryID != nil {
		filtered := shops[:0:0]
		for _, shop := range shops {
			if shop.CategoryID != nil && *shop.CategoryID == *categoryID {
				filtered = append(filtered, shop)
			}
		}
		shops = filtered

		inCategory := map[uuid.UUID]bool{}
		for _, shop := range shops {
			inCategory[shop.ID] = true
		}
		kept := rows[:0:0]
		for _, row := range rows {
			if inCategory[row.ShopID] {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	shopNames := map[uuid.UUID]string{}
	for _, shop := range shops {
		shopNames[shop.ID] = shop.Name
	}
	courierNames := map[uuid.UUID]string{}
	for _, courier := range courierTypes {
		courierNames[courier.ID] = courier.Name
	}
	categoryNames := map[uuid.UUID]string{}
	for _, category := range shopCategories {
		categoryNames[category.ID] = category.Name
	}

	snapshot := &DailySnapshot{
		Date:            date,
		OperationTotals: map[enums.OperationType]int64{},
		ActiveShops:     len(shops),
	}

	shopTotals := map[uuid.UUID]int64{}
	shopCourierTotals := map[uuid.UUID]map[uuid.UUID]int64{}
	courierTotals := map[uuid.UUID]int64{}
	courierShopTotals := map[uuid.UUID]map[uuid.UUID]int64{}

	for _, row := range rows {
		snapshot.GrandTotal += row.Quantity
		snapshot.OperationTotals[row.OperationType] += row.Quantity

		shopTotals[row.ShopID] += row.Quantity
		if shopCourierTotals[row.ShopID] == nil {
			shopCourierTotals[row.ShopID] = map[uuid.UUID]int64{}
		}
		shopCourierTotals[row.ShopID][row.CourierID] += row.Quantity

		courierTotals[row.CourierID] += row.Quantity
		if courierShopTotals[row.CourierID] == nil {
			courierShopTotals[row.CourierID] = map[uuid.UUID]int64{}
		}
		courierShopTotals[row.CourierID][row.ShopID] += row.Quantity
	}

	name := func(names map[uuid.UUID]string, id uuid.UUID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id.String()
	}

	for _, shop := range shops {
		row := ShopDailyRow{
			ShopID:   shop.ID,
			Name:     shop.Name,
			Couriers: []CourierTotal{},
		}
		if byCourier, ok := shopCourierTotals[shop.ID]; ok {
			row.HasData = true
			row.Total = shopTotals[shop.ID]
			for courierID, total := range byCourier {
				row.Couriers = append(row.Couriers, CourierTotal{
					CourierID: courierID,
					Name:      name(courierNames, courierID),
					Total:     total,
				})
			}
			sort.Slice(row.Couriers, func(i, j int) bool {
				if row.Couriers[i].Total != row.Couriers[j].Total {
					return row.Couriers[i].Total > row.Couriers[j].Total
				}
				return row.Couriers[i].Name < row.Couriers[j].Name
			})
			snapshot.ShopsWithData++
		}
		snapshot.Shops = append(snapshot.Shops, row)
	}
	sort.Slice(snapshot.Shops, func(i, j int) bool {
		a, b := snapshot.Shops[i], snapshot.Shops[j]
		if a.HasData != b.HasData {
			return a.HasData
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Name < b.Name
	})

	for courierID, total := range courierTotals {
		row := CourierDailyRow{
			CourierID: courierID,
			Name:      name(courierNames, courierID),
			Total:     total,
			Shops:     []ShopTotal{},
		}
		for shopID, shopTotal := range courierShopTotals[courierID] {
			row.Shops = append(row.Shops, ShopTotal{
				ShopID: shopID,
				Name:   name(shopNames, shopID),
				Total:  shopTotal,
			})
		}
		sort.Slice(row.Shops, func(i, j int) bool {
			if row.Shops[i].Total != row.Shops[j].Total {
				return row.Shops[i].Total > row.Shops[j].Total
			}
			return row.Shops[i].Name < row.Shops[j].Name
		})
		snapshot.Couriers = append(snapshot.Couriers, row)
	}
	sort.Slice(snapshot.Couriers, func(i, j int) bool {
		if snapshot.Couriers[i].Total != snapshot.Couriers[j].Total {
			return snapshot.Couriers[i].Total > snapshot.Couriers[j].Total
		}
		return snapshot.Couriers[i].Name < snapshot.Couriers[j].Name
	})

	snapshot.Categories = s.groupByCategory(shops, shopTotals, categoryNames)
	snapshot.CoverageRate = roundRate(snapshot.ShopsWithData, snapshot.ActiveShops)

	return snapshot, nil
}

const uncategorizedName = "uncategorized"

func (s *service) groupByCategory(shops []models.Shop, shopTotals map[uuid.UUID]int64, categoryNames map[uuid.UUID]string) []CategoryGroup {
	groups := map[string]*CategoryGroup{}
	for _, shop := range shops {
		var (
			groupKey string
			id       *uuid.UUID
			name     = uncategorizedName
		)
		if shop.CategoryID != nil {
			groupKey = shop.CategoryID.String()
			categoryID := *shop.CategoryID
			id = &categoryID
			if n, ok := categoryNames[categoryID]; ok {
				name = n
			} else {
				name = groupKey
			}
		}

		group, ok := groups[groupKey]
		if !ok {
			group = &CategoryGroup{CategoryID: id, Name: name, Shops: []ShopTotal{}}
			groups[groupKey] = group
		}
		total := shopTotals[shop.ID]
		group.Total += total
		group.Shops = append(group.Shops, ShopTotal{ShopID: shop.ID, Name: shop.Name, Total: total})
	}

	out := make([]CategoryGroup, 0, len(groups))
	for _, group := range groups {
		sort.Slice(group.Shops, func(i, j int) bool {
			if group.Shops[i].Total != group.Shops[j].Total {
				return group.Shops[i].Total > group.Shops[j].Total
			}
			return group.Shops[i].Name < group.Shops[j].Name
		})
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *service) Trend(ctx context.Context, query TrendQuery) (*TrendResult, error) {
	if !query.Dimension.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid trend dimension").
			WithDetails(map[string]string{"dimension": "must be one of date, shop, courier, category"})
	}
	if query.Days <= 0 {
		query.Days = s.cfg.TrendDefaultDays
	}
	if s.cfg.TrendMaxDays > 0 && query.Days > s.cfg.TrendMaxDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "day count out of range").
			WithDetails(map[string]string{"days": fmt.Sprintf("must not exceed %d", s.cfg.TrendMaxDays)})
	}
	if query.TopSeries <= 0 {
		query.TopSeries = s.cfg.TrendTopSeries
	}

	filters := map[string]string{
		"dimension": string(query.Dimension),
		"days":      fmt.Sprintf("%d", query.Days),
		"top":       fmt.Sprintf("%d", query.TopSeries),
	}
	if query.ShopID != nil {
		filters["shop_id"] = query.ShopID.String()
	}
	if query.CourierID != nil {
		filters["courier_id"] = query.CourierID.String()
	}
	if query.CategoryID != nil {
		filters["category_id"] = query.CategoryID.String()
	}
	key := rollupcache.BuildKey("trend", filters)

	return cached(ctx, s, "trend", key, s.cfg.RollupTTL, func() (*TrendResult, error) {
		return s.computeTrend(ctx, query)
	})
}

func (s *service) computeTrend(ctx context.Context, query TrendQuery) (*TrendResult, error) {
	span := s.clock.SpanEndingToday(query.Days)
	start, end := span[0], span[len(span)-1]

	rows, err := s.ledger.ListByDateRange(ctx, start, end, growth.Scope{
		ShopID:    query.ShopID,
		CourierID: query.CourierID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load ledger rows for range")
	}

	var secondary error

	shopsByID := map[uuid.UUID]models.Shop{}
	if query.Dimension == enums.TrendDimensionShop ||
		query.Dimension == enums.TrendDimensionCategory ||
		query.CategoryID != nil {
		shops, err := s.shops.ListActive(ctx)
		if err != nil {
			secondary = multierr.Append(secondary, err)
		}
		for _, shop := range shops {
			shopsByID[shop.ID] = shop
		}
	}
	courierNames := map[uuid.UUID]string{}
	if query.Dimension == enums.TrendDimensionCourier {
		courierTypes, err := s.couriers.ListActive(ctx)
		if err != nil {
			secondary = multierr.Append(secondary, err)
		}
		for _, courier := range courierTypes {
			courierNames[courier.ID] = courier.Name
		}
	}
	categoryNames := map[uuid.UUID]string{}
	if query.Dimension == enums.TrendDimensionCategory {
		shopCategories, err := s.categories.ListShopCategories(ctx)
		if err != nil {
			secondary = multierr.Append(secondary, err)
		}
		for _, category := range shopCategories {
			categoryNames[category.ID] = category.Name
		}
	}
	if secondary != nil {
		s.warn(ctx, "trend rollup degraded, catalog reads failed", secondary)
	}

	if query.CategoryID != nil {
		kept := rows[:0:0]
		for _, row := range rows {
			shop, ok := shopsByID[row.ShopID]
			if ok && shop.CategoryID != nil && *shop.CategoryID == *query.CategoryID {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	seriesByKey := map[string]*TrendSeries{}
	totalByDate := map[string]int64{}
	for _, row := range rows {
		key, name := s.seriesIdentity(query.Dimension, row, shopsByID, courierNames, categoryNames)

		series, ok := seriesByKey[key]
		if !ok {
			series = &TrendSeries{Key: key, Name: name, Data: map[string]int64{}}
			seriesByKey[key] = series
		}
		series.Data[row.OutputDate] += row.Quantity
		series.Total += row.Quantity
		totalByDate[row.OutputDate] += row.Quantity
	}

	result := &TrendResult{
		Dimension:   query.Dimension,
		Dates:       span,
		TotalByDate: totalByDate,
		Series:      make([]TrendSeries, 0, len(seriesByKey)),
	}
	for _, series := range seriesByKey {
		result.Series = append(result.Series, *series)
	}
	sort.Slice(result.Series, func(i, j int) bool {
		if result.Series[i].Total != result.Series[j].Total {
			return result.Series[i].Total > result.Series[j].Total
		}
		return result.Series[i].Key < result.Series[j].Key
	})
	// total_by_date covers the full filtered row set and survives truncation
	if len(result.Series) > query.TopSeries {
		result.Series = result.Series[:query.TopSeries]
	}
	return result, nil
}

func (s *service) seriesIdentity(
	dimension enums.TrendDimension,
	row models.LedgerEntry,
	shopsByID map[uuid.UUID]models.Shop,
	courierNames map[uuid.UUID]string,
	categoryNames map[uuid.UUID]string,
) (string, string) {
	switch dimension {
	case enums.TrendDimensionShop:
		key := row.ShopID.String()
		if shop, ok := shopsByID[row.ShopID]; ok {
			return key, shop.Name
		}
		return key, key
	case enums.TrendDimensionCourier:
		key := row.CourierID.String()
		if name, ok := courierNames[row.CourierID]; ok {
			return key, name
		}
		return key, key
	case enums.TrendDimensionCategory:
		shop, ok := shopsByID[row.ShopID]
		if !ok || shop.CategoryID == nil {
			return "uncategorized", uncategorizedName
		}
		key := shop.CategoryID.String()
		if name, ok := categoryNames[*shop.CategoryID]; ok {
			return key, name
		}
		return key, key
	default:
		return "date", "total"
	}
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	key := rollupcache.BuildKey("summary", map[string]string{
		"today":    s.clock.Today(),
		"tomorrow": s.clock.Tomorrow(),
	})
	return cached(ctx, s, "summary", key, s.cfg.SummaryTTL, func() (*Summary, error) {
		return s.computeSummary(ctx)
	})
}

func (s *service) computeSummary(ctx context.Context) (*Summary, error) {
	shops, err := s.shops.ListActive(ctx)
	if err != nil {
		s.warn(ctx, "summary degraded, shop catalog read failed", err)
		shops = nil
	}

	today, err := s.daySummary(ctx, s.clock.Today(), len(shops))
	if err != nil {
		return nil, err
	}
	tomorrow, err := s.daySummary(ctx, s.clock.Tomorrow(), len(shops))
	if err != nil {
		return nil, err
	}
	return &Summary{Today: *today, Tomorrow: *tomorrow}, nil
}

func (s *service) daySummary(ctx context.Context, date string, activeShops int) (*DaySummary, error) {
	rows, err := s.ledger.ListByDate(ctx, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load ledger rows for date")
	}

	summary := &DaySummary{Date: date}
	seen := map[uuid.UUID]bool{}
	for _, row := range rows {
		summary.Total += row.Quantity
		seen[row.ShopID] = true
	}
	summary.ShopsWithData = len(seen)
	summary.CoverageRate = roundRate(summary.ShopsWithData, activeShops)
	return summary, nil
}

func (s *service) OperationStats(ctx context.Context, scope growth.Scope) (*growth.Stats, error) {
	return s.calc.OperationStats(ctx, scope)
}

func (s *service) CourierHierarchy(ctx context.Context, parentID uuid.UUID) (*HierarchyResult, error) {
	if parentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier id required")
	}

	parent, err := s.couriers.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "courier type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load courier type")
	}

	children, err := s.couriers.Children(ctx, parentID)
	if err != nil {
		s.warn(ctx, "hierarchy degraded, children lookup failed", err)
		children = nil
	}

	own, err := s.ledger.ListByCouriers(ctx, []uuid.UUID{parentID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load parent ledger rows")
	}

	childIDs := make([]uuid.UUID, 0, len(children))
	for _, child := range children {
		childIDs = append(childIDs, child.ID)
	}
	childRows, err := s.ledger.ListByCouriers(ctx, childIDs)
	if err != nil {
		s.warn(ctx, "hierarchy degraded, child ledger read failed", err)
		childRows = []models.LedgerEntry{}
	}

	result := &HierarchyResult{
		ParentID:       parentID,
		ParentName:     parent.Name,
		Own:            own,
		Children:       childRows,
		Total:          append(append([]models.LedgerEntry{}, own...), childRows...),
		ChildTypeCount: len(children),
	}
	for _, row := range own {
		result.OwnNet += row.Quantity
	}
	for _, row := range childRows {
		result.ChildrenNet += row.Quantity
	}
	return result, nil
}

func (s *service) FlushCache(ctx context.Context) error {
	if err := s.cache.Flush(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "flush rollup cache")
	}
	s.cacheMet.IncFlush()
	if s.logg != nil {
		s.logg.Info(ctx, "rollup cache flushed")
	}
	return nil
}
