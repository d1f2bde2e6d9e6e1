package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/packtally/packtally-backend/internal/categories"
	"github.com/packtally/packtally-backend/internal/couriers"
	"github.com/packtally/packtally-backend/internal/dashboard"
	"github.com/packtally/packtally-backend/internal/growth"
	"github.com/packtally/packtally-backend/internal/ledger"
	"github.com/packtally/packtally-backend/pkg/config"
	"github.com/packtally/packtally-backend/pkg/db/models"
	"github.com/packtally/packtally-backend/pkg/logger"
	"github.com/packtally/packtally-backend/pkg/metrics"
	shopsvc "github.com/packtally/packtally-backend/internal/shops"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubLedgerService struct{}

func (stubLedgerService) Add(ctx context.Context, input ledger.AddInput) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{ID: uuid.New(), Quantity: input.Quantity}, nil
}

func (stubLedgerService) Subtract(ctx context.Context, input ledger.SubtractInput) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{ID: uuid.New()}, nil
}

func (stubLedgerService) Merge(ctx context.Context, input ledger.MergeInput) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{ID: uuid.New()}, nil
}

func (stubLedgerService) Edit(ctx context.Context, id uuid.UUID, input ledger.EditInput) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{ID: id}, nil
}

func (stubLedgerService) Remove(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubLedgerService) Get(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{ID: id}, nil
}

func (stubLedgerService) List(ctx context.Context, filter ledger.ListFilter) (*ledger.ListResult, error) {
	return &ledger.ListResult{}, nil
}

type stubDashboardService struct{}

func (stubDashboardService) Daily(ctx context.Context, date string, categoryID *uuid.UUID) (*dashboard.DailySnapshot, error) {
	return &dashboard.DailySnapshot{Date: date}, nil
}

func (stubDashboardService) Trend(ctx context.Context, query dashboard.TrendQuery) (*dashboard.TrendResult, error) {
	return &dashboard.TrendResult{}, nil
}

func (stubDashboardService) Summary(ctx context.Context) (*dashboard.Summary, error) {
	return &dashboard.Summary{}, nil
}

func (stubDashboardService) OperationStats(ctx context.Context, scope growth.Scope) (*growth.Stats, error) {
	return &growth.Stats{}, nil
}

func (stubDashboardService) CourierHierarchy(ctx context.Context, parentID uuid.UUID) (*dashboard.HierarchyResult, error) {
	return &dashboard.HierarchyResult{ParentID: parentID}, nil
}

func (stubDashboardService) FlushCache(ctx context.Context) error {
	return nil
}

type stubShopService struct{}

func (stubShopService) Create(ctx context.Context, input shopsvc.CreateShopInput) (*models.Shop, error) {
	return &models.Shop{ID: uuid.New(), Name: input.Name}, nil
}

func (stubShopService) Get(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	return &models.Shop{ID: id}, nil
}

func (stubShopService) Update(ctx context.Context, id uuid.UUID, input shopsvc.UpdateShopInput) (*models.Shop, error) {
	return &models.Shop{ID: id}, nil
}

func (stubShopService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubShopService) List(ctx context.Context, activeOnly bool) ([]models.Shop, error) {
	return []models.Shop{}, nil
}

func (stubShopService) Reorder(ctx context.Context, items []shopsvc.ReorderItem) error {
	return nil
}

type stubCourierService struct{}

func (stubCourierService) Create(ctx context.Context, input couriers.CreateCourierInput) (*models.CourierType, error) {
	return &models.CourierType{ID: uuid.New(), Name: input.Name}, nil
}

func (stubCourierService) Get(ctx context.Context, id uuid.UUID) (*models.CourierType, error) {
	return &models.CourierType{ID: id}, nil
}

func (stubCourierService) Update(ctx context.Context, id uuid.UUID, input couriers.UpdateCourierInput) (*models.CourierType, error) {
	return &models.CourierType{ID: id}, nil
}

func (stubCourierService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCourierService) List(ctx context.Context, activeOnly bool) ([]models.CourierType, error) {
	return []models.CourierType{}, nil
}

func (stubCourierService) Children(ctx context.Context, parentID uuid.UUID) ([]models.CourierType, error) {
	return []models.CourierType{}, nil
}

func (stubCourierService) Reorder(ctx context.Context, items []couriers.ReorderItem) error {
	return nil
}

type stubCategoryService struct{}

func (stubCategoryService) CreateShopCategory(ctx context.Context, input categories.CategoryInput) (*models.ShopCategory, error) {
	return &models.ShopCategory{ID: uuid.New(), Name: input.Name}, nil
}

func (stubCategoryService) UpdateShopCategory(ctx context.Context, id uuid.UUID, input categories.CategoryInput) (*models.ShopCategory, error) {
	return &models.ShopCategory{ID: id, Name: input.Name}, nil
}

func (stubCategoryService) DeleteShopCategory(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCategoryService) ListShopCategories(ctx context.Context) ([]models.ShopCategory, error) {
	return []models.ShopCategory{}, nil
}

func (stubCategoryService) ReorderShopCategories(ctx context.Context, items []categories.ReorderItem) error {
	return nil
}

func (stubCategoryService) CreateCourierCategory(ctx context.Context, input categories.CategoryInput) (*models.CourierCategory, error) {
	return &models.CourierCategory{ID: uuid.New(), Name: input.Name}, nil
}

func (stubCategoryService) UpdateCourierCategory(ctx context.Context, id uuid.UUID, input categories.CategoryInput) (*models.CourierCategory, error) {
	return &models.CourierCategory{ID: id, Name: input.Name}, nil
}

func (stubCategoryService) DeleteCourierCategory(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCategoryService) ListCourierCategories(ctx context.Context) ([]models.CourierCategory, error) {
	return []models.CourierCategory{}, nil
}

func (stubCategoryService) ReorderCourierCategories(ctx context.Context, items []categories.ReorderItem) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter() http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()
	return NewRouter(
		testConfig(),
		logg,
		stubPinger{},
		stubPinger{},
		reg,
		metrics.NewHTTPMetrics(reg),
		stubLedgerService{},
		stubDashboardService{},
		stubShopService{},
		stubCourierService{},
		stubCategoryService{},
	)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
		if resp.Header().Get("X-PackTally-Env") != "test" {
			t.Fatalf("%s: missing env header", path)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestLedgerRoutesWired(t *testing.T) {
	router := newTestRouter()

	body := `{"shop_id":"` + uuid.NewString() + `","courier_id":"` + uuid.NewString() + `","output_date":"2026-09-01","quantity":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("add: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/ledger/entries", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/ledger/entries/"+uuid.NewString(), nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", resp.Code)
	}
}

func TestDashboardRoutesWired(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/dashboard/daily?date=2026-09-01"},
		{http.MethodGet, "/api/v1/dashboard/trend"},
		{http.MethodGet, "/api/v1/dashboard/summary"},
		{http.MethodGet, "/api/v1/dashboard/operations"},
		{http.MethodGet, "/api/v1/dashboard/couriers/" + uuid.NewString() + "/hierarchy"},
		{http.MethodPost, "/api/v1/dashboard/cache/flush"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200 got %d: %s", tc.method, tc.path, resp.Code, resp.Body.String())
		}
	}
}

func TestCatalogRoutesWired(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shops", strings.NewReader(`{"name":"Depot"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("shop create: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/couriers/"+uuid.NewString()+"/children", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("courier children: expected 200 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/courier-categories", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("courier categories: expected 200 got %d", resp.Code)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}
