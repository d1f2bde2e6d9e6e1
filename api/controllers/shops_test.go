package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/packtally/packtally-backend/internal/shops"
	"github.com/packtally/packtally-backend/pkg/db/models"
	pkgerrors "github.com/packtally/packtally-backend/pkg/errors"
)

type testShopService struct {
	createFn  func(ctx context.Context, input shops.CreateShopInput) (*models.Shop, error)
	updateFn  func(ctx context.Context, id uuid.UUID, input shops.UpdateShopInput) (*models.Shop, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	listFn    func(ctx context.Context, activeOnly bool) ([]models.Shop, error)
	reorderFn func(ctx context.Context, items []shops.ReorderItem) error
}

func (s *testShopService) Create(ctx context.Context, input shops.CreateShopInput) (*models.Shop, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.Shop{}, nil
}

func (s *testShopService) Get(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	return &models.Shop{ID: id}, nil
}

func (s *testShopService) Update(ctx context.Context, id uuid.UUID, input shops.UpdateShopInput) (*models.Shop, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, input)
	}
	return &models.Shop{ID: id}, nil
}

func (s *testShopService) Delete(ctx context.Context, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *testShopService) List(ctx context.Context, activeOnly bool) ([]models.Shop, error) {
	if s.listFn != nil {
		return s.listFn(ctx, activeOnly)
	}
	return nil, nil
}

func (s *testShopService) Reorder(ctx context.Context, items []shops.ReorderItem) error {
	if s.reorderFn != nil {
		return s.reorderFn(ctx, items)
	}
	return nil
}

func TestShopCreateSuccess(t *testing.T) {
	svc := &testShopService{
		createFn: func(ctx context.Context, input shops.CreateShopInput) (*models.Shop, error) {
			if input.Name != "North Hub" {
				t.Fatalf("unexpected name %q", input.Name)
			}
			return &models.Shop{ID: uuid.New(), Name: input.Name}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shops", strings.NewReader(`{"name":"  North Hub  ","sort_order":3}`))
	resp := httptest.NewRecorder()
	ShopCreate(svc, testLogger())(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestShopCreateRequiresName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shops", strings.NewReader(`{"sort_order":1}`))
	resp := httptest.NewRecorder()
	ShopCreate(&testShopService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestShopListActiveFlag(t *testing.T) {
	var gotActive bool
	svc := &testShopService{
		listFn: func(ctx context.Context, activeOnly bool) ([]models.Shop, error) {
			gotActive = activeOnly
			return []models.Shop{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shops?active=true", nil)
	resp := httptest.NewRecorder()
	ShopList(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !gotActive {
		t.Fatal("expected activeOnly true")
	}
}

func TestShopReorderRequiresItems(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shops/reorder", strings.NewReader(`{"items":[]}`))
	resp := httptest.NewRecorder()
	ShopReorder(&testShopService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestShopReorderPassesItems(t *testing.T) {
	id := uuid.New()
	svc := &testShopService{
		reorderFn: func(ctx context.Context, items []shops.ReorderItem) error {
			if len(items) != 1 || items[0].ID != id || items[0].SortOrder != 4 {
				t.Fatalf("unexpected items %v", items)
			}
			return nil
		},
	}

	body := `{"items":[{"id":"` + id.String() + `","sort_order":4}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shops/reorder", strings.NewReader(body))
	resp := httptest.NewRecorder()
	ShopReorder(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestShopDeleteConflictPassthrough(t *testing.T) {
	svc := &testShopService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeConflict, "shop has ledger entries")
		},
	}

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/shops/"+id, nil)
	req = addRouteParam(req, "shopId", id)
	resp := httptest.NewRecorder()
	ShopDelete(svc, testLogger())(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
