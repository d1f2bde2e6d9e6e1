package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/packtally/packtally-backend/internal/ledger"
	"github.com/packtally/packtally-backend/pkg/db/models"
	pkgerrors "github.com/packtally/packtally-backend/pkg/errors"
	"github.com/packtally/packtally-backend/pkg/logger"
)

type testLedgerService struct {
	addFn      func(ctx context.Context, input ledger.AddInput) (*models.LedgerEntry, error)
	subtractFn func(ctx context.Context, input ledger.SubtractInput) (*models.LedgerEntry, error)
	mergeFn    func(ctx context.Context, input ledger.MergeInput) (*models.LedgerEntry, error)
	editFn     func(ctx context.Context, id uuid.UUID, input ledger.EditInput) (*models.LedgerEntry, error)
	removeFn   func(ctx context.Context, id uuid.UUID) error
	getFn      func(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error)
	listFn     func(ctx context.Context, filter ledger.ListFilter) (*ledger.ListResult, error)
}

func (s *testLedgerService) Add(ctx context.Context, input ledger.AddInput) (*models.LedgerEntry, error) {
	if s.addFn != nil {
		return s.addFn(ctx, input)
	}
	return &models.LedgerEntry{}, nil
}

func (s *testLedgerService) Subtract(ctx context.Context, input ledger.SubtractInput) (*models.LedgerEntry, error) {
	if s.subtractFn != nil {
		return s.subtractFn(ctx, input)
	}
	return &models.LedgerEntry{}, nil
}

func (s *testLedgerService) Merge(ctx context.Context, input ledger.MergeInput) (*models.LedgerEntry, error) {
	if s.mergeFn != nil {
		return s.mergeFn(ctx, input)
	}
	return &models.LedgerEntry{}, nil
}

func (s *testLedgerService) Edit(ctx context.Context, id uuid.UUID, input ledger.EditInput) (*models.LedgerEntry, error) {
	if s.editFn != nil {
		return s.editFn(ctx, id, input)
	}
	return &models.LedgerEntry{}, nil
}

func (s *testLedgerService) Remove(ctx context.Context, id uuid.UUID) error {
	if s.removeFn != nil {
		return s.removeFn(ctx, id)
	}
	return nil
}

func (s *testLedgerService) Get(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &models.LedgerEntry{}, nil
}

func (s *testLedgerService) List(ctx context.Context, filter ledger.ListFilter) (*ledger.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return &ledger.ListResult{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestLedgerAddSuccess(t *testing.T) {
	shopID := uuid.New()
	courierID := uuid.New()
	called := false
	svc := &testLedgerService{
		addFn: func(ctx context.Context, input ledger.AddInput) (*models.LedgerEntry, error) {
			called = true
			if input.ShopID != shopID {
				t.Fatalf("unexpected shop %s", input.ShopID)
			}
			if input.Quantity != 150 {
				t.Fatalf("unexpected quantity %d", input.Quantity)
			}
			return &models.LedgerEntry{ID: uuid.New(), Quantity: input.Quantity}, nil
		},
	}

	body := `{"shop_id":"` + shopID.String() + `","courier_id":"` + courierID.String() + `","output_date":"2026-09-01","quantity":150}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries", strings.NewReader(body))
	resp := httptest.NewRecorder()
	LedgerAdd(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestLedgerAddRejectsMissingFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries", strings.NewReader(`{"quantity":10}`))
	resp := httptest.NewRecorder()
	LedgerAdd(&testLedgerService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if _, ok := envelope.Error.Details["shop_id"]; !ok {
		t.Fatalf("expected shop_id detail, got %v", envelope.Error.Details)
	}
}

func TestLedgerAddRejectsUnknownFields(t *testing.T) {
	body := `{"shop_id":"` + uuid.NewString() + `","courier_id":"` + uuid.NewString() + `","output_date":"2026-09-01","quantity":5,"bogus":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries", strings.NewReader(body))
	resp := httptest.NewRecorder()
	LedgerAdd(&testLedgerService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestLedgerSubtractInsufficientQuantity(t *testing.T) {
	svc := &testLedgerService{
		subtractFn: func(ctx context.Context, input ledger.SubtractInput) (*models.LedgerEntry, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientQuantity, "subtract exceeds current net quantity").WithDetails(map[string]int64{"remaining": 70})
		},
	}

	body := `{"shop_id":"` + uuid.NewString() + `","courier_id":"` + uuid.NewString() + `","output_date":"2026-09-01","quantity":100}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries/subtract", strings.NewReader(body))
	resp := httptest.NewRecorder()
	LedgerSubtract(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string           `json:"code"`
			Message string           `json:"message"`
			Details map[string]int64 `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientQuantity) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if envelope.Error.Details["remaining"] != 70 {
		t.Fatalf("expected remaining=70 got %v", envelope.Error.Details)
	}
}

func TestLedgerMergeAllowsNegativeQuantity(t *testing.T) {
	var got int64
	svc := &testLedgerService{
		mergeFn: func(ctx context.Context, input ledger.MergeInput) (*models.LedgerEntry, error) {
			got = input.Quantity
			return &models.LedgerEntry{ID: uuid.New(), Quantity: input.Quantity}, nil
		},
	}

	body := `{"shop_id":"` + uuid.NewString() + `","courier_id":"` + uuid.NewString() + `","output_date":"2026-09-01","quantity":-20,"merge_note":"consolidated"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries/merge", strings.NewReader(body))
	resp := httptest.NewRecorder()
	LedgerMerge(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got != -20 {
		t.Fatalf("expected quantity -20 got %d", got)
	}
}

func TestLedgerMergeAllowsZeroQuantity(t *testing.T) {
	called := false
	svc := &testLedgerService{
		mergeFn: func(ctx context.Context, input ledger.MergeInput) (*models.LedgerEntry, error) {
			called = true
			if input.Quantity != 0 {
				t.Fatalf("expected quantity 0 got %d", input.Quantity)
			}
			return &models.LedgerEntry{ID: uuid.New()}, nil
		},
	}

	body := `{"shop_id":"` + uuid.NewString() + `","courier_id":"` + uuid.NewString() + `","output_date":"2026-09-01","quantity":0,"merge_note":"stocktake"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries/merge", strings.NewReader(body))
	resp := httptest.NewRecorder()
	LedgerMerge(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected merge to be called")
	}
}

func TestLedgerMergeRejectsMissingQuantity(t *testing.T) {
	body := `{"shop_id":"` + uuid.NewString() + `","courier_id":"` + uuid.NewString() + `","output_date":"2026-09-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/entries/merge", strings.NewReader(body))
	resp := httptest.NewRecorder()
	LedgerMerge(&testLedgerService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestLedgerEditInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/ledger/entries/nope", strings.NewReader(`{"quantity":5}`))
	req = addRouteParam(req, "entryId", "nope")
	resp := httptest.NewRecorder()
	LedgerEdit(&testLedgerService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestLedgerRemoveNotFound(t *testing.T) {
	id := uuid.New()
	svc := &testLedgerService{
		removeFn: func(ctx context.Context, got uuid.UUID) error {
			if got != id {
				t.Fatalf("unexpected id %s", got)
			}
			return pkgerrors.New(pkgerrors.CodeNotFound, "entry not found")
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/ledger/entries/"+id.String(), nil)
	req = addRouteParam(req, "entryId", id.String())
	resp := httptest.NewRecorder()
	LedgerRemove(svc, testLogger())(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestLedgerListPassesFilters(t *testing.T) {
	shopID := uuid.New()
	svc := &testLedgerService{
		listFn: func(ctx context.Context, filter ledger.ListFilter) (*ledger.ListResult, error) {
			if filter.ShopID == nil || *filter.ShopID != shopID {
				t.Fatalf("unexpected shop filter %v", filter.ShopID)
			}
			if filter.DateStart != "2026-08-01" || filter.DateEnd != "2026-08-31" {
				t.Fatalf("unexpected range %s..%s", filter.DateStart, filter.DateEnd)
			}
			if filter.Limit != 25 {
				t.Fatalf("unexpected limit %d", filter.Limit)
			}
			return &ledger.ListResult{}, nil
		},
	}

	target := "/api/v1/ledger/entries?shop_id=" + shopID.String() + "&date_start=2026-08-01&date_end=2026-08-31&limit=25"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp := httptest.NewRecorder()
	LedgerList(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLedgerListRejectsBadDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/entries?date_start=08-01-2026", nil)
	resp := httptest.NewRecorder()
	LedgerList(&testLedgerService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
