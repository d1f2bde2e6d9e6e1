package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/packtally/packtally-backend/api/responses"
	"github.com/packtally/packtally-backend/api/validators"
	"github.com/packtally/packtally-backend/internal/ledger"
	pkgerrors "github.com/packtally/packtally-backend/pkg/errors"
	"github.com/packtally/packtally-backend/pkg/logger"
	"github.com/packtally/packtally-backend/pkg/pagination"
)

type ledgerScopeRequest struct {
	ShopID     uuid.UUID `json:"shop_id" validate:"required"`
	CourierID  uuid.UUID `json:"courier_id" validate:"required"`
	OutputDate string    `json:"output_date" validate:"required"`
}

type ledgerAddRequest struct {
	ledgerScopeRequest
	Quantity int64   `json:"quantity" validate:"required,min=1"`
	Notes    *string `json:"notes,omitempty"`
}

type ledgerSubtractRequest struct {
	ledgerScopeRequest
	Quantity int64   `json:"quantity" validate:"required,min=1"`
	Notes    *string `json:"notes,omitempty"`
}

type ledgerMergeRequest struct {
	ledgerScopeRequest
	// pointer so zero survives the required check: merge takes any signed
	// quantity, zero included.
	Quantity        *int64     `json:"quantity" validate:"required"`
	MergeNote       *string    `json:"merge_note,omitempty"`
	RelatedRecordID *uuid.UUID `json:"related_record_id,omitempty"`
}

type ledgerEditRequest struct {
	Quantity *int64  `json:"quantity,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

func LedgerAdd(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload ledgerAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Add(r.Context(), ledger.AddInput{
			ShopID:     payload.ShopID,
			CourierID:  payload.CourierID,
			OutputDate: payload.OutputDate,
			Quantity:   payload.Quantity,
			Notes:      payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func LedgerSubtract(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload ledgerSubtractRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Subtract(r.Context(), ledger.SubtractInput{
			ShopID:     payload.ShopID,
			CourierID:  payload.CourierID,
			OutputDate: payload.OutputDate,
			Quantity:   payload.Quantity,
			Notes:      payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func LedgerMerge(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload ledgerMergeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Merge(r.Context(), ledger.MergeInput{
			ShopID:          payload.ShopID,
			CourierID:       payload.CourierID,
			OutputDate:      payload.OutputDate,
			Quantity:        *payload.Quantity,
			MergeNote:       payload.MergeNote,
			RelatedRecordID: payload.RelatedRecordID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func LedgerEdit(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ledgerEditRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Edit(r.Context(), id, ledger.EditInput{
			Quantity: payload.Quantity,
			Notes:    payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}

func LedgerRemove(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func LedgerGet(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}

func LedgerList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		shopID, err := validators.ParseQueryUUID(r, "shop_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courierID, err := validators.ParseQueryUUID(r, "courier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dateStart, err := validators.ParseQueryDate(r, "date_start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dateEnd, err := validators.ParseQueryDate(r, "date_end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), ledger.ListFilter{
			ShopID:    shopID,
			CourierID: courierID,
			DateStart: dateStart,
			DateEnd:   dateEnd,
			Params: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
