package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/packtally/packtally-backend/api/responses"
	"github.com/packtally/packtally-backend/api/validators"
	"github.com/packtally/packtally-backend/internal/couriers"
	pkgerrors "github.com/packtally/packtally-backend/pkg/errors"
	"github.com/packtally/packtally-backend/pkg/logger"
)

type courierCreateRequest struct {
	Name       string     `json:"name" validate:"required,min=1"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	Active     *bool      `json:"active,omitempty"`
	SortOrder  int        `json:"sort_order"`
}

type courierUpdateRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	ClearParent bool       `json:"clear_parent,omitempty"`
	Active      *bool      `json:"active,omitempty"`
	SortOrder   *int       `json:"sort_order,omitempty"`
}

type courierReorderRequest struct {
	Items []couriers.ReorderItem `json:"items" validate:"required,min=1,dive"`
}

func CourierCreate(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier service unavailable"))
			return
		}

		var payload courierCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courier, err := svc.Create(r.Context(), couriers.CreateCourierInput{
			Name:       strings.TrimSpace(payload.Name),
			CategoryID: payload.CategoryID,
			ParentID:   payload.ParentID,
			Active:     payload.Active,
			SortOrder:  payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, courier)
	}
}

func CourierGet(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "courierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courier, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, courier)
	}
}

func CourierUpdate(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "courierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload courierUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courier, err := svc.Update(r.Context(), id, couriers.UpdateCourierInput{
			Name:        payload.Name,
			CategoryID:  payload.CategoryID,
			ParentID:    payload.ParentID,
			ClearParent: payload.ClearParent,
			Active:      payload.Active,
			SortOrder:   payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, courier)
	}
}

func CourierDelete(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "courierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func CourierList(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier service unavailable"))
			return
		}

		activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")

		list, err := svc.List(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func CourierChildren(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "courierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		children, err := svc.Children(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, children)
	}
}

func CourierReorder(svc couriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier service unavailable"))
			return
		}

		var payload courierReorderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reorder(r.Context(), payload.Items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
