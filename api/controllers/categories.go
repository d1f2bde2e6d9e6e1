package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/packtally/packtally-backend/api/responses"
	"github.com/packtally/packtally-backend/api/validators"
	"github.com/packtally/packtally-backend/internal/categories"
	pkgerrors "github.com/packtally/packtally-backend/pkg/errors"
	"github.com/packtally/packtally-backend/pkg/logger"
)

type categoryRequest struct {
	Name      string `json:"name" validate:"required,min=1"`
	SortOrder int    `json:"sort_order"`
}

func (req categoryRequest) toInput() categories.CategoryInput {
	return categories.CategoryInput{
		Name:      strings.TrimSpace(req.Name),
		SortOrder: req.SortOrder,
	}
}

type categoryReorderRequest struct {
	Items []categories.ReorderItem `json:"items" validate:"required,min=1,dive"`
}

func categoryCreate(svc categories.Service, logg *logger.Logger, create func(context.Context, categories.CategoryInput) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func categoryUpdate(svc categories.Service, logg *logger.Logger, update func(context.Context, uuid.UUID, categories.CategoryInput) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, category)
	}
}

func categoryDelete(svc categories.Service, logg *logger.Logger, remove func(context.Context, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := remove(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func categoryReorder(svc categories.Service, logg *logger.Logger, reorder func(context.Context, []categories.ReorderItem) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		var payload categoryReorderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := reorder(r.Context(), payload.Items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func ShopCategoryCreate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return categoryCreate(svc, logg, func(ctx context.Context, input categories.CategoryInput) (any, error) {
		return svc.CreateShopCategory(ctx, input)
	})
}

func ShopCategoryUpdate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return categoryUpdate(svc, logg, func(ctx context.Context, id uuid.UUID, input categories.CategoryInput) (any, error) {
		return svc.UpdateShopCategory(ctx, id, input)
	})
}

func ShopCategoryDelete(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return categoryDelete(svc, logg, func(ctx context.Context, id uuid.UUID) error {
		return svc.DeleteShopCategory(ctx, id)
	})
}

func ShopCategoryList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		list, err := svc.ListShopCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func ShopCategoryReorder(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return categoryReorder(svc, logg, func(ctx context.Context, items []categories.ReorderItem) error {
		return svc.ReorderShopCategories(ctx, items)
	})
}

func CourierCategoryCreate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return categoryCreate(svc, logg, func(ctx context.Context, input categories.CategoryInput) (any, error) {
		return svc.CreateCourierCategory(ctx, input)
	})
}

func CourierCategoryUpdate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return categoryUpdate(svc, logg, func(ctx context.Context, id uuid.UUID, input categories.CategoryInput) (any, error) {
		return svc.UpdateCourierCategory(ctx, id, input)
	})
}

func CourierCategoryDelete(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return categoryDelete(svc, logg, func(ctx context.Context, id uuid.UUID) error {
		return svc.DeleteCourierCategory(ctx, id)
	})
}

func CourierCategoryList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		list, err := svc.ListCourierCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func CourierCategoryReorder(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return categoryReorder(svc, logg, func(ctx context.Context, items []categories.ReorderItem) error {
		return svc.ReorderCourierCategories(ctx, items)
	})
}
