// Package categories holds the shop and courier category catalogs: named,
// sortable buckets. A category cannot be deleted while any catalog row still
// references it.
package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packtally/packtally-backend/pkg/db/models"
	pkgerrors "github.com/packtally/packtally-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CategoryInput carries the mutable fields of either category kind.
type CategoryInput struct {
	Name      string
	SortOrder int
}

// ReorderItem assigns one category its new sort position.
type ReorderItem struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	SortOrder int       `json:"sort_order"`
}

// Service exposes both category catalogs.
type Service interface {
	CreateShopCategory(ctx context.Context, input CategoryInput) (*models.ShopCategory, error)
	UpdateShopCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.ShopCategory, error)
	DeleteShopCategory(ctx context.Context, id uuid.UUID) error
	ListShopCategories(ctx context.Context) ([]models.ShopCategory, error)
	ReorderShopCategories(ctx context.Context, items []ReorderItem) error

	CreateCourierCategory(ctx context.Context, input CategoryInput) (*models.CourierCategory, error)
	UpdateCourierCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.CourierCategory, error)
	DeleteCourierCategory(ctx context.Context, id uuid.UUID) error
	ListCourierCategories(ctx context.Context) ([]models.CourierCategory, error)
	ReorderCourierCategories(ctx context.Context, items []ReorderItem) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires a category service with the provided repository and
// transaction runner.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func validateName(input CategoryInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "category name required").
			WithDetails(map[string]string{"name": "must not be empty"})
	}
	return name, nil
}

func (s *service) CreateShopCategory(ctx context.Context, input CategoryInput) (*models.ShopCategory, error) {
	name, err := validateName(input)
	if err != nil {
		return nil, err
	}
	category := &models.ShopCategory{
		ID:        uuid.New(),
		Name:      name,
		SortOrder: input.SortOrder,
	}
	if err := s.repo.CreateShopCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "create shop category")
	}
	return category, nil
}

func (s *service) UpdateShopCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.ShopCategory, error) {
	name, err := validateName(input)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.FindShopCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load shop category")
	}
	category.Name = name
	category.SortOrder = input.SortOrder
	if err := s.repo.UpdateShopCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "update shop category")
	}
	return category, nil
}

func (s *service) DeleteShopCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	referenced, err := s.repo.CountShopsInCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "count category references")
	}
	if referenced > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category is still referenced by shops").
			WithDetails(map[string]int64{"referencing_shops": referenced})
	}
	affected, err := s.repo.DeleteShopCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "delete shop category")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop category not found")
	}
	return nil
}

func (s *service) ListShopCategories(ctx context.Context) ([]models.ShopCategory, error) {
	categories, err := s.repo.ListShopCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list shop categories")
	}
	return categories, nil
}

func (s *service) ReorderShopCategories(ctx context.Context, items []ReorderItem) error {
	return s.reorder(ctx, items, func(repo Repository, id uuid.UUID, sortOrder int) (int64, error) {
		return repo.UpdateShopCategorySortOrder(ctx, id, sortOrder)
	})
}

func (s *service) CreateCourierCategory(ctx context.Context, input CategoryInput) (*models.CourierCategory, error) {
	name, err := validateName(input)
	if err != nil {
		return nil, err
	}
	category := &models.CourierCategory{
		ID:        uuid.New(),
		Name:      name,
		SortOrder: input.SortOrder,
	}
	if err := s.repo.CreateCourierCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "create courier category")
	}
	return category, nil
}

func (s *service) UpdateCourierCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.CourierCategory, error) {
	name, err := validateName(input)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.FindCourierCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "courier category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load courier category")
	}
	category.Name = name
	category.SortOrder = input.SortOrder
	if err := s.repo.UpdateCourierCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "update courier category")
	}
	return category, nil
}

func (s *service) DeleteCourierCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	referenced, err := s.repo.CountCouriersInCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "count category references")
	}
	if referenced > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category is still referenced by courier types").
			WithDetails(map[string]int64{"referencing_couriers": referenced})
	}
	affected, err := s.repo.DeleteCourierCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "delete courier category")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "courier category not found")
	}
	return nil
}

func (s *service) ListCourierCategories(ctx context.Context) ([]models.CourierCategory, error) {
	categories, err := s.repo.ListCourierCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list courier categories")
	}
	return categories, nil
}

func (s *service) ReorderCourierCategories(ctx context.Context, items []ReorderItem) error {
	return s.reorder(ctx, items, func(repo Repository, id uuid.UUID, sortOrder int) (int64, error) {
		return repo.UpdateCourierCategorySortOrder(ctx, id, sortOrder)
	})
}

func (s *service) reorder(ctx context.Context, items []ReorderItem, apply func(Repository, uuid.UUID, int) (int64, error)) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no reorder items provided")
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "reorder item missing category id")
		}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, item := range items {
			affected, err := apply(repo, item.ID, item.SortOrder)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStore, err, "update category sort order")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found in reorder batch")
			}
		}
		return nil
	})
}
