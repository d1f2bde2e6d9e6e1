// Package shops holds the shop catalog: the active-shop frame every daily
// snapshot is measured against.
package shops

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

// CreateShopInput carries the fields for a new shop.
type CreateShopInput struct {
	Name       string
	CategoryID *uuid.UUID
	Active     *bool
	SortOrder  int
	Notes      *string
}

// UpdateShopInput mutates only the provided fields.
type UpdateShopInput struct {
	Name       *string
	CategoryID *uuid.UUID
	Active     *bool
	SortOrder  *int
	Notes      *string
}

// ReorderItem assigns one shop its new sort position.
type ReorderItem struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	SortOrder int       `json:"sort_order"`
}

// Service exposes shop catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateShopInput) (*models.Shop, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateShopInput) (*models.Shop, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]models.Shop, error)
	Reorder(ctx context.Context, items []ReorderItem) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires a shop service with the provided repository and
// transaction runner.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateShopInput) (*models.Shop, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name required").
			WithDetails(map[string]string{"name": "must not be empty"})
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	shop := &models.Shop{
		ID:         uuid.New(),
		Name:       name,
		CategoryID: input.CategoryID,
		Active:     active,
		SortOrder:  input.SortOrder,
		Notes:      input.Notes,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "create shop")
	}
	return shop, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load shop")
	}
	return shop, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateShopInput) (*models.Shop, error) {
	shop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name required").
				WithDetails(map[string]string{"name": "must not be empty"})
		}
		shop.Name = name
	}
	if input.CategoryID != nil {
		shop.CategoryID = input.CategoryID
	}
	if input.Active != nil {
		shop.Active = *input.Active
	}
	if input.SortOrder != nil {
		shop.SortOrder = *input.SortOrder
	}
	if input.Notes != nil {
		shop.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "update shop")
	}
	return shop, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "delete shop")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Shop, error) {
	shops, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list shops")
	}
	return shops, nil
}

// Reorder applies every sort assignment in one transaction: either all shops
// move or none do.
func (s *service) Reorder(ctx context.Context, items []ReorderItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no reorder items provided")
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "reorder item missing shop id")
		}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, item := range items {
			affected, err := repo.UpdateSortOrder(ctx, item.ID, item.SortOrder)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStore, err, "update shop sort order")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found in reorder batch")
			}
		}
		return nil
	})
}
