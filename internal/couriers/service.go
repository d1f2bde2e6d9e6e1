// Package couriers holds the courier type catalog. The hierarchy is at most
// one level deep: a type with a parent may never itself become a parent.
package couriers

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

// CreateCourierInput carries the fields for a new courier type.
type CreateCourierInput struct {
	Name       string
	CategoryID *uuid.UUID
	ParentID   *uuid.UUID
	Active     *bool
	SortOrder  int
}

// UpdateCourierInput mutates only the provided fields. ClearParent detaches
// the type from its parent.
type UpdateCourierInput struct {
	Name        *string
	CategoryID  *uuid.UUID
	ParentID    *uuid.UUID
	ClearParent bool
	Active      *bool
	SortOrder   *int
}

// ReorderItem assigns one courier type its new sort position.
type ReorderItem struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	SortOrder int       `json:"sort_order"`
}

// Service exposes courier catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateCourierInput) (*models.CourierType, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CourierType, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCourierInput) (*models.CourierType, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]models.CourierType, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]models.CourierType, error)
	Reorder(ctx context.Context, items []ReorderItem) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires a courier service with the provided repository and
// transaction runner.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("courier repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// validateParent rejects grandchildren: the proposed parent must exist and
// must not itself have a parent.
func (s *service) validateParent(ctx context.Context, parentID uuid.UUID) error {
	parent, err := s.repo.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "parent courier type not found").
				WithDetails(map[string]string{"parent_id": "unknown courier type"})
		}
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "load parent courier type")
	}
	if parent.ParentID != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "hierarchy is limited to one level").
			WithDetails(map[string]string{"parent_id": "proposed parent already has a parent"})
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateCourierInput) (*models.CourierType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier name required").
			WithDetails(map[string]string{"name": "must not be empty"})
	}
	if input.ParentID != nil {
		if err := s.validateParent(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	courier := &models.CourierType{
		ID:         uuid.New(),
		Name:       name,
		CategoryID: input.CategoryID,
		ParentID:   input.ParentID,
		Active:     active,
		SortOrder:  input.SortOrder,
	}
	if err := s.repo.Create(ctx, courier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "create courier type")
	}
	return courier, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.CourierType, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier id required")
	}
	courier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "courier type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load courier type")
	}
	return courier, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCourierInput) (*models.CourierType, error) {
	courier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier name required").
				WithDetails(map[string]string{"name": "must not be empty"})
		}
		courier.Name = name
	}
	if input.CategoryID != nil {
		courier.CategoryID = input.CategoryID
	}
	if input.ClearParent {
		courier.ParentID = nil
	} else if input.ParentID != nil {
		if *input.ParentID == courier.ID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier type cannot parent itself")
		}
		childCount, err := s.repo.CountChildren(ctx, courier.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "count courier children")
		}
		if childCount > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "hierarchy is limited to one level").
				WithDetails(map[string]string{"parent_id": "type already has children"})
		}
		if err := s.validateParent(ctx, *input.ParentID); err != nil {
			return nil, err
		}
		courier.ParentID = input.ParentID
	}
	if input.Active != nil {
		courier.Active = *input.Active
	}
	if input.SortOrder != nil {
		courier.SortOrder = *input.SortOrder
	}

	if err := s.repo.Update(ctx, courier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "update courier type")
	}
	return courier, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "courier id required")
	}

	childCount, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "count courier children")
	}
	if childCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "courier type has children").
			WithDetails(map[string]int64{"child_count": childCount})
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "delete courier type")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "courier type not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.CourierType, error) {
	couriers, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list courier types")
	}
	return couriers, nil
}

func (s *service) Children(ctx context.Context, parentID uuid.UUID) ([]models.CourierType, error) {
	if parentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier id required")
	}
	children, err := s.repo.Children(ctx, parentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list courier children")
	}
	return children, nil
}

func (s *service) Reorder(ctx context.Context, items []ReorderItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no reorder items provided")
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "reorder item missing courier id")
		}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, item := range items {
			affected, err := repo.UpdateSortOrder(ctx, item.ID, item.SortOrder)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStore, err, "update courier sort order")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "courier type not found in reorder batch")
			}
		}
		return nil
	})
}
