package couriers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packtally/packtally-backend/internal/repo"
	"github.com/packtally/packtally-backend/pkg/db/models"
)

// Repository manages persistence for the courier type catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, courier *models.CourierType) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CourierType, error)
	Update(ctx context.Context, courier *models.CourierType) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, activeOnly bool) ([]models.CourierType, error)
	ListActive(ctx context.Context) ([]models.CourierType, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]models.CourierType, error)
	CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
	UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a courier repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) Create(ctx context.Context, courier *models.CourierType) error {
	return r.DB(ctx).Create(courier).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CourierType, error) {
	var courier models.CourierType
	if err := r.DB(ctx).First(&courier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &courier, nil
}

func (r *repository) Update(ctx context.Context, courier *models.CourierType) error {
	return r.DB(ctx).Save(courier).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).Delete(&models.CourierType{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.CourierType, error) {
	q := r.DB(ctx).Model(&models.CourierType{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var couriers []models.CourierType
	if err := q.Order("sort_order ASC").Order("name ASC").Find(&couriers).Error; err != nil {
		return nil, err
	}
	return couriers, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.CourierType, error) {
	return r.List(ctx, true)
}

func (r *repository) Children(ctx context.Context, parentID uuid.UUID) ([]models.CourierType, error) {
	var couriers []models.CourierType
	if err := r.DB(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC").
		Find(&couriers).Error; err != nil {
		return nil, err
	}
	return couriers, nil
}

func (r *repository) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.CourierType{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) (int64, error) {
	res := r.DB(ctx).
		Model(&models.CourierType{}).
		Where("id = ?", id).
		Update("sort_order", sortOrder)
	return res.RowsAffected, res.Error
}
