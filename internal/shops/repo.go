package shops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packtally/packtally-backend/internal/repo"
	"github.com/packtally/packtally-backend/pkg/db/models"
)

// Repository manages persistence for the shop catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shop *models.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	Update(ctx context.Context, shop *models.Shop) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, activeOnly bool) ([]models.Shop, error)
	ListActive(ctx context.Context) ([]models.Shop, error)
	UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a shop repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) Create(ctx context.Context, shop *models.Shop) error {
	return r.DB(ctx).Create(shop).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.DB(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repository) Update(ctx context.Context, shop *models.Shop) error {
	return r.DB(ctx).Save(shop).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).Delete(&models.Shop{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Shop, error) {
	q := r.DB(ctx).Model(&models.Shop{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var shops []models.Shop
	if err := q.Order("sort_order ASC").Order("name ASC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Shop, error) {
	return r.List(ctx, true)
}

func (r *repository) UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Shop{}).
		Where("id = ?", id).
		Update("sort_order", sortOrder)
	return res.RowsAffected, res.Error
}
