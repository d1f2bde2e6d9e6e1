package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packtally/packtally-backend/internal/repo"
	"github.com/packtally/packtally-backend/pkg/db/models"
)

// Repository manages persistence for both category catalogs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateShopCategory(ctx context.Context, category *models.ShopCategory) error
	FindShopCategory(ctx context.Context, id uuid.UUID) (*models.ShopCategory, error)
	UpdateShopCategory(ctx context.Context, category *models.ShopCategory) error
	DeleteShopCategory(ctx context.Context, id uuid.UUID) (int64, error)
	ListShopCategories(ctx context.Context) ([]models.ShopCategory, error)
	CountShopsInCategory(ctx context.Context, id uuid.UUID) (int64, error)
	UpdateShopCategorySortOrder(ctx context.Context, id uuid.UUID, sortOrder int) (int64, error)

	CreateCourierCategory(ctx context.Context, category *models.CourierCategory) error
	FindCourierCategory(ctx context.Context, id uuid.UUID) (*models.CourierCategory, error)
	UpdateCourierCategory(ctx context.Context, category *models.CourierCategory) error
	DeleteCourierCategory(ctx context.Context, id uuid.UUID) (int64, error)
	ListCourierCategories(ctx context.Context) ([]models.CourierCategory, error)
	CountCouriersInCategory(ctx context.Context, id uuid.UUID) (int64, error)
	UpdateCourierCategorySortOrder(ctx context.Context, id uuid.UUID, sortOrder int) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a category repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) CreateShopCategory(ctx context.Context, category *models.ShopCategory) error {
	return r.DB(ctx).Create(category).Error
}

func (r *repository) FindShopCategory(ctx context.Context, id uuid.UUID) (*models.ShopCategory, error) {
	var category models.ShopCategory
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) UpdateShopCategory(ctx context.Context, category *models.ShopCategory) error {
	return r.DB(ctx).Save(category).Error
}

func (r *repository) DeleteShopCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).Delete(&models.ShopCategory{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) ListShopCategories(ctx context.Context) ([]models.ShopCategory, error) {
	var categories []models.ShopCategory
	if err := r.DB(ctx).
		Order("sort_order ASC").
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) CountShopsInCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Shop{}).
		Where("category_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateShopCategorySortOrder(ctx context.Context, id uuid.UUID, sortOrder int) (int64, error) {
	res := r.DB(ctx).
		Model(&models.ShopCategory{}).
		Where("id = ?", id).
		Update("sort_order", sortOrder)
	return res.RowsAffected, res.Error
}

func (r *repository) CreateCourierCategory(ctx context.Context, category *models.CourierCategory) error {
	return r.DB(ctx).Create(category).Error
}

func (r *repository) FindCourierCategory(ctx context.Context, id uuid.UUID) (*models.CourierCategory, error) {
	var category models.CourierCategory
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) UpdateCourierCategory(ctx context.Context, category *models.CourierCategory) error {
	return r.DB(ctx).Save(category).Error
}

func (r *repository) DeleteCourierCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).Delete(&models.CourierCategory{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) ListCourierCategories(ctx context.Context) ([]models.CourierCategory, error) {
	var categories []models.CourierCategory
	if err := r.DB(ctx).
		Order("sort_order ASC").
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) CountCouriersInCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.CourierType{}).
		Where("category_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateCourierCategorySortOrder(ctx context.Context, id uuid.UUID, sortOrder int) (int64, error) {
	res := r.DB(ctx).
		Model(&models.CourierCategory{}).
		Where("id = ?", id).
		Update("sort_order", sortOrder)
	return res.RowsAffected, res.Error
}
