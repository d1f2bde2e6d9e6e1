package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/packtally/packtally-backend/internal/growth"
	"github.com/packtally/packtally-backend/pkg/db/models"
	"github.com/packtally/packtally-backend/pkg/enums"
	pkgpagination "github.com/packtally/packtally-backend/pkg/pagination"
)

// ListFilter narrows a paginated entry listing.
type ListFilter struct {
	ShopID    *uuid.UUID
	CourierID *uuid.UUID
	DateStart string
	DateEnd   string
	pkgpagination.Params
}

// Repository manages persistence for ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error)
	Update(ctx context.Context, entry *models.LedgerEntry) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]models.LedgerEntry, error)
	SumQuantity(ctx context.Context, scope growth.Scope) (int64, error)
	GroupByOperation(ctx context.Context, scope growth.Scope) (map[enums.OperationType]growth.OperationBucket, error)
	ListByDate(ctx context.Context, date string) ([]models.LedgerEntry, error)
	ListByDateRange(ctx context.Context, start, end string, filter growth.Scope) ([]models.LedgerEntry, error)
	ListByCouriers(ctx context.Context, courierIDs []uuid.UUID) ([]models.LedgerEntry, error)
	LockScope(ctx context.Context, shopID, courierID uuid.UUID, date string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Update(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.LedgerEntry{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.LedgerEntry, error) {
	q := r.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if filter.ShopID != nil {
		q = q.Where("shop_id = ?", *filter.ShopID)
	}
	if filter.CourierID != nil {
		q = q.Where("courier_id = ?", *filter.CourierID)
	}
	if filter.DateStart != "" {
		q = q.Where("output_date >= ?", filter.DateStart)
	}
	if filter.DateEnd != "" {
		q = q.Where("output_date <= ?", filter.DateEnd)
	}

	cursor, err := pkgpagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var entries []models.LedgerEntry
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pkgpagination.LimitWithBuffer(filter.Limit)).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func applyScope(q *gorm.DB, scope growth.Scope) *gorm.DB {
	if scope.ShopID != nil {
		q = q.Where("shop_id = ?", *scope.ShopID)
	}
	if scope.CourierID != nil {
		q = q.Where("courier_id = ?", *scope.CourierID)
	}
	switch {
	case scope.Date != "":
		q = q.Where("output_date = ?", scope.Date)
	case scope.DateStart != "" && scope.DateEnd != "":
		q = q.Where("output_date >= ? AND output_date <= ?", scope.DateStart, scope.DateEnd)
	case scope.DateStart != "":
		q = q.Where("output_date >= ?", scope.DateStart)
	case scope.DateEnd != "":
		q = q.Where("output_date <= ?", scope.DateEnd)
	}
	return q
}

func (r *repository) SumQuantity(ctx context.Context, scope growth.Scope) (int64, error) {
	var total *int64
	q := applyScope(r.db.WithContext(ctx).Model(&models.LedgerEntry{}), scope)
	if err := q.Select("SUM(quantity)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) GroupByOperation(ctx context.Context, scope growth.Scope) (map[enums.OperationType]growth.OperationBucket, error) {
	type row struct {
		OperationType enums.OperationType
		Total         int64
		Count         int64
	}
	var rows []row
	q := applyScope(r.db.WithContext(ctx).Model(&models.LedgerEntry{}), scope)
	if err := q.
		Select("operation_type, SUM(quantity) AS total, COUNT(*) AS count").
		Group("operation_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	buckets := make(map[enums.OperationType]growth.OperationBucket, len(rows))
	for _, r := range rows {
		buckets[r.OperationType] = growth.OperationBucket{Total: r.Total, Count: r.Count}
	}
	return buckets, nil
}

func (r *repository) ListByDate(ctx context.Context, date string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("output_date = ?", date).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByDateRange(ctx context.Context, start, end string, filter growth.Scope) ([]models.LedgerEntry, error) {
	q := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("output_date >= ? AND output_date <= ?", start, end)
	if filter.ShopID != nil {
		q = q.Where("shop_id = ?", *filter.ShopID)
	}
	if filter.CourierID != nil {
		q = q.Where("courier_id = ?", *filter.CourierID)
	}

	var entries []models.LedgerEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByCouriers(ctx context.Context, courierIDs []uuid.UUID) ([]models.LedgerEntry, error) {
	if len(courierIDs) == 0 {
		return []models.LedgerEntry{}, nil
	}
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("courier_id IN ?", courierIDs).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// LockScope ensures the anchor row for a (shop, courier, date) scope exists
// and takes a row-level lock on it. Must run inside a transaction; the lock
// is held until that transaction commits or rolls back.
func (r *repository) LockScope(ctx context.Context, shopID, courierID uuid.UUID, date string) error {
	// The id stays out of the lookup conditions so an existing anchor is
	// found instead of re-inserted; Attrs supplies it only on create. A
	// concurrent transaction may win the insert, so the create side is
	// ON CONFLICT DO NOTHING and the locking read below finds the row
	// whichever transaction created it.
	var anchor models.ScopeLock
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Where("shop_id = ? AND courier_id = ? AND output_date = ?", shopID, courierID, date).
		Attrs(models.ScopeLock{ID: uuid.New()}).
		FirstOrCreate(&anchor).Error; err != nil {
		return err
	}

	q := r.db.WithContext(ctx)
	// sqlite has no FOR UPDATE; its single test connection already serializes.
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q.
		Where("shop_id = ? AND courier_id = ? AND output_date = ?", shopID, courierID, date).
		First(&models.ScopeLock{}).Error
}
