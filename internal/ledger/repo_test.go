package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/packtally/packtally-backend/internal/growth"
	"github.com/packtally/packtally-backend/pkg/db/models"
	"github.com/packtally/packtally-backend/pkg/enums"
	"github.com/packtally/packtally-backend/pkg/pagination"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ledgerEntries := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  shop_id TEXT NOT NULL,
  courier_id TEXT NOT NULL,
  output_date TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  operation_type TEXT NOT NULL,
  original_quantity INTEGER,
  merge_note TEXT,
  related_record_id TEXT,
  notes TEXT,
  created_at DATETIME
);`
	scopeLocks := `
CREATE TABLE IF NOT EXISTS scope_locks (
  id TEXT PRIMARY KEY,
  shop_id TEXT NOT NULL,
  courier_id TEXT NOT NULL,
  output_date TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (shop_id, courier_id, output_date)
);`

	require.NoError(t, db.Exec(ledgerEntries).Error)
	require.NoError(t, db.Exec(scopeLocks).Error)
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, shopID, courierID uuid.UUID, date string, qty int64, op enums.OperationType) models.LedgerEntry {
	t.Helper()
	entry := models.LedgerEntry{
		ID:            uuid.New(),
		ShopID:        shopID,
		CourierID:     courierID,
		OutputDate:    date,
		Quantity:      qty,
		OperationType: op,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(&entry).Error)
	return entry
}

func TestRepositorySumQuantityOverScope(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shopID := uuid.New()
	courierID := uuid.New()
	otherShop := uuid.New()
	date := "2026-09-01"

	seedEntry(t, db, shopID, courierID, date, 100, enums.OperationTypeAdd)
	seedEntry(t, db, shopID, courierID, date, -30, enums.OperationTypeSubtract)
	seedEntry(t, db, shopID, courierID, date, -20, enums.OperationTypeMerge)
	seedEntry(t, db, otherShop, courierID, date, 500, enums.OperationTypeAdd)
	seedEntry(t, db, shopID, courierID, "2026-08-31", 7, enums.OperationTypeAdd)

	total, err := repo.SumQuantity(ctx, growth.Scope{
		ShopID:    &shopID,
		CourierID: &courierID,
		Date:      date,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), total)

	all, err := repo.SumQuantity(ctx, growth.Scope{})
	require.NoError(t, err)
	assert.Equal(t, int64(557), all)
}

func TestRepositorySumQuantityEmptyScopeIsZero(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	total, err := repo.SumQuantity(context.Background(), growth.Scope{Date: "2026-09-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRepositoryGroupByOperation(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shopID := uuid.New()
	courierID := uuid.New()
	date := "2026-09-01"

	seedEntry(t, db, shopID, courierID, date, 100, enums.OperationTypeAdd)
	seedEntry(t, db, shopID, courierID, date, 40, enums.OperationTypeAdd)
	seedEntry(t, db, shopID, courierID, date, -30, enums.OperationTypeSubtract)

	buckets, err := repo.GroupByOperation(ctx, growth.Scope{
		ShopID:    &shopID,
		CourierID: &courierID,
		Date:      date,
	})
	require.NoError(t, err)

	assert.Equal(t, growth.OperationBucket{Total: 140, Count: 2}, buckets[enums.OperationTypeAdd])
	assert.Equal(t, growth.OperationBucket{Total: -30, Count: 1}, buckets[enums.OperationTypeSubtract])
	_, hasMerge := buckets[enums.OperationTypeMerge]
	assert.False(t, hasMerge)
}

func TestRepositoryDateRangeScope(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shopID := uuid.New()
	courierID := uuid.New()

	seedEntry(t, db, shopID, courierID, "2026-08-29", 10, enums.OperationTypeAdd)
	seedEntry(t, db, shopID, courierID, "2026-08-30", 20, enums.OperationTypeAdd)
	seedEntry(t, db, shopID, courierID, "2026-09-01", 40, enums.OperationTypeAdd)

	total, err := repo.SumQuantity(ctx, growth.Scope{
		DateStart: "2026-08-30",
		DateEnd:   "2026-09-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60), total)

	rows, err := repo.ListByDateRange(ctx, "2026-08-29", "2026-08-30", growth.Scope{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRepositoryListPaginates(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shopID := uuid.New()
	courierID := uuid.New()
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := models.LedgerEntry{
			ID:            uuid.New(),
			ShopID:        shopID,
			CourierID:     courierID,
			OutputDate:    "2026-09-01",
			Quantity:      int64(i + 1),
			OperationType: enums.OperationTypeAdd,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&entry).Error)
	}

	firstPage, err := repo.List(ctx, ListFilter{
		ShopID: &shopID,
		Params: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, firstPage, 3) // limit+1 buffer
	assert.True(t, firstPage[0].CreatedAt.After(firstPage[1].CreatedAt))

	cursor := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: firstPage[1].CreatedAt,
		ID:        firstPage[1].ID,
	})
	secondPage, err := repo.List(ctx, ListFilter{
		ShopID: &shopID,
		Params: pagination.Params{Limit: 2, Cursor: cursor},
	})
	require.NoError(t, err)
	require.NotEmpty(t, secondPage)
	assert.True(t, secondPage[0].CreatedAt.Before(firstPage[1].CreatedAt))
}

func TestRepositoryListByCouriers(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shopID := uuid.New()
	c1 := uuid.New()
	c2 := uuid.New()
	c3 := uuid.New()

	seedEntry(t, db, shopID, c1, "2026-09-01", 10, enums.OperationTypeAdd)
	seedEntry(t, db, shopID, c2, "2026-09-01", 20, enums.OperationTypeAdd)
	seedEntry(t, db, shopID, c3, "2026-09-01", 30, enums.OperationTypeAdd)

	rows, err := repo.ListByCouriers(ctx, []uuid.UUID{c1, c2})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	none, err := repo.ListByCouriers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepositoryLockScopeCreatesAnchorOnce(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shopID := uuid.New()
	courierID := uuid.New()
	date := "2026-09-01"

	require.NoError(t, repo.LockScope(ctx, shopID, courierID, date))
	require.NoError(t, repo.LockScope(ctx, shopID, courierID, date))

	var count int64
	require.NoError(t, db.Model(&models.ScopeLock{}).
		Where("shop_id = ? AND courier_id = ? AND output_date = ?", shopID, courierID, date).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryDeleteReportsAffectedRows(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	entry := seedEntry(t, db, uuid.New(), uuid.New(), "2026-09-01", 5, enums.OperationTypeAdd)

	affected, err := repo.Delete(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Delete(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}
