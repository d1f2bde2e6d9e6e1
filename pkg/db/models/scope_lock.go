package models

import (
	"time"

	"github.com/google/uuid"
)

// ScopeLock anchors one row per (shop, courier, date) ledger scope. Subtract
// takes a row-level lock on it across its read-check-write sequence so two
// concurrent subtracts against the same scope cannot both pass the
// sufficiency check. The row carries no quantities.
type ScopeLock struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID     uuid.UUID `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:uq_scope_locks,priority:1"`
	CourierID  uuid.UUID `gorm:"column:courier_id;type:uuid;not null;uniqueIndex:uq_scope_locks,priority:2"`
	OutputDate string    `gorm:"column:output_date;type:date;not null;uniqueIndex:uq_scope_locks,priority:3"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ScopeLock) TableName() string {
	return "scope_locks"
}
