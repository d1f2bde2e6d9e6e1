package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/packtally/packtally-backend/pkg/enums"
)

// LedgerEntry records one signed-quantity output event for a
// (shop, courier type, calendar date) scope. Rows are created only by the
// three ledger write operations; aggregation replays the full row set for a
// scope instead of maintaining running counters.
type LedgerEntry struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ShopID           uuid.UUID           `gorm:"column:shop_id;type:uuid;not null;index:idx_ledger_scope,priority:1" json:"shop_id"`
	CourierID        uuid.UUID           `gorm:"column:courier_id;type:uuid;not null;index:idx_ledger_scope,priority:2" json:"courier_id"`
	OutputDate       string              `gorm:"column:output_date;type:date;not null;index:idx_ledger_scope,priority:3" json:"output_date"`
	Quantity         int64               `gorm:"column:quantity;not null" json:"quantity"`
	OperationType    enums.OperationType `gorm:"column:operation_type;not null" json:"operation_type"`
	OriginalQuantity *int64              `gorm:"column:original_quantity" json:"original_quantity,omitempty"`
	MergeNote        *string             `gorm:"column:merge_note" json:"merge_note,omitempty"`
	RelatedRecordID  *uuid.UUID          `gorm:"column:related_record_id;type:uuid" json:"related_record_id,omitempty"`
	Notes            *string             `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
