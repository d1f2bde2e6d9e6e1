package models

import (
	"time"

	"github.com/google/uuid"
)

// CourierType is a courier bucket ledger rows key against. The hierarchy is
// at most one level deep: a type with a non-null ParentID may not itself be
// a parent.
type CourierType struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string     `gorm:"column:name;not null" json:"name"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid" json:"category_id,omitempty"`
	ParentID   *uuid.UUID `gorm:"column:parent_id;type:uuid;index" json:"parent_id,omitempty"`
	// no gorm default tag, same reasoning as Shop.Active.
	Active     bool       `gorm:"column:active;not null" json:"active"`
	SortOrder  int        `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CourierType) TableName() string {
	return "courier_types"
}
