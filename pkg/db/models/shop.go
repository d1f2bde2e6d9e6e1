package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop is one fulfillment location whose daily output the ledger tracks.
type Shop struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string     `gorm:"column:name;not null" json:"name"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid" json:"category_id,omitempty"`
	// no gorm default tag: a declared default makes gorm omit false on
	// insert, which would force inactive rows active. The service always
	// sets the value; the column default lives in the migration.
	Active     bool       `gorm:"column:active;not null" json:"active"`
	SortOrder  int        `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	Notes      *string    `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Shop) TableName() string {
	return "shops"
}
