package models

import (
	"time"

	"github.com/fatflowers/gymdesk/pkg/types"
)

// Asset is a piece of gym inventory. Cost is in minor currency units.
type Asset struct {
	ID           string               `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string               `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Category     string               `gorm:"column:category;type:varchar(64);not null;index" json:"category"`
	SerialNo     string               `gorm:"column:serial_no;type:varchar(128)" json:"serialNo,omitempty"`
	PurchaseDate *time.Time           `gorm:"column:purchase_date;default:null" json:"purchaseDate,omitempty"`
	Cost         int64                `gorm:"column:cost;type:bigint;not null" json:"cost"`
	Condition    types.AssetCondition `gorm:"column:condition;type:varchar(16);not null;default:'good'" json:"condition"`
	Location     string               `gorm:"column:location;type:varchar(128)" json:"location,omitempty"`
	Notes        string               `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt    time.Time            `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func (Asset) TableName() string {
	return "asset"
}
