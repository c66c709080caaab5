package models

import "time"

// Plan is a sellable membership product. Price is in minor currency units.
type Plan struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Price        int64     `gorm:"column:price;type:bigint;not null" json:"price"`
	DurationDays int       `gorm:"column:duration_days;not null" json:"durationDays"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Plan) TableName() string {
	return "plan"
}
