package models

import (
	"time"

	"github.com/fatflowers/gymdesk/pkg/types"
)

// User is a staff or member login. PasswordHash never leaves the process.
type User struct {
	ID           string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Email        string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone        string     `gorm:"column:phone;type:varchar(32)" json:"phone,omitempty"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(128);not null" json:"-"`
	Role         types.Role `gorm:"column:role;type:varchar(16);not null;default:'MEMBER'" json:"role"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "app_user"
}

// RefreshToken stores the sha256 of an issued refresh token, never the token itself.
type RefreshToken struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	TokenHash string    `gorm:"column:token_hash;type:char(64);not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expiresAt"`
	Revoked   bool      `gorm:"column:revoked;not null;default:false" json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
}

func (RefreshToken) TableName() string {
	return "refresh_token"
}
