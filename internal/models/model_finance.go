package models

import (
	"time"

	"github.com/fatflowers/gymdesk/pkg/types"
)

// Payment is money received from a member, optionally for a membership.
// Amount is in minor currency units.
type Payment struct {
	ID           string              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MemberID     string              `gorm:"column:member_id;type:uuid;not null;index" json:"memberId"`
	MembershipID *string             `gorm:"column:membership_id;type:uuid;default:null;index" json:"membershipId"`
	Amount       int64               `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Method       types.PaymentMethod `gorm:"column:method;type:varchar(16);not null;default:'CASH'" json:"method"`
	Reference    string              `gorm:"column:reference;type:varchar(128)" json:"reference,omitempty"`
	Notes        string              `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt    time.Time           `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`

	Member     *MemberBrief `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
	Membership *Membership  `gorm:"foreignKey:MembershipID;constraint:OnDelete:SET NULL" json:"membership,omitempty"`
}

func (Payment) TableName() string {
	return "payment"
}

type Expense struct {
	ID        string                `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Category  types.ExpenseCategory `gorm:"column:category;type:varchar(16);not null;index" json:"category"`
	Amount    int64                 `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Note      string                `gorm:"column:note;type:text" json:"note,omitempty"`
	CreatedAt time.Time             `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func (Expense) TableName() string {
	return "expense"
}
