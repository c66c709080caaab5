package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/gymdesk/pkg/types"
)

// MembershipLog records every status change of a membership.
// Use case: front-desk disputes and troubleshooting.
type MembershipLog struct {
	ID           string                 `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MembershipID string                 `gorm:"column:membership_id;type:uuid;not null;index:idx_membership_log_membership,priority:1" json:"membershipId"`
	MemberID     string                 `gorm:"column:member_id;type:uuid;not null;index" json:"memberId"`
	Action       types.MembershipAction `gorm:"column:action;type:varchar(16);not null" json:"action"`
	// Before is nil for the create entry.
	Before datatypes.JSONType[*Membership] `gorm:"column:before;type:jsonb;default:'null'" json:"before"`
	After  datatypes.JSONType[*Membership] `gorm:"column:after;type:jsonb;default:'null'" json:"after"`
	// Extra carries the operator id and request trace id.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time         `gorm:"index:idx_membership_log_membership,priority:2,sort:desc" json:"createdAt"`
}

func (MembershipLog) TableName() string {
	return "membership_log"
}
