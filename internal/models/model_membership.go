package models

import (
	"time"

	"github.com/fatflowers/gymdesk/pkg/types"
)

const day = 24 * time.Hour

// MaxDurationDays bounds plan length at roughly a century, well inside what a
// time.Duration offset can hold.
const MaxDurationDays = 36500

// ValidDurationDays reports whether n days can be used as a plan duration.
func ValidDurationDays(n int) bool {
	return n > 0 && n <= MaxDurationDays
}

// Membership binds a member to a plan for [StartDate, EndDate]. EndDate is fixed
// at creation and never recomputed from the plan.
type Membership struct {
	ID        string                 `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MemberID  string                 `gorm:"column:member_id;type:uuid;not null;index:idx_membership_member_status,priority:1" json:"memberId"`
	PlanID    string                 `gorm:"column:plan_id;type:uuid;not null;index" json:"planId"`
	StartDate time.Time              `gorm:"column:start_date;not null" json:"startDate"`
	EndDate   time.Time              `gorm:"column:end_date;not null;index" json:"endDate"`
	Status    types.MembershipStatus `gorm:"column:status;type:varchar(16);not null;index:idx_membership_member_status,priority:2" json:"status"`
	CreatedAt time.Time              `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`

	Plan   *Plan        `gorm:"foreignKey:PlanID;constraint:OnDelete:RESTRICT" json:"plan,omitempty"`
	Member *MemberBrief `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Membership) TableName() string {
	return "membership"
}

// MembershipEndDate adds durationDays as a fixed 24h offset per day, so the
// result does not follow DST calendar shifts.
func MembershipEndDate(start time.Time, durationDays int) time.Time {
	return start.Add(time.Duration(durationDays) * day)
}

// ActiveAt reports whether the membership can be used at now: status ACTIVE and
// now inside [StartDate, EndDate]. A stored ACTIVE status alone is not enough.
func (m *Membership) ActiveAt(now time.Time) bool {
	return m != nil &&
		m.Status == types.MembershipStatusActive &&
		!m.StartDate.After(now) &&
		!m.EndDate.Before(now)
}
