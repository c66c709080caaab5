package models

import (
	"time"

	"github.com/fatflowers/gymdesk/pkg/types"
)

// Attendance is one visit. CheckOut is nil while the member is inside; the
// partial unique index allows at most one such open row per member.
type Attendance struct {
	ID        string                 `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MemberID  string                 `gorm:"column:member_id;type:uuid;not null;index;uniqueIndex:idx_attendance_open_member,where:check_out IS NULL" json:"memberId"`
	CheckIn   time.Time              `gorm:"column:check_in;not null;index" json:"checkIn"`
	CheckOut  *time.Time             `gorm:"column:check_out;default:null" json:"checkOut"`
	Source    types.AttendanceSource `gorm:"column:source;type:varchar(16);not null" json:"source"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`

	Member *MemberBrief `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
}

func (Attendance) TableName() string {
	return "attendance"
}

func (a *Attendance) Open() bool { return a != nil && a.CheckOut == nil }
