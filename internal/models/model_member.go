package models

import "time"

// Member is a gym customer. Members are not app users; staff act on their behalf.
type Member struct {
	ID               string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FullName         string     `gorm:"column:full_name;type:varchar(128);not null;index" json:"fullName"`
	Phone            string     `gorm:"column:phone;type:varchar(32);index" json:"phone,omitempty"`
	Gender           string     `gorm:"column:gender;type:varchar(16)" json:"gender,omitempty"`
	DOB              *time.Time `gorm:"column:dob;default:null" json:"dob,omitempty"`
	PhotoURL         string     `gorm:"column:photo_url;type:varchar(512)" json:"photoUrl,omitempty"`
	EmergencyContact string     `gorm:"column:emergency_contact;type:varchar(128)" json:"emergencyContact,omitempty"`
	Notes            string     `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (Member) TableName() string {
	return "member"
}

// MemberBrief is the member projection embedded in attendance and payment rows.
type MemberBrief struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FullName string `gorm:"column:full_name" json:"fullName"`
	Phone    string `gorm:"column:phone" json:"phone,omitempty"`
}

func (MemberBrief) TableName() string {
	return "member"
}

func (m *Member) Brief() *MemberBrief {
	if m == nil {
		return nil
	}
	return &MemberBrief{ID: m.ID, FullName: m.FullName, Phone: m.Phone}
}
