package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/gymdesk/pkg/types"
)

// StatsSummary is the headline block of the dashboard overview. Money fields
// are in minor currency units.
type StatsSummary struct {
	TotalMembers      int64 `json:"totalMembers"`
	ActiveMemberships int64 `json:"activeMemberships"`
	TodayAttendance   int64 `json:"todayAttendance"`
	MonthlyAttendance int64 `json:"monthlyAttendance"`
	TotalPlans        int64 `json:"totalPlans"`
	TotalAssets       int64 `json:"totalAssets"`
	MonthlyRevenue    int64 `json:"monthlyRevenue"`
	MonthlyExpenses   int64 `json:"monthlyExpenses"`
	TotalRevenue      int64 `json:"totalRevenue"`
	TotalExpenses     int64 `json:"totalExpenses"`
	MonthlyProfit     int64 `json:"monthlyProfit"`
}

type StatusCount struct {
	Status types.MembershipStatus `json:"status"`
	Count  int64                  `json:"count"`
}

type MethodBreakdown struct {
	Method types.PaymentMethod `json:"method"`
	Count  int64               `json:"count"`
	Amount int64               `json:"amount"`
}

type CategoryBreakdown struct {
	Category types.ExpenseCategory `json:"category"`
	Count    int64                 `json:"count"`
	Amount   int64                 `json:"amount"`
}

// StatsDailySnapshot keeps the end-of-day summary so trends survive later edits.
type StatsDailySnapshot struct {
	ID string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	// SnapshotDate is the local calendar day, formatted as time.DateOnly.
	SnapshotDate string                           `gorm:"column:snapshot_date;type:varchar(10);not null;uniqueIndex" json:"snapshotDate"`
	Summary      datatypes.JSONType[StatsSummary] `gorm:"column:summary;type:jsonb;not null" json:"summary"`
	CreatedAt    time.Time                        `json:"createdAt"`
	UpdatedAt    time.Time                        `json:"updatedAt"`
}

func (StatsDailySnapshot) TableName() string {
	return "stats_daily_snapshot"
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Member{},
		&Plan{},
		&Membership{},
		&MembershipLog{},
		&Attendance{},
		&Payment{},
		&Expense{},
		&Asset{},
		&User{},
		&RefreshToken{},
		&StatsDailySnapshot{},
	}
}
