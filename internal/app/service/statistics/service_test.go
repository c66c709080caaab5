package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/app/storage/memory"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/apperr"
	"github.com/fatflowers/gymdesk/pkg/config"
	"github.com/fatflowers/gymdesk/pkg/types"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, store storage.Store, lifetime bool) *Service {
	t.Helper()
	svc, err := New(store, zap.NewNop().Sugar(), &config.Config{
		Stats: config.StatsConfig{Timezone: "UTC", LifetimeMonthlyFields: lifetime},
	})
	require.NoError(t, err)
	svc.now = func() time.Time { return now }
	return svc
}

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

// seed fills store with a small gym spanning May and June 2024.
func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	var members []*models.Member
	for _, name := range []string{"Ann", "Bob", "Cid"} {
		m := &models.Member{FullName: name}
		require.NoError(t, store.CreateMember(ctx, m))
		members = append(members, m)
	}

	monthly := &models.Plan{Name: "Monthly", Price: 3000, DurationDays: 30, IsActive: true}
	weekly := &models.Plan{Name: "Weekly", Price: 1000, DurationDays: 7, IsActive: true}
	retired := &models.Plan{Name: "Legacy", Price: 500, DurationDays: 7, IsActive: false}
	for _, p := range []*models.Plan{monthly, weekly, retired} {
		require.NoError(t, store.CreatePlan(ctx, p))
	}

	for _, ms := range []*models.Membership{
		// Running today.
		{MemberID: members[0].ID, PlanID: monthly.ID, StartDate: at(6, 1, 0), EndDate: at(7, 1, 0), Status: types.MembershipStatusActive},
		// Still ACTIVE in storage but its window ended.
		{MemberID: members[1].ID, PlanID: weekly.ID, StartDate: at(5, 1, 0), EndDate: at(5, 8, 0), Status: types.MembershipStatusActive},
		{MemberID: members[2].ID, PlanID: monthly.ID, StartDate: at(6, 1, 0), EndDate: at(7, 1, 0), Status: types.MembershipStatusPaused},
	} {
		require.NoError(t, store.CreateMembership(ctx, ms))
	}

	for i, checkIn := range []time.Time{at(6, 15, 8), at(6, 15, 10), at(6, 3, 9), at(5, 30, 9)} {
		out := checkIn.Add(time.Hour)
		require.NoError(t, store.CreateAttendance(ctx, &models.Attendance{
			MemberID: members[i%len(members)].ID, CheckIn: checkIn, CheckOut: &out, Source: types.AttendanceSourceManual,
		}))
	}

	for _, p := range []*models.Payment{
		{MemberID: members[0].ID, Amount: 3000, Method: types.PaymentMethodCash, CreatedAt: at(6, 2, 9)},
		{MemberID: members[2].ID, Amount: 2000, Method: types.PaymentMethodCard, CreatedAt: at(6, 10, 9)},
		{MemberID: members[1].ID, Amount: 10000, Method: types.PaymentMethodCash, CreatedAt: at(5, 20, 9)},
	} {
		require.NoError(t, store.CreatePayment(ctx, p))
	}

	for _, e := range []*models.Expense{
		{Category: types.ExpenseCategoryRent, Amount: 1000, CreatedAt: at(6, 1, 9)},
		{Category: types.ExpenseCategoryWater, Amount: 500, CreatedAt: at(5, 15, 9)},
	} {
		require.NoError(t, store.CreateExpense(ctx, e))
	}

	require.NoError(t, store.CreateAsset(ctx, &models.Asset{Name: "Treadmill", Category: "cardio", Cost: 150000}))
}

func TestOverview_Summary(t *testing.T) {
	store := memory.New()
	seed(t, store)
	svc := newService(t, store, false)

	ov, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StatsSummary{
		TotalMembers:      3,
		ActiveMemberships: 1,
		TodayAttendance:   2,
		MonthlyAttendance: 3,
		TotalPlans:        2,
		TotalAssets:       1,
		MonthlyRevenue:    5000,
		MonthlyExpenses:   1000,
		TotalRevenue:      15000,
		TotalExpenses:     1500,
		MonthlyProfit:     4000,
	}, ov.Summary)
}

func TestOverview_LifetimeMonthlyFields(t *testing.T) {
	store := memory.New()
	seed(t, store)
	svc := newService(t, store, true)

	ov, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 15000, ov.Summary.MonthlyRevenue)
	assert.EqualValues(t, 1500, ov.Summary.MonthlyExpenses)
	assert.EqualValues(t, 4000, ov.Summary.MonthlyProfit, "profit stays month scoped")
}

func TestOverview_Breakdowns(t *testing.T) {
	store := memory.New()
	seed(t, store)
	svc := newService(t, store, false)

	ov, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []models.StatusCount{
		{Status: types.MembershipStatusActive, Count: 2},
		{Status: types.MembershipStatusPaused, Count: 1},
	}, ov.Breakdowns.MembershipStatus)
	assert.ElementsMatch(t, []models.MethodBreakdown{
		{Method: types.PaymentMethodCash, Count: 1, Amount: 3000},
		{Method: types.PaymentMethodCard, Count: 1, Amount: 2000},
	}, ov.Breakdowns.PaymentMethods)
	assert.Equal(t, []models.CategoryBreakdown{
		{Category: types.ExpenseCategoryRent, Count: 1, Amount: 1000},
	}, ov.Breakdowns.ExpenseCategories)
}

func TestOverview_RecentActivities(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m := &models.Member{FullName: "Ann"}
	require.NoError(t, store.CreateMember(ctx, m))
	for i := 0; i < 7; i++ {
		require.NoError(t, store.CreatePayment(ctx, &models.Payment{
			MemberID: m.ID, Amount: int64(100 * (i + 1)), Method: types.PaymentMethodCash, CreatedAt: at(6, 1+i, 9),
		}))
		out := at(6, 1+i, 10)
		require.NoError(t, store.CreateAttendance(ctx, &models.Attendance{
			MemberID: m.ID, CheckIn: at(6, 1+i, 9), CheckOut: &out, Source: types.AttendanceSourceQRCode,
		}))
	}
	svc := newService(t, store, false)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)

	require.Len(t, ov.RecentActivities.Payments, RecentLimit)
	assert.EqualValues(t, 700, ov.RecentActivities.Payments[0].Amount)
	require.Len(t, ov.RecentActivities.Attendances, RecentLimit)
	assert.Equal(t, at(6, 7, 9), ov.RecentActivities.Attendances[0].CheckIn)
	assert.Empty(t, ov.RecentActivities.Expenses)
}

func TestOverview_LocalDayBoundary(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m := &models.Member{FullName: "Ann"}
	require.NoError(t, store.CreateMember(ctx, m))
	for _, checkIn := range []time.Time{
		// 23:00 on the 15th in UTC+9.
		at(6, 15, 14),
		// 00:30 on the 16th in UTC+9.
		at(6, 15, 15).Add(30 * time.Minute),
	} {
		out := checkIn.Add(10 * time.Minute)
		require.NoError(t, store.CreateAttendance(ctx, &models.Attendance{
			MemberID: m.ID, CheckIn: checkIn, CheckOut: &out, Source: types.AttendanceSourceManual,
		}))
	}
	svc := newService(t, store, false)
	svc.loc = time.FixedZone("UTC+9", 9*60*60)
	svc.now = func() time.Time { return at(6, 15, 16) }

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ov.Summary.TodayAttendance)
	assert.EqualValues(t, 2, ov.Summary.MonthlyAttendance)
}

type failingStore struct {
	storage.Store
}

func (failingStore) CountMembers(context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestOverview_StoreFailure(t *testing.T) {
	svc := newService(t, failingStore{Store: memory.New()}, false)

	_, err := svc.Overview(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.ErrorContains(t, err, "stats members")
}

func TestSaveDailySnapshot_Upserts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store)
	svc := newService(t, store, false)

	first, err := svc.SaveDailySnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", first.SnapshotDate)
	assert.EqualValues(t, 3, first.Summary.Data().TotalMembers)

	require.NoError(t, store.CreateMember(ctx, &models.Member{FullName: "Dee"}))
	second, err := svc.SaveDailySnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	snaps, err := svc.DailySnapshots(ctx, "2024-06-15", "2024-06-15")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.EqualValues(t, 4, snaps[0].Summary.Data().TotalMembers)
}

func TestDailySnapshots_Range(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(t, store, false)
	for _, d := range []int{13, 14, 15} {
		svc.now = func() time.Time { return at(6, d, 23) }
		_, err := svc.SaveDailySnapshot(ctx)
		require.NoError(t, err)
	}

	snaps, err := svc.DailySnapshots(ctx, "2024-06-14", "")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "2024-06-14", snaps[0].SnapshotDate)
	assert.Equal(t, "2024-06-15", snaps[1].SnapshotDate)

	all, err := svc.DailySnapshots(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDailySnapshots_Validation(t *testing.T) {
	svc := newService(t, memory.New(), false)

	for name, tc := range map[string][2]string{
		"bad from":      {"15/06/2024", ""},
		"bad to":        {"", "2024-6-1"},
		"from after to": {"2024-06-15", "2024-06-01"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.DailySnapshots(context.Background(), tc[0], tc[1])
			assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
		})
	}
}

func TestNewSnapshotScheduler(t *testing.T) {
	svc := newService(t, memory.New(), false)
	log := zap.NewNop().Sugar()

	c, err := newSnapshotScheduler(svc, log, "")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = newSnapshotScheduler(svc, log, "not a cron")
	assert.Error(t, err)

	c, err = newSnapshotScheduler(svc, log, "55 23 * * *")
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
}
