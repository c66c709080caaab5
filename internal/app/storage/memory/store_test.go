package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/types"
)

func seedMember(t *testing.T, s *Store, name, phone string) *models.Member {
	t.Helper()
	m := &models.Member{FullName: name, Phone: phone}
	require.NoError(t, s.CreateMember(context.Background(), m))
	return m
}

func seedMembership(t *testing.T, s *Store, memberID string, start, end time.Time, status types.MembershipStatus) *models.Membership {
	t.Helper()
	ctx := context.Background()
	plan := &models.Plan{Name: "Monthly", Price: 3000, DurationDays: 30, IsActive: true}
	require.NoError(t, s.CreatePlan(ctx, plan))
	ms := &models.Membership{MemberID: memberID, PlanID: plan.ID, StartDate: start, EndDate: end, Status: status}
	require.NoError(t, s.CreateMembership(ctx, ms))
	return ms
}

func TestMemberCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	m := seedMember(t, s, "Jane Doe", "0700111222")
	require.NotEmpty(t, m.ID)
	require.False(t, m.CreatedAt.IsZero())

	got, err := s.GetMember(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", got.FullName)

	got.Notes = "prefers mornings"
	require.NoError(t, s.UpdateMember(ctx, got))
	again, err := s.GetMember(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "prefers mornings", again.Notes)
	require.Equal(t, m.CreatedAt, again.CreatedAt)

	require.ErrorIs(t, s.UpdateMember(ctx, &models.Member{ID: "missing"}), storage.ErrNotFound)
	_, err = s.GetMember(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteMember(ctx, m.ID))
	require.ErrorIs(t, s.DeleteMember(ctx, m.ID), storage.ErrNotFound)
}

func TestListMembers_SearchAndPaging(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 15; i++ {
		seedMember(t, s, fmt.Sprintf("Member %02d", i), fmt.Sprintf("07000000%02d", i))
	}
	seedMember(t, s, "Alice Kamau", "0711999888")

	items, total, err := s.ListMembers(ctx, storage.MemberQuery{Page: storage.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.EqualValues(t, 16, total)
	require.Len(t, items, 10)
	require.Equal(t, "Alice Kamau", items[0].FullName, "newest first")

	items, _, err = s.ListMembers(ctx, storage.MemberQuery{Page: storage.Page{Page: 2, Limit: 10}})
	require.NoError(t, err)
	require.Len(t, items, 6)

	items, total, err = s.ListMembers(ctx, storage.MemberQuery{Search: "alice"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Alice Kamau", items[0].FullName)

	_, total, err = s.ListMembers(ctx, storage.MemberQuery{Search: "0711"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	items, _, err = s.ListMembers(ctx, storage.MemberQuery{Page: storage.Page{Page: 9, Limit: 10}})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestDeleteMember_Cascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	m := seedMember(t, s, "Jane", "")
	ms := seedMembership(t, s, m.ID, now.Add(-time.Hour), now.Add(time.Hour), types.MembershipStatusActive)
	require.NoError(t, s.CreateAttendance(ctx, &models.Attendance{MemberID: m.ID, CheckIn: now, Source: types.AttendanceSourceManual}))
	require.NoError(t, s.CreatePayment(ctx, &models.Payment{MemberID: m.ID, MembershipID: &ms.ID, Amount: 100, Method: types.PaymentMethodCash}))

	require.NoError(t, s.DeleteMember(ctx, m.ID))

	list, err := s.ListMembershipsByMember(ctx, m.ID)
	require.NoError(t, err)
	require.Empty(t, list)
	_, total, err := s.ListAttendance(ctx, storage.AttendanceQuery{MemberID: m.ID})
	require.NoError(t, err)
	require.Zero(t, total)
	_, total, err = s.ListPayments(ctx, storage.PaymentQuery{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestDeletePlan_Referenced(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	m := seedMember(t, s, "Jane", "")
	ms := seedMembership(t, s, m.ID, now, now.Add(time.Hour), types.MembershipStatusActive)

	require.ErrorIs(t, s.DeletePlan(ctx, ms.PlanID), storage.ErrReferenced)

	unused := &models.Plan{Name: "Day pass", Price: 200, DurationDays: 1}
	require.NoError(t, s.CreatePlan(ctx, unused))
	require.NoError(t, s.DeletePlan(ctx, unused.ID))
	require.ErrorIs(t, s.DeletePlan(ctx, unused.ID), storage.ErrNotFound)
}

func TestMemberships(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	m := seedMember(t, s, "Jane", "")

	expired := seedMembership(t, s, m.ID, now.AddDate(0, -2, 0), now.AddDate(0, -1, 0), types.MembershipStatusActive)
	paused := seedMembership(t, s, m.ID, now.AddDate(0, 0, -1), now.AddDate(0, 0, 29), types.MembershipStatusPaused)

	_, err := s.FindActiveMembership(ctx, m.ID, now)
	require.ErrorIs(t, err, storage.ErrNotFound, "date-expired ACTIVE and PAUSED rows do not count")

	require.NoError(t, s.UpdateMembershipStatus(ctx, paused.ID, types.MembershipStatusActive, now))
	active, err := s.FindActiveMembership(ctx, m.ID, now)
	require.NoError(t, err)
	require.Equal(t, paused.ID, active.ID)

	list, err := s.ListMembershipsByMember(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, paused.ID, list[0].ID)
	require.Equal(t, expired.ID, list[1].ID)
	require.NotNil(t, list[0].Plan)
	require.Equal(t, "Monthly", list[0].Plan.Name)

	require.ErrorIs(t, s.UpdateMembershipStatus(ctx, "missing", types.MembershipStatusExpired, now), storage.ErrNotFound)
	require.ErrorIs(t, s.CreateMembership(ctx, &models.Membership{MemberID: "nobody", PlanID: paused.PlanID}), storage.ErrReferenced)
}

func TestMembershipLogs(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Now()
	for i, action := range []types.MembershipAction{types.MembershipActionCreate, types.MembershipActionPause} {
		require.NoError(t, s.CreateMembershipLog(ctx, &models.MembershipLog{
			MembershipID: "ms1", MemberID: "m1", Action: action, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, s.CreateMembershipLog(ctx, &models.MembershipLog{MembershipID: "ms2", MemberID: "m1", Action: types.MembershipActionCreate}))

	logs, err := s.ListMembershipLogs(ctx, "ms1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, types.MembershipActionPause, logs[0].Action)
}

func TestAttendance_OneOpenPerMember(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	m := seedMember(t, s, "Jane", "0700")

	first := &models.Attendance{MemberID: m.ID, CheckIn: now, Source: types.AttendanceSourceManual}
	require.NoError(t, s.CreateAttendance(ctx, first))
	require.NotNil(t, first.Member)
	require.Equal(t, "Jane", first.Member.FullName)

	second := &models.Attendance{MemberID: m.ID, CheckIn: now, Source: types.AttendanceSourceQRCode}
	require.ErrorIs(t, s.CreateAttendance(ctx, second), storage.ErrDuplicate)

	open, err := s.FindOpenAttendance(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, open.ID)

	require.NoError(t, s.CloseAttendance(ctx, first.ID, now.Add(time.Hour)))
	require.ErrorIs(t, s.CloseAttendance(ctx, first.ID, now.Add(2*time.Hour)), storage.ErrStale)
	require.ErrorIs(t, s.CloseAttendance(ctx, "missing", now), storage.ErrNotFound)

	got, err := s.GetAttendance(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CheckOut)
	require.True(t, got.CheckOut.Equal(now.Add(time.Hour)))

	_, err = s.FindOpenAttendance(ctx, m.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, s.CreateAttendance(ctx, second))

	items, total, err := s.ListAttendance(ctx, storage.AttendanceQuery{MemberID: m.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, "Jane", items[0].Member.FullName)
}

func TestAtomic_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.Atomic(ctx, func(tx storage.Store) error {
		require.NoError(t, tx.CreateMember(ctx, &models.Member{FullName: "Ghost"}))
		return boom
	})
	require.ErrorIs(t, err, boom)
	n, err := s.CountMembers(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, s.Atomic(ctx, func(tx storage.Store) error {
		return tx.CreateMember(ctx, &models.Member{FullName: "Kept"})
	}))
	n, err = s.CountMembers(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestAtomic_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.Panics(t, func() {
		_ = s.Atomic(ctx, func(tx storage.Store) error {
			_ = tx.CreateMember(ctx, &models.Member{FullName: "Ghost"})
			panic("bad")
		})
	})
	n, err := s.CountMembers(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAtomic_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := New().Atomic(ctx, func(storage.Store) error { called = true; return nil })
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestAtomic_SerializesCheckThenAct(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := seedMember(t, s, "Jane", "")

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Atomic(ctx, func(tx storage.Store) error {
				if _, err := tx.FindOpenAttendance(ctx, m.ID); err == nil {
					return storage.ErrDuplicate
				}
				return tx.CreateAttendance(ctx, &models.Attendance{MemberID: m.ID, CheckIn: time.Now(), Source: types.AttendanceSourceManual})
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, created)
}

func TestPaymentsExpensesAssets(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	m := seedMember(t, s, "Jane", "")
	ms := seedMembership(t, s, m.ID, now, now.Add(time.Hour), types.MembershipStatusActive)

	p := &models.Payment{MemberID: m.ID, MembershipID: &ms.ID, Amount: 3000, Method: types.PaymentMethodCard}
	require.NoError(t, s.CreatePayment(ctx, p))
	got, err := s.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane", got.Member.FullName)
	require.Equal(t, "Monthly", got.Membership.Plan.Name)

	missing := "missing"
	require.ErrorIs(t, s.CreatePayment(ctx, &models.Payment{MemberID: m.ID, MembershipID: &missing, Amount: 1}), storage.ErrReferenced)

	require.NoError(t, s.CreateExpense(ctx, &models.Expense{Category: types.ExpenseCategoryRent, Amount: 500}))
	require.NoError(t, s.CreateExpense(ctx, &models.Expense{Category: types.ExpenseCategoryWater, Amount: 50}))
	items, total, err := s.ListExpenses(ctx, storage.ExpenseQuery{Category: types.ExpenseCategoryRent})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.EqualValues(t, 500, items[0].Amount)

	require.NoError(t, s.CreateAsset(ctx, &models.Asset{Name: "Treadmill", Category: "Cardio", Cost: 90000, Condition: types.AssetConditionGood}))
	require.NoError(t, s.CreateAsset(ctx, &models.Asset{Name: "Bench", Category: "Strength", Cost: 9000, Condition: types.AssetConditionRepair}))
	assets, total, err := s.ListAssets(ctx, storage.AssetQuery{Search: "cardio"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Treadmill", assets[0].Name)
	_, total, err = s.ListAssets(ctx, storage.AssetQuery{Category: "str"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestUsersAndTokens(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := &models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: types.RoleAdmin, IsActive: true}
	require.NoError(t, s.CreateUser(ctx, u))
	require.ErrorIs(t, s.CreateUser(ctx, &models.User{Name: "Other", Email: "admin@example.com"}), storage.ErrDuplicate)

	byEmail, err := s.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	tok := &models.RefreshToken{UserID: u.ID, TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateRefreshToken(ctx, tok))
	require.NoError(t, s.RevokeRefreshToken(ctx, tok.ID))
	require.ErrorIs(t, s.RevokeRefreshToken(ctx, tok.ID), storage.ErrStale)

	tok2 := &models.RefreshToken{UserID: u.ID, TokenHash: "h2", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateRefreshToken(ctx, tok2))
	require.NoError(t, s.RevokeRefreshTokenByHash(ctx, "h2"))
	require.NoError(t, s.RevokeRefreshTokenByHash(ctx, "unknown"))
	got, err := s.GetRefreshTokenByHash(ctx, "h2")
	require.NoError(t, err)
	require.True(t, got.Revoked)
}

func TestStatsQueries(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	m := seedMember(t, s, "Jane", "")
	seedMembership(t, s, m.ID, now.AddDate(0, 0, -1), now.AddDate(0, 0, 29), types.MembershipStatusActive)
	seedMembership(t, s, m.ID, now.AddDate(0, -3, 0), now.AddDate(0, -2, 0), types.MembershipStatusActive)
	seedMembership(t, s, m.ID, now.AddDate(0, 0, -1), now.AddDate(0, 0, 29), types.MembershipStatusPaused)

	require.NoError(t, s.CreatePayment(ctx, &models.Payment{MemberID: m.ID, Amount: 100, Method: types.PaymentMethodCash, CreatedAt: now}))
	require.NoError(t, s.CreatePayment(ctx, &models.Payment{MemberID: m.ID, Amount: 40, Method: types.PaymentMethodCash, CreatedAt: now}))
	require.NoError(t, s.CreatePayment(ctx, &models.Payment{MemberID: m.ID, Amount: 1000, Method: types.PaymentMethodCard, CreatedAt: monthStart.AddDate(0, -1, 0)}))

	active, err := s.CountActiveMemberships(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, active)

	all, err := s.SumPayments(ctx, time.Time{})
	require.NoError(t, err)
	require.EqualValues(t, 1140, all)
	month, err := s.SumPayments(ctx, monthStart)
	require.NoError(t, err)
	require.EqualValues(t, 140, month)

	methods, err := s.PaymentMethodBreakdown(ctx, monthStart)
	require.NoError(t, err)
	require.Equal(t, []models.MethodBreakdown{{Method: types.PaymentMethodCash, Count: 2, Amount: 140}}, methods)

	statuses, err := s.MembershipStatusBreakdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.StatusCount{
		{Status: types.MembershipStatusActive, Count: 2},
		{Status: types.MembershipStatusPaused, Count: 1},
	}, statuses)

	recent, err := s.RecentPayments(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 3)
}

func TestDailySnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, d := range []string{"2024-06-01", "2024-06-02", "2024-06-03"} {
		require.NoError(t, s.UpsertDailySnapshot(ctx, &models.StatsDailySnapshot{SnapshotDate: d}))
	}
	first, err := s.ListDailySnapshots(ctx, "2024-06-02", "")
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, "2024-06-02", first[0].SnapshotDate)

	origID := first[0].ID
	again := &models.StatsDailySnapshot{SnapshotDate: "2024-06-02"}
	require.NoError(t, s.UpsertDailySnapshot(ctx, again))
	require.Equal(t, origID, again.ID)

	all, err := s.ListDailySnapshots(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestListMembers_HugePageIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedMember(t, s, "Jane", "")

	var (
		items []models.Member
		total int64
		err   error
	)
	require.NotPanics(t, func() {
		items, total, err = s.ListMembers(ctx, storage.MemberQuery{Page: storage.Page{Page: 92233720368547760, Limit: 100}})
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestDeleteMember_UnlinksOtherPayments(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	owner := seedMember(t, s, "Jane", "")
	payer := seedMember(t, s, "John", "")
	ms := seedMembership(t, s, owner.ID, now.Add(-time.Hour), now.Add(time.Hour), types.MembershipStatusActive)
	p := &models.Payment{MemberID: payer.ID, MembershipID: &ms.ID, Amount: 500, Method: types.PaymentMethodCard}
	require.NoError(t, s.CreatePayment(ctx, p))

	require.NoError(t, s.DeleteMember(ctx, owner.ID))

	got, err := s.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MembershipID)
	assert.Nil(t, got.Membership)
	assert.Equal(t, "John", got.Member.FullName)
}

func TestFindOpenAttendance_FollowsCheckOut(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := seedMember(t, s, "Jane", "")
	visit := &models.Attendance{MemberID: m.ID, CheckIn: time.Now(), Source: types.AttendanceSourceManual}
	require.NoError(t, s.CreateAttendance(ctx, visit))

	open, err := s.FindOpenAttendance(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, visit.ID, open.ID)
	require.Equal(t, "Jane", open.Member.FullName)

	require.NoError(t, s.CloseAttendance(ctx, visit.ID, time.Now()))
	_, err = s.FindOpenAttendance(ctx, m.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, s.CloseAttendance(ctx, visit.ID, time.Now()), storage.ErrStale)
}

func TestListDailySnapshots_Bounds(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, d := range []string{"2024-06-03", "2024-06-01", "2024-06-05", "2024-06-02"} {
		require.NoError(t, s.UpsertDailySnapshot(ctx, &models.StatsDailySnapshot{SnapshotDate: d}))
	}
	got, err := s.ListDailySnapshots(ctx, "2024-06-02", "2024-06-03")
	require.NoError(t, err)
	dates := make([]string, 0, len(got))
	for _, snap := range got {
		dates = append(dates, snap.SnapshotDate)
	}
	assert.Equal(t, []string{"2024-06-02", "2024-06-03"}, dates)

	none, err := s.ListDailySnapshots(ctx, "2025-01-01", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
