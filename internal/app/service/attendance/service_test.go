package attendance

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/app/storage/memory"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/types"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	svc := NewService(store, zap.NewNop().Sugar())
	svc.now = func() time.Time { return now }
	return &fixture{svc: svc, store: store}
}

// member creates a member holding one membership with the given window and status.
func (f *fixture) member(t *testing.T, start, end time.Time, status types.MembershipStatus) *models.Member {
	t.Helper()
	ctx := context.Background()
	m := &models.Member{FullName: "Jane Doe", Phone: "0700"}
	require.NoError(t, f.store.CreateMember(ctx, m))
	p := &models.Plan{Name: "Monthly", Price: 3000, DurationDays: 30, IsActive: true}
	require.NoError(t, f.store.CreatePlan(ctx, p))
	require.NoError(t, f.store.CreateMembership(ctx, &models.Membership{
		MemberID: m.ID, PlanID: p.ID, StartDate: start, EndDate: end, Status: status,
	}))
	return m
}

func (f *fixture) activeMember(t *testing.T) *models.Member {
	return f.member(t, now.Add(-24*time.Hour), now.Add(24*time.Hour), types.MembershipStatusActive)
}

func TestCheckIn_Succeeds(t *testing.T) {
	f := newFixture(t)
	m := f.activeMember(t)

	a, err := f.svc.CheckIn(context.Background(), CheckInInput{MemberID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, now, a.CheckIn)
	assert.Nil(t, a.CheckOut)
	assert.Equal(t, types.AttendanceSourceManual, a.Source)
	require.NotNil(t, a.Member)
	assert.Equal(t, "Jane Doe", a.Member.FullName)
}

func TestCheckIn_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown member", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CheckIn(ctx, CheckInInput{MemberID: "missing"})
		require.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("active status but past end date", func(t *testing.T) {
		f := newFixture(t)
		m := f.member(t, now.Add(-60*24*time.Hour), now.Add(-30*24*time.Hour), types.MembershipStatusActive)
		_, err := f.svc.CheckIn(ctx, CheckInInput{MemberID: m.ID})
		require.ErrorIs(t, err, ErrNoActiveMembership)
	})

	t.Run("not started yet", func(t *testing.T) {
		f := newFixture(t)
		m := f.member(t, now.Add(time.Hour), now.Add(30*24*time.Hour), types.MembershipStatusActive)
		_, err := f.svc.CheckIn(ctx, CheckInInput{MemberID: m.ID})
		require.ErrorIs(t, err, ErrNoActiveMembership)
	})

	t.Run("paused", func(t *testing.T) {
		f := newFixture(t)
		m := f.member(t, now.Add(-time.Hour), now.Add(time.Hour), types.MembershipStatusPaused)
		_, err := f.svc.CheckIn(ctx, CheckInInput{MemberID: m.ID})
		require.ErrorIs(t, err, ErrNoActiveMembership)
	})

	t.Run("already checked in", func(t *testing.T) {
		f := newFixture(t)
		m := f.activeMember(t)
		_, err := f.svc.CheckIn(ctx, CheckInInput{MemberID: m.ID, Source: types.AttendanceSourceQRCode})
		require.NoError(t, err)
		_, err = f.svc.CheckIn(ctx, CheckInInput{MemberID: m.ID})
		require.ErrorIs(t, err, ErrAlreadyCheckedIn)
	})

	t.Run("invalid source", func(t *testing.T) {
		f := newFixture(t)
		m := f.activeMember(t)
		_, err := f.svc.CheckIn(ctx, CheckInInput{MemberID: m.ID, Source: "FACE"})
		require.Error(t, err)
	})
}

func TestCheckIn_BoundariesAreInclusive(t *testing.T) {
	f := newFixture(t)
	m := f.member(t, now, now, types.MembershipStatusActive)
	_, err := f.svc.CheckIn(context.Background(), CheckInInput{MemberID: m.ID})
	require.NoError(t, err)
}

func TestCheckOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.activeMember(t)

	a, err := f.svc.CheckIn(ctx, CheckInInput{MemberID: m.ID})
	require.NoError(t, err)

	later := now.Add(90 * time.Minute)
	f.svc.now = func() time.Time { return later }
	out, err := f.svc.CheckOut(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, out.CheckOut)
	assert.Equal(t, later, *out.CheckOut)

	_, err = f.svc.CheckOut(ctx, a.ID)
	require.ErrorIs(t, err, ErrAlreadyCheckedOut)

	_, err = f.svc.CheckOut(ctx, "missing")
	require.ErrorIs(t, err, ErrAttendanceNotFound)

	// a closed visit frees the member to check in again
	_, err = f.svc.CheckIn(ctx, CheckInInput{MemberID: m.ID})
	require.NoError(t, err)
}

func TestCheckIn_ConcurrentExactlyOneSucceeds(t *testing.T) {
	f := newFixture(t)
	m := f.activeMember(t)

	const n = 32
	var ok, already atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.CheckIn(context.Background(), CheckInInput{MemberID: m.ID})
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, ErrAlreadyCheckedIn):
				already.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, n-1, already.Load())

	items, total, err := f.svc.List(context.Background(), storage.AttendanceQuery{MemberID: m.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Nil(t, items[0].CheckOut)
}

func TestCheckOut_ConcurrentExactlyOneSucceeds(t *testing.T) {
	f := newFixture(t)
	m := f.activeMember(t)
	a, err := f.svc.CheckIn(context.Background(), CheckInInput{MemberID: m.ID})
	require.NoError(t, err)

	const n = 16
	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.CheckOut(context.Background(), a.ID); err == nil {
				ok.Add(1)
			} else {
				assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok.Load())
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.activeMember(t)

	for i := 0; i < 3; i++ {
		at := now.Add(time.Duration(i) * time.Hour)
		f.svc.now = func() time.Time { return at }
		a, err := f.svc.CheckIn(ctx, CheckInInput{MemberID: m.ID})
		require.NoError(t, err)
		_, err = f.svc.CheckOut(ctx, a.ID)
		require.NoError(t, err)
	}

	items, total, err := f.svc.List(ctx, storage.AttendanceQuery{Page: storage.Page{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, now.Add(2*time.Hour), items[0].CheckIn)
	assert.Equal(t, now.Add(time.Hour), items[1].CheckIn)
}
