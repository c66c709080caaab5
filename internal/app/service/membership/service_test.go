package membership

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/internal/app/storage/memory"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/apperr"
	"github.com/fatflowers/gymdesk/pkg/logctx"
	"github.com/fatflowers/gymdesk/pkg/types"
)

type fixture struct {
	svc    *Service
	store  *memory.Store
	member *models.Member
	plan   *models.Plan
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m := &models.Member{FullName: "Jane"}
	require.NoError(t, store.CreateMember(ctx, m))
	p := &models.Plan{Name: "Monthly", Price: 3000, DurationDays: 30, IsActive: true}
	require.NoError(t, store.CreatePlan(ctx, p))

	svc := NewService(store, zap.NewNop().Sugar())
	svc.now = func() time.Time { return now }
	return &fixture{svc: svc, store: store, member: m, plan: p, now: now}
}

func TestCreate_EndDateFromPlanDuration(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ms, err := f.svc.Create(context.Background(), CreateInput{MemberID: f.member.ID, PlanID: f.plan.ID, StartDate: start}, "op-1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), ms.EndDate)
	assert.Equal(t, types.MembershipStatusActive, ms.Status)
	require.NotNil(t, ms.Plan)
	assert.Equal(t, "Monthly", ms.Plan.Name)
}

func TestCreate_FutureStartIsStillActive(t *testing.T) {
	f := newFixture(t)
	start := f.now.Add(10 * 24 * time.Hour)

	ms, err := f.svc.Create(context.Background(), CreateInput{MemberID: f.member.ID, PlanID: f.plan.ID, StartDate: start}, "")
	require.NoError(t, err)
	assert.Equal(t, types.MembershipStatusActive, ms.Status)
	assert.False(t, ms.ActiveAt(f.now))
}

func TestCreate_MissingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{MemberID: f.member.ID, PlanID: "missing", StartDate: f.now}, "")
	require.ErrorIs(t, err, ErrPlanNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.Create(ctx, CreateInput{MemberID: "missing", PlanID: f.plan.ID, StartDate: f.now}, "")
	require.ErrorIs(t, err, ErrMemberNotFound)

	items, err := f.svc.ListByMember(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreate_RejectsOutOfRangePlanDuration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := &models.Plan{Name: "Forever", Price: 1, DurationDays: 110000, IsActive: true}
	require.NoError(t, f.store.CreatePlan(ctx, long))

	_, err := f.svc.Create(ctx, CreateInput{MemberID: f.member.ID, PlanID: long.ID, StartDate: f.now}, "")
	require.ErrorIs(t, err, ErrPlanDuration)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	items, err := f.svc.ListByMember(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreate_AllowsOverlappingMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := CreateInput{MemberID: f.member.ID, PlanID: f.plan.ID, StartDate: f.now}

	_, err := f.svc.Create(ctx, in, "")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, in, "")
	require.NoError(t, err)

	items, err := f.svc.ListByMember(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestPatch_FlatOverwriteFromAnyStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ms, err := f.svc.Create(ctx, CreateInput{MemberID: f.member.ID, PlanID: f.plan.ID, StartDate: f.now}, "")
	require.NoError(t, err)

	steps := []struct {
		action types.MembershipAction
		want   types.MembershipStatus
	}{
		{types.MembershipActionExpire, types.MembershipStatusExpired},
		{types.MembershipActionResume, types.MembershipStatusActive},
		{types.MembershipActionPause, types.MembershipStatusPaused},
		{types.MembershipActionPause, types.MembershipStatusPaused},
		{types.MembershipActionExpire, types.MembershipStatusExpired},
		{types.MembershipActionPause, types.MembershipStatusPaused},
	}
	for _, st := range steps {
		got, err := f.svc.Patch(ctx, ms.ID, st.action, "op-1")
		require.NoError(t, err, st.action)
		assert.Equal(t, st.want, got.Status, st.action)
		assert.Equal(t, ms.EndDate, got.EndDate)
	}
}

func TestPatch_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ms, err := f.svc.Create(ctx, CreateInput{MemberID: f.member.ID, PlanID: f.plan.ID, StartDate: f.now}, "")
	require.NoError(t, err)

	_, err = f.svc.Patch(ctx, ms.ID, "renew", "")
	require.ErrorIs(t, err, ErrInvalidAction)
	_, err = f.svc.Patch(ctx, ms.ID, types.MembershipActionCreate, "")
	require.ErrorIs(t, err, ErrInvalidAction)
	_, err = f.svc.Patch(ctx, "missing", types.MembershipActionPause, "")
	require.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestHistory_RecordsEveryChange(t *testing.T) {
	f := newFixture(t)
	ctx := logctx.WithTraceID(context.Background(), "trace-1")
	ms, err := f.svc.Create(ctx, CreateInput{MemberID: f.member.ID, PlanID: f.plan.ID, StartDate: f.now}, "op-1")
	require.NoError(t, err)

	f.svc.now = func() time.Time { return f.now.Add(time.Hour) }
	_, err = f.svc.Patch(ctx, ms.ID, types.MembershipActionPause, "op-2")
	require.NoError(t, err)

	logs, err := f.svc.History(ctx, ms.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	pause := logs[0]
	assert.Equal(t, types.MembershipActionPause, pause.Action)
	assert.Equal(t, types.MembershipStatusActive, pause.Before.Data().Status)
	assert.Equal(t, types.MembershipStatusPaused, pause.After.Data().Status)
	assert.Equal(t, "op-2", pause.Extra["operator_id"])
	assert.Equal(t, "trace-1", pause.Extra["trace_id"])

	create := logs[1]
	assert.Equal(t, types.MembershipActionCreate, create.Action)
	assert.Nil(t, create.Before.Data())
	assert.Equal(t, ms.ID, create.After.Data().ID)

	_, err = f.svc.History(ctx, "missing")
	require.ErrorIs(t, err, ErrMembershipNotFound)
}
