package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/gymdesk/pkg/types"
)

func TestTableNames(t *testing.T) {
	require.Equal(t, "member", Member{}.TableName())
	require.Equal(t, "member", MemberBrief{}.TableName())
	require.Equal(t, "membership_log", MembershipLog{}.TableName())
	require.Equal(t, "app_user", User{}.TableName())
	require.Equal(t, "stats_daily_snapshot", StatsDailySnapshot{}.TableName())
	require.Len(t, All(), 11)
}

func TestMembershipEndDate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), MembershipEndDate(start, 30))
	require.Equal(t, int64(30*86400000), MembershipEndDate(start, 30).Sub(start).Milliseconds())
}

func TestMembershipEndDate_MaxDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := MembershipEndDate(start, MaxDurationDays)
	require.True(t, end.After(start))
	require.Equal(t, 2123, end.Year())

	require.True(t, ValidDurationDays(1))
	require.True(t, ValidDurationDays(MaxDurationDays))
	require.False(t, ValidDurationDays(0))
	require.False(t, ValidDurationDays(110000))
}

func TestMembershipEndDate_IgnoresDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// spans the 2024-03-10 spring-forward
	start := time.Date(2024, 3, 9, 12, 0, 0, 0, ny)
	end := MembershipEndDate(start, 2)
	require.Equal(t, 48*time.Hour, end.Sub(start))
	require.Equal(t, 13, end.Hour())
}

func TestMembership_ActiveAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	m := &Membership{
		Status:    types.MembershipStatusActive,
		StartDate: now.AddDate(0, 0, -10),
		EndDate:   now.AddDate(0, 0, 20),
	}
	require.True(t, m.ActiveAt(now))
	require.True(t, m.ActiveAt(m.EndDate), "end is inclusive")
	require.True(t, m.ActiveAt(m.StartDate), "start is inclusive")
	require.False(t, m.ActiveAt(m.EndDate.Add(time.Millisecond)))
	require.False(t, m.ActiveAt(m.StartDate.Add(-time.Millisecond)))

	m.Status = types.MembershipStatusPaused
	require.False(t, m.ActiveAt(now))

	var nilMembership *Membership
	require.False(t, nilMembership.ActiveAt(now))
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	b, err := json.Marshal(User{ID: "u1", Email: "a@b.c", PasswordHash: "$2a$10$x"})
	require.NoError(t, err)
	require.NotContains(t, string(b), "$2a$10$x")
	require.NotContains(t, string(b), "passwordHash")
}
