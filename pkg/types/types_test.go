package types

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestMembershipAction_TargetStatus(t *testing.T) {
	cases := map[MembershipAction]MembershipStatus{
		MembershipActionPause:  MembershipStatusPaused,
		MembershipActionResume: MembershipStatusActive,
		MembershipActionExpire: MembershipStatusExpired,
	}
	for a, want := range cases {
		got, ok := a.TargetStatus()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	_, ok := MembershipAction("cancel").TargetStatus()
	require.False(t, ok)
	_, ok = MembershipActionCreate.TargetStatus()
	require.False(t, ok)
}

func TestRoleAndSourceValid(t *testing.T) {
	require.True(t, RoleTrainer.Valid())
	require.False(t, Role("OWNER").Valid())
	require.True(t, AttendanceSourceQRCode.Valid())
	require.False(t, AttendanceSource("FACE").Valid())
	require.True(t, ExpenseCategorySupplies.Valid())
	require.False(t, ExpenseCategory("rent").Valid())
}

type row struct {
	ID       string
	Name     string
	Phone    string
	MemberID string
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestFilters_Build(t *testing.T) {
	db := dryRunDB(t)
	var rows []row
	stmt := db.Model(&row{}).
		Where(Filters{
			Eq("member_id", "m1"),
			Or(Contains("name", "jo_n"), Contains("phone", "jo_n")),
		}).
		Find(&rows).Statement

	sql := stmt.SQL.String()
	require.Contains(t, sql, `"member_id" = $1`)
	require.Contains(t, sql, `"name" ILIKE $2`)
	require.Contains(t, sql, ` OR `)
	require.Contains(t, sql, `"phone" ILIKE $3`)
	require.Equal(t, []interface{}{"m1", `%jo\_n%`, `%jo\_n%`}, stmt.Vars)
}

func TestFilters_EmptyMatchesAll(t *testing.T) {
	db := dryRunDB(t)
	var rows []row
	stmt := db.Model(&row{}).Where(Filters{}).Find(&rows).Statement
	require.Contains(t, stmt.SQL.String(), "1=1")
	require.Empty(t, stmt.Vars)
}
