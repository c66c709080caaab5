package memory

import (
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/fatflowers/gymdesk/internal/models"
)

const (
	tblMembers        = "members"
	tblPlans          = "plans"
	tblMemberships    = "memberships"
	tblMembershipLogs = "membership_logs"
	tblAttendance     = "attendance"
	tblPayments       = "payments"
	tblExpenses       = "expenses"
	tblAssets         = "assets"
	tblUsers          = "users"
	tblTokens         = "refresh_tokens"
	tblSnapshots      = "stats_daily_snapshots"
)

const (
	idxID         = "id"
	idxMember     = "member"
	idxPlan       = "plan"
	idxMembership = "membership"
	idxOpen       = "open"
	idxCategory   = "category"
	idxEmail      = "email"
	idxHash       = "hash"
)

func idIndex() *memdb.IndexSchema {
	return &memdb.IndexSchema{Name: idxID, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}}
}

// fieldIndex is a secondary index on a string field. Rows with an empty or
// nil value are left out of it.
func fieldIndex(name, field string, unique bool) *memdb.IndexSchema {
	return &memdb.IndexSchema{
		Name:         name,
		Unique:       unique,
		AllowMissing: true,
		Indexer:      &memdb.StringFieldIndex{Field: field},
	}
}

func table(name string, indexes ...*memdb.IndexSchema) *memdb.TableSchema {
	t := &memdb.TableSchema{Name: name, Indexes: map[string]*memdb.IndexSchema{}}
	for _, idx := range indexes {
		t.Indexes[idx.Name] = idx
	}
	return t
}

// openVisitIndex indexes attendance rows that have no check-out yet, keyed by
// member id. It is the in-memory counterpart of the partial unique index
// idx_attendance_open_member.
type openVisitIndex struct{}

func (openVisitIndex) FromObject(raw interface{}) (bool, []byte, error) {
	a, ok := raw.(*models.Attendance)
	if !ok {
		return false, nil, fmt.Errorf("open visit index: unexpected type %T", raw)
	}
	if a.CheckOut != nil || a.MemberID == "" {
		return false, nil, nil
	}
	return true, []byte(a.MemberID + "\x00"), nil
}

func (openVisitIndex) FromArgs(args ...interface{}) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("open visit index: want 1 argument, got %d", len(args))
	}
	id, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("open visit index: argument must be a string: %#v", args[0])
	}
	return []byte(id + "\x00"), nil
}

func schema() *memdb.DBSchema {
	tables := []*memdb.TableSchema{
		table(tblMembers, idIndex()),
		table(tblPlans, idIndex()),
		table(tblMemberships, idIndex(),
			fieldIndex(idxMember, "MemberID", false),
			fieldIndex(idxPlan, "PlanID", false)),
		table(tblMembershipLogs, idIndex(),
			fieldIndex(idxMembership, "MembershipID", false)),
		table(tblAttendance, idIndex(),
			fieldIndex(idxMember, "MemberID", false),
			&memdb.IndexSchema{Name: idxOpen, Unique: true, AllowMissing: true, Indexer: openVisitIndex{}}),
		table(tblPayments, idIndex(),
			fieldIndex(idxMember, "MemberID", false),
			fieldIndex(idxMembership, "MembershipID", false)),
		table(tblExpenses, idIndex(),
			fieldIndex(idxCategory, "Category", false)),
		table(tblAssets, idIndex()),
		table(tblUsers, idIndex(),
			fieldIndex(idxEmail, "Email", true)),
		table(tblTokens, idIndex(),
			fieldIndex(idxHash, "TokenHash", true)),
		// Snapshots are keyed by their calendar day so the id index iterates in date order.
		table(tblSnapshots, &memdb.IndexSchema{Name: idxID, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "SnapshotDate"}}),
	}
	s := &memdb.DBSchema{Tables: map[string]*memdb.TableSchema{}}
	for _, t := range tables {
		s.Tables[t.Name] = t
	}
	return s
}
