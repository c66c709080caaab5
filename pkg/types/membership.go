package types

type MembershipStatus string

const (
	MembershipStatusActive  MembershipStatus = "ACTIVE"
	MembershipStatusPaused  MembershipStatus = "PAUSED"
	MembershipStatusExpired MembershipStatus = "EXPIRED"
)

var MembershipStatuses = []MembershipStatus{MembershipStatusActive, MembershipStatusPaused, MembershipStatusExpired}

// MembershipAction is a requested status transition.
type MembershipAction string

const (
	MembershipActionCreate MembershipAction = "create"
	MembershipActionPause  MembershipAction = "pause"
	MembershipActionResume MembershipAction = "resume"
	MembershipActionExpire MembershipAction = "expire"
)

// TargetStatus returns the status an action moves a membership to. Create is
// not a patch action.
func (a MembershipAction) TargetStatus() (MembershipStatus, bool) {
	switch a {
	case MembershipActionPause:
		return MembershipStatusPaused, true
	case MembershipActionResume:
		return MembershipStatusActive, true
	case MembershipActionExpire:
		return MembershipStatusExpired, true
	default:
		return "", false
	}
}
