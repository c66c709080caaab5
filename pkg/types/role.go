package types

import "github.com/samber/lo"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleReception Role = "RECEPTION"
	RoleTrainer   Role = "TRAINER"
	RoleMember    Role = "MEMBER"
)

var Roles = []Role{RoleAdmin, RoleReception, RoleTrainer, RoleMember}

func (r Role) Valid() bool { return lo.Contains(Roles, r) }

// Staff roles operate the front desk.
var (
	RolesFrontDesk = []Role{RoleAdmin, RoleReception}
	RolesStaff     = []Role{RoleAdmin, RoleReception, RoleTrainer}
	RolesAdmin     = []Role{RoleAdmin}
)
