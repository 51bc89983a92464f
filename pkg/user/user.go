package user

type User struct {
	Id    int
	Uid   string
	Name  string
	Email string
	Role  Role
}

// Role is the CMS role of a user. Roles are ordered: an administrator may do
// everything an approver may, an approver everything an editor may.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleApprover      Role = "godkjenner"
	RoleEditor        Role = "redaktor"
	RoleReader        Role = "leser"
)

func (r Role) Valid() bool {
	return r.Rank() > 0
}

// Rank returns 0 for unknown roles.
func (r Role) Rank() int {
	switch r {
	case RoleAdministrator:
		return 4
	case RoleApprover:
		return 3
	case RoleEditor:
		return 2
	case RoleReader:
		return 1
	}
	return 0
}

// AtLeast reports whether r carries the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}
