package role

// Role is the access level of a back-office user.
type Role int

const (
	Operator Role = iota
	Supervisor
	Admin
)

func (r Role) String() string {
	switch r {
	case Operator:
		return "operator"
	case Supervisor:
		return "supervisor"
	case Admin:
		return "admin"
	}
	return "unknown"
}
