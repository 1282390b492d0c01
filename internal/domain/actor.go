package domain

type Role string

const (
	RoleManager Role = "MANAGER"
	RoleOwner   Role = "OWNER"
	RoleWaiter  Role = "WAITER"
	RoleCook    Role = "COOK"
	RoleStaff   Role = "STAFF"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleOwner, RoleWaiter, RoleCook, RoleStaff:
		return true
	}
	return false
}

// Actor is the already-resolved tenant context for one request. Authentication
// happens upstream; every workflow call receives this explicitly instead of
// reading it from request-global state.
type Actor struct {
	RestaurantID int
	Role         Role
}
