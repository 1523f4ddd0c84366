package models

// Role values for the four participant kinds.
const (
	RoleDiningHall   = "dining-hall"
	RoleStudentGroup = "student-group"
	RoleFoodBank     = "food-bank"
	RoleStudent      = "student"
)

func ValidRole(role string) bool {
	switch role {
	case RoleDiningHall, RoleStudentGroup, RoleFoodBank, RoleStudent:
		return true
	}
	return false
}

// CanDonate reports whether a role is allowed to post donations.
func CanDonate(role string) bool {
	return role == RoleDiningHall || role == RoleStudentGroup
}

// CanReserve reports whether a role is allowed to claim donations.
func CanReserve(role string) bool {
	return role == RoleStudent || role == RoleFoodBank || role == RoleStudentGroup
}
