package utils

import (
	"fmt"
	"strings"

	"kiteops/src/types"

	"github.com/gosimple/slug"
)

// NormalizeRole is the single place role strings are canonicalized. It runs
// once at authentication time; everything downstream compares against the
// types.ROLE_* constants.
func NormalizeRole(raw string) string {
	role := strings.ToLower(strings.TrimSpace(raw))
	switch role {
	case types.ROLE_ADMIN, "administrator", "superadmin":
		return types.ROLE_ADMIN
	case types.ROLE_MANAGER, "mgr", "management", "staff":
		return types.ROLE_MANAGER
	case types.ROLE_INSTRUCTOR, "coach", "teacher":
		return types.ROLE_INSTRUCTOR
	case types.ROLE_STUDENT, "client", "customer", "member":
		return types.ROLE_STUDENT
	default:
		return types.ROLE_OUTSIDER
	}
}

func IsStaffRole(role string) bool {
	return role == types.ROLE_ADMIN || role == types.ROLE_MANAGER
}

func ShareCode(title string, id uint) string {
	if title == "" {
		title = "group-booking"
	}
	return fmt.Sprintf("%s-%d", slug.Make(title), id)
}
