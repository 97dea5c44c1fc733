package utils

import (
	"testing"

	"kiteops/src/types"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"admin":         types.ROLE_ADMIN,
		"Administrator": types.ROLE_ADMIN,
		"SUPERADMIN":    types.ROLE_ADMIN,
		"manager":       types.ROLE_MANAGER,
		"staff":         types.ROLE_MANAGER,
		" mgr ":         types.ROLE_MANAGER,
		"coach":         types.ROLE_INSTRUCTOR,
		"Teacher":       types.ROLE_INSTRUCTOR,
		"student":       types.ROLE_STUDENT,
		"Client":        types.ROLE_STUDENT,
		"customer":      types.ROLE_STUDENT,
		"":              types.ROLE_OUTSIDER,
		"banana":        types.ROLE_OUTSIDER,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeRole(raw), "raw role %q", raw)
	}
}

func TestIsStaffRole(t *testing.T) {
	assert.True(t, IsStaffRole(types.ROLE_ADMIN))
	assert.True(t, IsStaffRole(types.ROLE_MANAGER))
	assert.False(t, IsStaffRole(types.ROLE_INSTRUCTOR))
	assert.False(t, IsStaffRole(types.ROLE_STUDENT))
	assert.False(t, IsStaffRole(types.ROLE_OUTSIDER))
}

func TestShareCode(t *testing.T) {
	assert.Equal(t, "sunset-downwinder-42", ShareCode("Sunset Downwinder", 42))
	assert.Equal(t, "group-booking-7", ShareCode("", 7))
}
