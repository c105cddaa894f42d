package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleEmployee, PermissionAttendanceCreate))
	assert.False(t, HasPermission(RoleEmployee, PermissionAttendanceViewAll))
	assert.True(t, HasPermission(RoleManager, PermissionAttendanceCorrect))
	assert.False(t, HasPermission(RoleManager, PermissionReportsExport))
	assert.True(t, HasPermission(RoleOwner, PermissionReportsExport))
	assert.False(t, HasPermission(Role("guest"), PermissionAttendanceViewOwn))
}

func TestRole(t *testing.T) {
	assert.True(t, RoleOwner.IsManager())
	assert.True(t, RoleManager.IsManager())
	assert.False(t, RoleEmployee.IsManager())
	assert.True(t, RoleEmployee.IsValid())
	assert.False(t, Role("pending").IsValid())
}
