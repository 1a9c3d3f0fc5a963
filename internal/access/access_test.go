package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schoolmate/schoolmate-core/internal/models"
)

// Mirrors the role/page permission table; every role-page pair is checked
// both through Allowed and through the navigation list.
var permissionTable = map[models.UserRole][]Page{
	models.RoleAdmin: {
		PageDashboard, PageStudents, PageTeachers, PageClasses,
		PageAttendance, PageGrades, PageAnnouncements, PageRatings, PageSettings,
	},
	models.RoleTeacher: {
		PageDashboard, PageStudents, PageTeachers, PageClasses,
		PageAttendance, PageGrades, PageAnnouncements,
	},
	models.RoleStudent: {
		PageDashboard, PageClasses, PageGrades, PageAnnouncements, PageRatings,
	},
	models.RoleGuest: {
		PageAnnouncements,
	},
}

var allPages = []Page{
	PageDashboard, PageStudents, PageTeachers, PageClasses,
	PageAttendance, PageGrades, PageAnnouncements, PageRatings, PageSettings,
}

func TestPagesFor_MatchesPermissionTable(t *testing.T) {
	for role, expected := range permissionTable {
		assert.Equal(t, expected, PagesFor(role), "role %s", role)
	}
}

func TestAllowed_ConsistentWithNavigation(t *testing.T) {
	for role, visible := range permissionTable {
		set := map[Page]bool{}
		for _, p := range visible {
			set[p] = true
		}
		for _, p := range allPages {
			assert.Equal(t, set[p], Allowed(role, p), "role %s page %s", role, p)
		}
	}
}

func TestActionPredicates(t *testing.T) {
	assert.True(t, CanPublishAnnouncements(models.RoleAdmin))
	assert.True(t, CanPublishAnnouncements(models.RoleTeacher))
	assert.False(t, CanPublishAnnouncements(models.RoleStudent))
	assert.False(t, CanPublishAnnouncements(models.RoleGuest))

	assert.True(t, CanViewRatings(models.RoleAdmin))
	assert.False(t, CanViewRatings(models.RoleTeacher))

	assert.True(t, CanSubmitRating(models.RoleStudent))
	assert.False(t, CanSubmitRating(models.RoleAdmin))

	assert.True(t, CanManageRecords(models.RoleAdmin))
	assert.False(t, CanManageRecords(models.RoleTeacher))
}
