package access

import "github.com/schoolmate/schoolmate-core/internal/models"

// Page identifies a navigable view.
type Page string

const (
	PageDashboard     Page = "dashboard"
	PageStudents      Page = "students"
	PageTeachers      Page = "teachers"
	PageClasses       Page = "classes"
	PageAttendance    Page = "attendance"
	PageGrades        Page = "grades"
	PageAnnouncements Page = "announcements"
	PageRatings       Page = "ratings"
	PageSettings      Page = "settings"
)

// Actor is the authenticated principal role-scoped operations run as.
type Actor struct {
	UserID string
	Role   models.UserRole
}

// Guest is the anonymous actor.
var Guest = Actor{Role: models.RoleGuest}

// pageOrder fixes the navigation ordering for every role.
var pageOrder = []Page{
	PageDashboard,
	PageStudents,
	PageTeachers,
	PageClasses,
	PageAttendance,
	PageGrades,
	PageAnnouncements,
	PageRatings,
	PageSettings,
}

// visibility is the role/page permission table. A page absent from a role's
// set renders as a "no permission" placeholder, never a hard failure.
var visibility = map[models.UserRole]map[Page]bool{
	models.RoleAdmin: {
		PageDashboard:     true,
		PageStudents:      true,
		PageTeachers:      true,
		PageClasses:       true,
		PageAttendance:    true,
		PageGrades:        true,
		PageAnnouncements: true,
		PageRatings:       true,
		PageSettings:      true,
	},
	models.RoleTeacher: {
		PageDashboard:     true,
		PageStudents:      true, // own classes only
		PageTeachers:      true,
		PageClasses:       true,
		PageAttendance:    true, // assigned classes only
		PageGrades:        true, // assigned subjects only
		PageAnnouncements: true,
	},
	models.RoleStudent: {
		PageDashboard:     true, // own-data variant
		PageClasses:       true,
		PageGrades:        true, // view-own only
		PageAnnouncements: true, // view-only
		PageRatings:       true, // create-own only
	},
	models.RoleGuest: {
		PageAnnouncements: true, // view-only
	},
}

// PagesFor returns the ordered list of pages visible to the role.
func PagesFor(role models.UserRole) []Page {
	allowed := visibility[role]
	pages := make([]Page, 0, len(allowed))
	for _, p := range pageOrder {
		if allowed[p] {
			pages = append(pages, p)
		}
	}
	return pages
}

// Allowed reports whether the role may see the page at all.
func Allowed(role models.UserRole, page Page) bool {
	return visibility[role][page]
}

// CanPublishAnnouncements reports whether the role may create feed entries.
func CanPublishAnnouncements(role models.UserRole) bool {
	return role == models.RoleAdmin || role == models.RoleTeacher
}

// CanViewRatings restricts the ratings listing to admins.
func CanViewRatings(role models.UserRole) bool {
	return role == models.RoleAdmin
}

// CanSubmitRating restricts rating submission to students.
func CanSubmitRating(role models.UserRole) bool {
	return role == models.RoleStudent
}

// CanManageRecords restricts entity add/edit/delete and settings to admins.
func CanManageRecords(role models.UserRole) bool {
	return role == models.RoleAdmin
}
