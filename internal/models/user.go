package models

// UserRole represents the available roles for the role gate.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
	// RoleGuest is derived for anonymous sessions; user records never carry it.
	RoleGuest UserRole = "guest"
)

// Valid returns true when the role may appear on a stored user record.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// User is the login record and the source of truth for the Student/Teacher
// projections. The password is a plaintext demo credential compared through
// service.CredentialVerifier; hosts that need real auth plug in the bcrypt
// verifier instead.
type User struct {
	ID       string   `json:"id"`
	Role     UserRole `json:"role"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password"`

	// Student-only relation.
	ClassID string `json:"classId,omitempty"`

	// Teacher-only relations.
	SubjectIDs []string `json:"subjectIds,omitempty"`
	ClassIDs   []string `json:"classIds,omitempty"`
}
