package models

// Student is the projection of a User with role student. It is recomputed
// from the Users collection on every user mutation; the roll number is the
// only projection-local state and survives recomputes.
type Student struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Roll    string `json:"roll"`
	Email   string `json:"email"`
	ClassID string `json:"classId"`
}

// Teacher is the projection of a User with role teacher.
type Teacher struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	SubjectIDs []string `json:"subjectIds"`
	ClassIDs   []string `json:"classIds"`
}
