package models

// GradeEntry holds the marks for one student in one subject of one class.
// At most one entry exists per (classId, subjectId, studentId) triple.
type GradeEntry struct {
	ID        string  `json:"id"`
	ClassID   string  `json:"classId"`
	SubjectID string  `json:"subjectId"`
	StudentID string  `json:"studentId"`
	Marks     float64 `json:"marks"`
}

const (
	// MarksMin and MarksMax bound a valid marks value.
	MarksMin = 0
	MarksMax = 100
)
