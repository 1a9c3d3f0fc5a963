package models

import "time"

// Announcement is an append-only feed entry. There is no edit or delete
// operation.
type Announcement struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Date  time.Time `json:"date"`
	By    string    `json:"by,omitempty"`
}

// Rating is a student-submitted teacher rating, visible only to admins.
type Rating struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacherId"`
	SubjectID string    `json:"subjectId"`
	StudentID string    `json:"studentId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Date      time.Time `json:"date"`
}

const (
	// RatingMin and RatingMax bound a valid rating value.
	RatingMin = 1
	RatingMax = 5
)
