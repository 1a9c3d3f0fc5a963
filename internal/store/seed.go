package store

import (
	"fmt"
	"math/rand"

	"github.com/schoolmate/schoolmate-core/internal/models"
)

// DefaultDocument returns the first-run document: demo users, empty
// collections. Seed fills in the default catalogs afterwards.
func DefaultDocument() *models.Document {
	return &models.Document{
		Users: []models.User{
			{ID: "u_admin", Role: models.RoleAdmin, Name: "Principal", Email: "principal@school.edu", Phone: "9999000000", Password: "admin123"},
			{ID: "u_t1", Role: models.RoleTeacher, Name: "Ms. Priya", Email: "priya@school.edu", Phone: "9123456780", Password: "teach123", SubjectIDs: []string{}, ClassIDs: []string{"c_10A"}},
			{ID: "u_s1", Role: models.RoleStudent, Name: "Aman Singh", Email: "aman@school.edu", Phone: "9876500001", Password: "stud123", ClassID: "c_10A"},
		},
		Students:      []models.Student{},
		Teachers:      []models.Teacher{},
		Classes:       []models.Class{},
		Subjects:      []models.Subject{},
		Attendance:    []models.AttendanceRecord{},
		Grades:        []models.GradeEntry{},
		Announcements: []models.Announcement{},
		Ratings:       []models.Rating{},
	}
}

// EmptyDocument returns a document with no users, for hosts that opt out of
// the demo data. Seed still backfills the catalogs.
func EmptyDocument() *models.Document {
	doc := &models.Document{}
	ensureCollections(doc)
	return doc
}

// Seed backfills empty top-level collections with the fixed default catalogs
// and recomputes the projections, so the rest of the module can assume
// non-null collections. Idempotent on a seeded document except for
// generating still-missing roll numbers.
func Seed(doc *models.Document) {
	ensureCollections(doc)

	if len(doc.Classes) == 0 {
		doc.Classes = []models.Class{
			{ID: "c_10A", Name: "Class 10A"},
			{ID: "c_10B", Name: "Class 10B"},
		}
	}
	if len(doc.Subjects) == 0 {
		doc.Subjects = []models.Subject{
			{ID: models.NewID("sub"), Name: "Mathematics"},
			{ID: models.NewID("sub"), Name: "Science"},
			{ID: models.NewID("sub"), Name: "English"},
		}
	}

	SyncProjections(doc)
}

// SyncProjections recomputes the Student/Teacher collections from the Users
// collection. Roll numbers are preserved across recomputes and generated
// only when absent.
func SyncProjections(doc *models.Document) {
	rolls := make(map[string]string, len(doc.Students))
	for _, s := range doc.Students {
		if s.Roll != "" {
			rolls[s.ID] = s.Roll
		}
	}

	teachers := make([]models.Teacher, 0, len(doc.Teachers))
	students := make([]models.Student, 0, len(doc.Students))
	for _, u := range doc.Users {
		switch u.Role {
		case models.RoleTeacher:
			teachers = append(teachers, models.Teacher{
				ID:         u.ID,
				Name:       u.Name,
				Email:      u.Email,
				SubjectIDs: orEmpty(u.SubjectIDs),
				ClassIDs:   orEmpty(u.ClassIDs),
			})
		case models.RoleStudent:
			classID := u.ClassID
			if classID == "" && len(doc.Classes) > 0 {
				classID = doc.Classes[0].ID
			}
			roll := rolls[u.ID]
			if roll == "" {
				roll = newRoll()
			}
			students = append(students, models.Student{
				ID:      u.ID,
				Name:    u.Name,
				Roll:    roll,
				Email:   u.Email,
				ClassID: classID,
			})
		}
	}
	doc.Teachers = teachers
	doc.Students = students
}

func ensureCollections(doc *models.Document) {
	if doc.Users == nil {
		doc.Users = []models.User{}
	}
	if doc.Students == nil {
		doc.Students = []models.Student{}
	}
	if doc.Teachers == nil {
		doc.Teachers = []models.Teacher{}
	}
	if doc.Classes == nil {
		doc.Classes = []models.Class{}
	}
	if doc.Subjects == nil {
		doc.Subjects = []models.Subject{}
	}
	if doc.Attendance == nil {
		doc.Attendance = []models.AttendanceRecord{}
	}
	if doc.Grades == nil {
		doc.Grades = []models.GradeEntry{}
	}
	if doc.Announcements == nil {
		doc.Announcements = []models.Announcement{}
	}
	if doc.Ratings == nil {
		doc.Ratings = []models.Rating{}
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func newRoll() string {
	return fmt.Sprintf("R-%d", 100+rand.Intn(900))
}
