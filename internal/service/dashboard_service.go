package service

import (
	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/access"
	"github.com/schoolmate/schoolmate-core/internal/models"
	"github.com/schoolmate/schoolmate-core/internal/store"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
)

const recentAnnouncementLimit = 5

// DashboardService composes the landing views: KPI counts for admins and
// teachers, an own-data variant for students.
type DashboardService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(st *store.Store, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: st, logger: logger}
}

// Overview is the admin/teacher dashboard.
type Overview struct {
	TotalStudents int                   `json:"totalStudents"`
	TotalTeachers int                   `json:"totalTeachers"`
	TotalClasses  int                   `json:"totalClasses"`
	Recent        []models.Announcement `json:"recent"`
}

// StudentOverview is the student's own-data dashboard.
type StudentOverview struct {
	Student       models.Student        `json:"student"`
	ClassName     string                `json:"className"`
	Marks         []StudentMarkRow      `json:"marks"`
	PresentDates  []PresentDate         `json:"presentDates"`
	Announcements []models.Announcement `json:"announcements"`
}

// PresentDate is one day the student was marked present.
type PresentDate struct {
	Date      string `json:"date"`
	ClassName string `json:"className"`
}

// Summary returns the KPI counts matching the current array lengths, plus
// the most recent announcements.
func (s *DashboardService) Summary(actor access.Actor) (*Overview, error) {
	switch actor.Role {
	case models.RoleAdmin, models.RoleTeacher:
	case models.RoleGuest:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	out := &Overview{}
	s.store.View(func(doc *models.Document) {
		out.TotalStudents = len(doc.Students)
		out.TotalTeachers = len(doc.Teachers)
		out.TotalClasses = len(doc.Classes)
		out.Recent = make([]models.Announcement, 0, recentAnnouncementLimit)
		for i := len(doc.Announcements) - 1; i >= 0 && len(out.Recent) < recentAnnouncementLimit; i-- {
			out.Recent = append(out.Recent, doc.Announcements[i])
		}
	})
	return out, nil
}

// StudentSummary returns the student's own profile, marks, attendance and
// the full announcement feed.
func (s *DashboardService) StudentSummary(actor access.Actor) (*StudentOverview, error) {
	if actor.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	var out *StudentOverview
	s.store.View(func(doc *models.Document) {
		st := doc.StudentByID(actor.UserID)
		if st == nil {
			return
		}
		o := &StudentOverview{Student: *st, ClassName: doc.ClassName(st.ClassID)}

		o.Marks = make([]StudentMarkRow, 0)
		for _, g := range doc.Grades {
			if g.StudentID == st.ID {
				o.Marks = append(o.Marks, StudentMarkRow{SubjectName: doc.SubjectName(g.SubjectID), Marks: g.Marks})
			}
		}

		o.PresentDates = make([]PresentDate, 0)
		for _, rec := range doc.Attendance {
			for _, e := range rec.Records {
				if e.StudentID == st.ID && e.Present {
					o.PresentDates = append(o.PresentDates, PresentDate{Date: rec.Date, ClassName: doc.ClassName(rec.ClassID)})
					break
				}
			}
		}

		o.Announcements = make([]models.Announcement, 0, len(doc.Announcements))
		for i := len(doc.Announcements) - 1; i >= 0; i-- {
			o.Announcements = append(o.Announcements, doc.Announcements[i])
		}
		out = o
	})
	if out == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student record not found")
	}
	return out, nil
}
