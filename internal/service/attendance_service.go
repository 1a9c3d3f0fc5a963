package service

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/access"
	"github.com/schoolmate/schoolmate-core/internal/models"
	"github.com/schoolmate/schoolmate-core/internal/store"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
	"github.com/schoolmate/schoolmate-core/pkg/metrics"
)

// AttendanceService serves the attendance checklist. Loading a day with no
// record synthesizes an all-present default without persisting it; only an
// explicit save writes, overwriting any prior record for the same
// (class, date) key.
type AttendanceService struct {
	store     *store.Store
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewAttendanceService constructs the service.
func NewAttendanceService(st *store.Store, validate *validator.Validate, logger *zap.Logger, m *metrics.Metrics) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{store: st, validator: validate, logger: logger, metrics: m}
}

// AttendanceRow is one student line on a sheet.
type AttendanceRow struct {
	StudentID string `json:"studentId"`
	Roll      string `json:"roll"`
	Name      string `json:"name"`
	Present   bool   `json:"present"`
}

// AttendanceSheet is the checklist for one class on one date.
type AttendanceSheet struct {
	ClassID   string          `json:"classId"`
	ClassName string          `json:"className"`
	Date      string          `json:"date"`
	Rows      []AttendanceRow `json:"rows"`
	Persisted bool            `json:"persisted"`
}

// PermittedClasses returns the classes the actor may take attendance for:
// every class for an admin, assigned classes for a teacher.
func (s *AttendanceService) PermittedClasses(actor access.Actor) ([]models.Class, error) {
	if !access.Allowed(actor.Role, access.PageAttendance) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you don't have permission to mark attendance")
	}

	var out []models.Class
	s.store.View(func(doc *models.Document) {
		switch actor.Role {
		case models.RoleAdmin:
			out = append([]models.Class(nil), doc.Classes...)
		case models.RoleTeacher:
			t := doc.TeacherByID(actor.UserID)
			if t == nil {
				return
			}
			for _, id := range t.ClassIDs {
				if c := doc.ClassByID(id); c != nil {
					out = append(out, *c)
				}
			}
		}
	})
	if out == nil {
		out = []models.Class{}
	}
	return out, nil
}

// Sheet loads the checklist for a class and date, defaulting every student
// to present when no record exists for the key.
func (s *AttendanceService) Sheet(actor access.Actor, classID, date string) (*AttendanceSheet, error) {
	if err := s.authorize(actor, classID); err != nil {
		return nil, err
	}
	if _, err := time.Parse(models.AttendanceDateLayout, date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}

	sheet := &AttendanceSheet{ClassID: classID, Date: date}
	s.store.View(func(doc *models.Document) {
		sheet.ClassName = doc.ClassName(classID)

		present := map[string]bool{}
		for _, rec := range doc.Attendance {
			if rec.ClassID == classID && rec.Date == date {
				sheet.Persisted = true
				for _, e := range rec.Records {
					present[e.StudentID] = e.Present
				}
				break
			}
		}

		for _, st := range doc.Students {
			if st.ClassID != classID {
				continue
			}
			p := true
			if sheet.Persisted {
				p = present[st.ID]
			}
			sheet.Rows = append(sheet.Rows, AttendanceRow{StudentID: st.ID, Roll: st.Roll, Name: st.Name, Present: p})
		}
	})
	return sheet, nil
}

// Save persists the checklist, find-or-create keyed by (class, date): an
// existing record's presence list is overwritten, never duplicated.
func (s *AttendanceService) Save(actor access.Actor, classID, date string, entries []models.AttendanceEntry) error {
	if err := s.authorize(actor, classID); err != nil {
		return err
	}
	if _, err := time.Parse(models.AttendanceDateLayout, date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}

	err := s.store.Mutate(func(doc *models.Document) error {
		for i := range doc.Attendance {
			if doc.Attendance[i].ClassID == classID && doc.Attendance[i].Date == date {
				doc.Attendance[i].Records = entries
				return nil
			}
		}
		doc.Attendance = append(doc.Attendance, models.AttendanceRecord{
			ID:      models.NewID("att"),
			ClassID: classID,
			Date:    date,
			Records: entries,
		})
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.RecordMutation("attendance", "save")
	return nil
}

func (s *AttendanceService) authorize(actor access.Actor, classID string) error {
	permitted, err := s.PermittedClasses(actor)
	if err != nil {
		return err
	}
	for _, c := range permitted {
		if c.ID == classID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not assigned to this class")
}
