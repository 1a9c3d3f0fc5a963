package service

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/access"
	"github.com/schoolmate/schoolmate-core/internal/models"
	"github.com/schoolmate/schoolmate-core/internal/store"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
	"github.com/schoolmate/schoolmate-core/pkg/metrics"
)

// GradeService serves the grade sheet. Loading a (class, subject) sheet with
// no entries yields blank marks without persisting; saving upserts one entry
// per (class, subject, student) triple.
type GradeService struct {
	store     *store.Store
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewGradeService constructs the service.
func NewGradeService(st *store.Store, validate *validator.Validate, logger *zap.Logger, m *metrics.Metrics) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{store: st, validator: validate, logger: logger, metrics: m}
}

// GradeRow is one student line on a sheet. Marks is nil when no entry exists
// yet.
type GradeRow struct {
	StudentID string   `json:"studentId"`
	Roll      string   `json:"roll"`
	Name      string   `json:"name"`
	Marks     *float64 `json:"marks"`
}

// GradeSheet is the marks table for one class and subject.
type GradeSheet struct {
	ClassID     string     `json:"classId"`
	ClassName   string     `json:"className"`
	SubjectID   string     `json:"subjectId"`
	SubjectName string     `json:"subjectName"`
	Rows        []GradeRow `json:"rows"`
}

// MarkInput carries one raw form value. Non-numeric input coerces to 0;
// numeric input outside [0,100] is rejected.
type MarkInput struct {
	StudentID string `json:"studentId" validate:"required"`
	Marks     string `json:"marks"`
}

// StudentMarkRow is one line of a student's own marks listing.
type StudentMarkRow struct {
	SubjectName string  `json:"subjectName"`
	Marks       float64 `json:"marks"`
}

// Sheet loads the marks table, enforcing subject assignment for teachers.
func (s *GradeService) Sheet(actor access.Actor, classID, subjectID string) (*GradeSheet, error) {
	if err := s.authorize(actor, subjectID); err != nil {
		return nil, err
	}

	sheet := &GradeSheet{ClassID: classID, SubjectID: subjectID}
	s.store.View(func(doc *models.Document) {
		sheet.ClassName = doc.ClassName(classID)
		sheet.SubjectName = doc.SubjectName(subjectID)

		marks := map[string]float64{}
		for _, g := range doc.Grades {
			if g.ClassID == classID && g.SubjectID == subjectID {
				marks[g.StudentID] = g.Marks
			}
		}

		for _, st := range doc.Students {
			if st.ClassID != classID {
				continue
			}
			row := GradeRow{StudentID: st.ID, Roll: st.Roll, Name: st.Name}
			if m, ok := marks[st.ID]; ok {
				value := m
				row.Marks = &value
			}
			sheet.Rows = append(sheet.Rows, row)
		}
	})
	return sheet, nil
}

// Save upserts the submitted marks, find-or-create keyed by
// (class, subject, student).
func (s *GradeService) Save(actor access.Actor, classID, subjectID string, inputs []MarkInput) error {
	if err := s.authorize(actor, subjectID); err != nil {
		return err
	}

	parsed := make(map[string]float64, len(inputs))
	for _, in := range inputs {
		if err := s.validator.Struct(in); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid marks row")
		}
		value, err := coerceMarks(in.Marks)
		if err != nil {
			return err
		}
		parsed[in.StudentID] = value
	}

	err := s.store.Mutate(func(doc *models.Document) error {
	next:
		// walk inputs, not the parsed map, so new entries land in form order
		for _, in := range inputs {
			value := parsed[in.StudentID]
			for i := range doc.Grades {
				g := &doc.Grades[i]
				if g.ClassID == classID && g.SubjectID == subjectID && g.StudentID == in.StudentID {
					g.Marks = value
					continue next
				}
			}
			doc.Grades = append(doc.Grades, models.GradeEntry{
				ID:        models.NewID("g"),
				ClassID:   classID,
				SubjectID: subjectID,
				StudentID: in.StudentID,
				Marks:     value,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.RecordMutation("grades", "save")
	return nil
}

// StudentMarks lists a student's own marks with subjects resolved. A student
// may only read their own; admins and teachers may read any.
func (s *GradeService) StudentMarks(actor access.Actor, studentID string) ([]StudentMarkRow, error) {
	switch actor.Role {
	case models.RoleAdmin, models.RoleTeacher:
	case models.RoleStudent:
		if actor.UserID != studentID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}

	var rows []StudentMarkRow
	s.store.View(func(doc *models.Document) {
		rows = make([]StudentMarkRow, 0)
		for _, g := range doc.Grades {
			if g.StudentID != studentID {
				continue
			}
			rows = append(rows, StudentMarkRow{SubjectName: doc.SubjectName(g.SubjectID), Marks: g.Marks})
		}
	})
	return rows, nil
}

func (s *GradeService) authorize(actor access.Actor, subjectID string) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		assigned := false
		s.store.View(func(doc *models.Document) {
			t := doc.TeacherByID(actor.UserID)
			if t == nil {
				return
			}
			for _, id := range t.SubjectIDs {
				if id == subjectID {
					assigned = true
					return
				}
			}
		})
		if !assigned {
			return appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this subject")
		}
		return nil
	case models.RoleStudent:
		return appErrors.Clone(appErrors.ErrForbidden, "")
	default:
		return appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
}

// coerceMarks parses a raw form value: empty or non-numeric input defaults
// to 0, numeric input outside [0,100] is a validation error.
func coerceMarks(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, nil
	}
	if value < models.MarksMin || value > models.MarksMax {
		return 0, appErrors.Clone(appErrors.ErrValidation, "marks must be between 0 and 100")
	}
	return value, nil
}
