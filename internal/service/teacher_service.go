package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/access"
	"github.com/schoolmate/schoolmate-core/internal/models"
	"github.com/schoolmate/schoolmate-core/internal/store"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
	"github.com/schoolmate/schoolmate-core/pkg/metrics"
)

// TeacherService serves the teachers view and the admin assignment forms.
type TeacherService struct {
	store     *store.Store
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewTeacherService constructs the service.
func NewTeacherService(st *store.Store, validate *validator.Validate, logger *zap.Logger, m *metrics.Metrics) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{store: st, validator: validate, logger: logger, metrics: m}
}

// TeacherRow is a listing row with subject references resolved.
type TeacherRow struct {
	models.Teacher
	SubjectNames string `json:"subjectNames"`
}

// TeacherForm describes the add/edit-teacher form.
type TeacherForm struct {
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Phone      string   `json:"phone"`
	Password   string   `json:"password"`
	SubjectIDs []string `json:"subjectIds"`
	ClassIDs   []string `json:"classIds"`
}

// List returns all teachers for admin and teacher roles.
func (s *TeacherService) List(actor access.Actor) ([]TeacherRow, error) {
	if !access.Allowed(actor.Role, access.PageTeachers) {
		if actor.Role == models.RoleGuest {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no permission to view teachers")
	}

	var rows []TeacherRow
	s.store.View(func(doc *models.Document) {
		rows = make([]TeacherRow, 0, len(doc.Teachers))
		for _, t := range doc.Teachers {
			names := make([]string, 0, len(t.SubjectIDs))
			for _, id := range t.SubjectIDs {
				if sub := doc.SubjectByID(id); sub != nil {
					names = append(names, sub.Name)
				}
			}
			joined := strings.Join(names, ", ")
			if joined == "" {
				joined = models.Placeholder
			}
			rows = append(rows, TeacherRow{Teacher: t, SubjectNames: joined})
		}
	})
	return rows, nil
}

// Create registers a new teacher user with its assignments.
func (s *TeacherService) Create(actor access.Actor, req TeacherForm) (*models.Teacher, error) {
	if !access.CanManageRecords(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid teacher form")
	}

	id := models.NewID("u")
	err := s.store.Mutate(func(doc *models.Document) error {
		if err := validateAssignments(doc, req.SubjectIDs, req.ClassIDs); err != nil {
			return err
		}
		doc.Users = append(doc.Users, models.User{
			ID:         id,
			Role:       models.RoleTeacher,
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			Password:   req.Password,
			SubjectIDs: req.SubjectIDs,
			ClassIDs:   req.ClassIDs,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordMutation("teachers", "create")

	return s.projection(id)
}

// Update edits an existing teacher through its User record.
func (s *TeacherService) Update(actor access.Actor, id string, req TeacherForm) (*models.Teacher, error) {
	if !access.CanManageRecords(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid teacher form")
	}

	err := s.store.Mutate(func(doc *models.Document) error {
		user := doc.UserByID(id)
		if user == nil || user.Role != models.RoleTeacher {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		if err := validateAssignments(doc, req.SubjectIDs, req.ClassIDs); err != nil {
			return err
		}
		user.Name = req.Name
		user.Email = req.Email
		user.Phone = req.Phone
		user.SubjectIDs = req.SubjectIDs
		user.ClassIDs = req.ClassIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordMutation("teachers", "update")

	return s.projection(id)
}

// Delete removes the teacher user and its projection.
func (s *TeacherService) Delete(actor access.Actor, id string) error {
	if !access.CanManageRecords(actor.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}

	err := s.store.Mutate(func(doc *models.Document) error {
		kept := doc.Users[:0]
		found := false
		for _, u := range doc.Users {
			if u.ID == id && u.Role == models.RoleTeacher {
				found = true
				continue
			}
			kept = append(kept, u)
		}
		if !found {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		doc.Users = kept
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.RecordMutation("teachers", "delete")
	return nil
}

func (s *TeacherService) projection(id string) (*models.Teacher, error) {
	var out *models.Teacher
	s.store.View(func(doc *models.Document) {
		if t := doc.TeacherByID(id); t != nil {
			copied := *t
			out = &copied
		}
	})
	if out == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "projection missing after write")
	}
	return out, nil
}

func validateAssignments(doc *models.Document, subjectIDs, classIDs []string) error {
	for _, id := range subjectIDs {
		if doc.SubjectByID(id) == nil {
			return appErrors.Clone(appErrors.ErrValidation, "unknown subject")
		}
	}
	for _, id := range classIDs {
		if doc.ClassByID(id) == nil {
			return appErrors.Clone(appErrors.ErrValidation, "unknown class")
		}
	}
	return nil
}
