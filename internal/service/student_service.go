package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/access"
	"github.com/schoolmate/schoolmate-core/internal/models"
	"github.com/schoolmate/schoolmate-core/internal/store"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
	"github.com/schoolmate/schoolmate-core/pkg/metrics"
)

// StudentService serves the students view: role-scoped listing plus the
// admin add/edit/delete forms. Writes go to the User record; the projection
// is recomputed by the store.
type StudentService struct {
	store     *store.Store
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewStudentService constructs the service.
func NewStudentService(st *store.Store, validate *validator.Validate, logger *zap.Logger, m *metrics.Metrics) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: st, validator: validate, logger: logger, metrics: m}
}

// StudentRow is a listing row with the class reference resolved.
type StudentRow struct {
	models.Student
	ClassName string `json:"className"`
}

// CreateStudentRequest describes the add-student form.
type CreateStudentRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	ClassID  string `json:"classId" validate:"required"`
}

// UpdateStudentRequest describes the edit-student form.
type UpdateStudentRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	ClassID string `json:"classId" validate:"required"`
}

// List returns the students visible to the actor: all of them for an admin,
// only those in assigned classes for a teacher. Students are redirected to
// their own dashboard instead.
func (s *StudentService) List(actor access.Actor) ([]StudentRow, error) {
	switch actor.Role {
	case models.RoleAdmin, models.RoleTeacher:
	case models.RoleStudent:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students are limited to self view")
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}

	var rows []StudentRow
	s.store.View(func(doc *models.Document) {
		allowed := func(string) bool { return true }
		if actor.Role == models.RoleTeacher {
			assigned := map[string]bool{}
			if t := doc.TeacherByID(actor.UserID); t != nil {
				for _, id := range t.ClassIDs {
					assigned[id] = true
				}
			}
			allowed = func(classID string) bool { return assigned[classID] }
		}
		rows = make([]StudentRow, 0, len(doc.Students))
		for _, st := range doc.Students {
			if !allowed(st.ClassID) {
				continue
			}
			rows = append(rows, StudentRow{Student: st, ClassName: doc.ClassName(st.ClassID)})
		}
	})
	return rows, nil
}

// Create registers a new student user.
func (s *StudentService) Create(actor access.Actor, req CreateStudentRequest) (*models.Student, error) {
	if !access.CanManageRecords(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid student form")
	}

	id := models.NewID("u")
	err := s.store.Mutate(func(doc *models.Document) error {
		if doc.ClassByID(req.ClassID) == nil {
			return appErrors.Clone(appErrors.ErrValidation, "unknown class")
		}
		doc.Users = append(doc.Users, models.User{
			ID:       id,
			Role:     models.RoleStudent,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
			ClassID:  req.ClassID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordMutation("students", "create")

	return s.projection(id)
}

// Update edits an existing student through its User record.
func (s *StudentService) Update(actor access.Actor, id string, req UpdateStudentRequest) (*models.Student, error) {
	if !access.CanManageRecords(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid student form")
	}

	err := s.store.Mutate(func(doc *models.Document) error {
		user := doc.UserByID(id)
		if user == nil || user.Role != models.RoleStudent {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if doc.ClassByID(req.ClassID) == nil {
			return appErrors.Clone(appErrors.ErrValidation, "unknown class")
		}
		user.Name = req.Name
		user.Email = req.Email
		user.Phone = req.Phone
		user.ClassID = req.ClassID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordMutation("students", "update")

	return s.projection(id)
}

// Delete removes the student user and its projection.
func (s *StudentService) Delete(actor access.Actor, id string) error {
	if !access.CanManageRecords(actor.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}

	err := s.store.Mutate(func(doc *models.Document) error {
		kept := doc.Users[:0]
		found := false
		for _, u := range doc.Users {
			if u.ID == id && u.Role == models.RoleStudent {
				found = true
				continue
			}
			kept = append(kept, u)
		}
		if !found {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		doc.Users = kept
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.RecordMutation("students", "delete")
	return nil
}

func (s *StudentService) projection(id string) (*models.Student, error) {
	var out *models.Student
	s.store.View(func(doc *models.Document) {
		if st := doc.StudentByID(id); st != nil {
			copied := *st
			out = &copied
		}
	})
	if out == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "projection missing after write")
	}
	return out, nil
}
