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

// CatalogService manages the flat Class and Subject catalogs: visible to any
// authenticated role, admin-managed.
type CatalogService struct {
	store     *store.Store
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewCatalogService constructs the service.
func NewCatalogService(st *store.Store, validate *validator.Validate, logger *zap.Logger, m *metrics.Metrics) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{store: st, validator: validate, logger: logger, metrics: m}
}

// CatalogForm is the add/edit form for either catalog.
type CatalogForm struct {
	Name string `json:"name" validate:"required"`
}

// Classes lists the class catalog.
func (s *CatalogService) Classes(actor access.Actor) ([]models.Class, error) {
	if !access.Allowed(actor.Role, access.PageClasses) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	var out []models.Class
	s.store.View(func(doc *models.Document) {
		out = append([]models.Class(nil), doc.Classes...)
	})
	return out, nil
}

// Subjects lists the subject catalog.
func (s *CatalogService) Subjects(actor access.Actor) ([]models.Subject, error) {
	if !access.Allowed(actor.Role, access.PageClasses) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	var out []models.Subject
	s.store.View(func(doc *models.Document) {
		out = append([]models.Subject(nil), doc.Subjects...)
	})
	return out, nil
}

// CreateClass appends a new class.
func (s *CatalogService) CreateClass(actor access.Actor, req CatalogForm) (*models.Class, error) {
	if !access.CanManageRecords(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "class name required")
	}
	created := models.Class{ID: models.NewID("c"), Name: req.Name}
	if err := s.store.Mutate(func(doc *models.Document) error {
		doc.Classes = append(doc.Classes, created)
		return nil
	}); err != nil {
		return nil, err
	}
	s.metrics.RecordMutation("classes", "create")
	return &created, nil
}

// RenameClass edits an existing class in place.
func (s *CatalogService) RenameClass(actor access.Actor, id string, req CatalogForm) error {
	if !access.CanManageRecords(actor.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, "class name required")
	}
	err := s.store.Mutate(func(doc *models.Document) error {
		c := doc.ClassByID(id)
		if c == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		c.Name = req.Name
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.RecordMutation("classes", "update")
	return nil
}

// DeleteClass removes a class. Records referencing it keep their id and
// render the dangling-reference placeholder.
func (s *CatalogService) DeleteClass(actor access.Actor, id string) error {
	if !access.CanManageRecords(actor.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	err := s.store.Mutate(func(doc *models.Document) error {
		kept := doc.Classes[:0]
		found := false
		for _, c := range doc.Classes {
			if c.ID == id {
				found = true
				continue
			}
			kept = append(kept, c)
		}
		if !found {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		doc.Classes = kept
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.RecordMutation("classes", "delete")
	return nil
}

// CreateSubject appends a new subject.
func (s *CatalogService) CreateSubject(actor access.Actor, req CatalogForm) (*models.Subject, error) {
	if !access.CanManageRecords(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "subject name required")
	}
	created := models.Subject{ID: models.NewID("sub"), Name: req.Name}
	if err := s.store.Mutate(func(doc *models.Document) error {
		doc.Subjects = append(doc.Subjects, created)
		return nil
	}); err != nil {
		return nil, err
	}
	s.metrics.RecordMutation("subjects", "create")
	return &created, nil
}

// DeleteSubject removes a subject.
func (s *CatalogService) DeleteSubject(actor access.Actor, id string) error {
	if !access.CanManageRecords(actor.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	err := s.store.Mutate(func(doc *models.Document) error {
		kept := doc.Subjects[:0]
		found := false
		for _, sub := range doc.Subjects {
			if sub.ID == id {
				found = true
				continue
			}
			kept = append(kept, sub)
		}
		if !found {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		doc.Subjects = kept
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.RecordMutation("subjects", "delete")
	return nil
}
