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

// AnnouncementService handles the append-only feed. There is no edit or
// delete.
type AnnouncementService struct {
	store     *store.Store
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(st *store.Store, validate *validator.Validate, logger *zap.Logger, m *metrics.Metrics) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{store: st, validator: validate, logger: logger, metrics: m, now: time.Now}
}

// PublishAnnouncementRequest describes the new-announcement form.
type PublishAnnouncementRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body"`
}

// List returns the feed newest first. Every role, including guests, may
// read it.
func (s *AnnouncementService) List(actor access.Actor) ([]models.Announcement, error) {
	if !access.Allowed(actor.Role, access.PageAnnouncements) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	var out []models.Announcement
	s.store.View(func(doc *models.Document) {
		out = make([]models.Announcement, 0, len(doc.Announcements))
		for i := len(doc.Announcements) - 1; i >= 0; i-- {
			out = append(out, doc.Announcements[i])
		}
	})
	return out, nil
}

// Recent returns up to limit feed entries, newest first.
func (s *AnnouncementService) Recent(actor access.Actor, limit int) ([]models.Announcement, error) {
	all, err := s.List(actor)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Publish appends a feed entry authored by the actor. Admin and teacher
// roles only.
func (s *AnnouncementService) Publish(actor access.Actor, req PublishAnnouncementRequest) (*models.Announcement, error) {
	if !access.CanPublishAnnouncements(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "title required")
	}

	created := models.Announcement{
		ID:    models.NewID("a"),
		Title: req.Title,
		Body:  req.Body,
		Date:  s.now().UTC(),
	}
	if err := s.store.Mutate(func(doc *models.Document) error {
		if author := doc.UserByID(actor.UserID); author != nil {
			created.By = author.Name
		}
		doc.Announcements = append(doc.Announcements, created)
		return nil
	}); err != nil {
		return nil, err
	}
	s.metrics.RecordMutation("announcements", "create")
	return &created, nil
}
