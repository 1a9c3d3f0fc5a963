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

// RatingService handles student-submitted teacher ratings. The feed is
// append-only and only admins may read it.
type RatingService struct {
	store     *store.Store
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewRatingService constructs the service.
func NewRatingService(st *store.Store, validate *validator.Validate, logger *zap.Logger, m *metrics.Metrics) *RatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{store: st, validator: validate, logger: logger, metrics: m, now: time.Now}
}

// SubmitRatingRequest describes the rating form.
type SubmitRatingRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	Rating    int    `json:"rating" validate:"gte=1,lte=5"`
	Comment   string `json:"comment"`
}

// RatingRow is a listing row with all references resolved.
type RatingRow struct {
	models.Rating
	StudentName string `json:"studentName"`
	TeacherName string `json:"teacherName"`
	SubjectName string `json:"subjectName"`
}

// Submit appends a rating authored by the student actor. A rating outside
// [1,5] is rejected and nothing is written.
func (s *RatingService) Submit(actor access.Actor, req SubmitRatingRequest) (*models.Rating, error) {
	if !access.CanSubmitRating(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "enter rating 1-5")
	}

	created := models.Rating{
		ID:        models.NewID("r"),
		TeacherID: req.TeacherID,
		SubjectID: req.SubjectID,
		StudentID: actor.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Date:      s.now().UTC(),
	}
	if err := s.store.Mutate(func(doc *models.Document) error {
		doc.Ratings = append(doc.Ratings, created)
		return nil
	}); err != nil {
		return nil, err
	}
	s.metrics.RecordMutation("ratings", "create")
	return &created, nil
}

// List returns all ratings newest first with names resolved. Admin only.
func (s *RatingService) List(actor access.Actor) ([]RatingRow, error) {
	if !access.CanViewRatings(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the principal can view ratings")
	}

	var rows []RatingRow
	s.store.View(func(doc *models.Document) {
		rows = make([]RatingRow, 0, len(doc.Ratings))
		for i := len(doc.Ratings) - 1; i >= 0; i-- {
			r := doc.Ratings[i]
			row := RatingRow{
				Rating:      r,
				StudentName: models.Placeholder,
				TeacherName: models.Placeholder,
				SubjectName: doc.SubjectName(r.SubjectID),
			}
			if st := doc.StudentByID(r.StudentID); st != nil {
				row.StudentName = st.Name
			}
			if t := doc.TeacherByID(r.TeacherID); t != nil {
				row.TeacherName = t.Name
			}
			rows = append(rows, row)
		}
	})
	return rows, nil
}
