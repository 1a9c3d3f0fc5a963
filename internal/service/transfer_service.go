package service

import (
	"encoding/json"
	"io"

	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/access"
	"github.com/schoolmate/schoolmate-core/internal/models"
	"github.com/schoolmate/schoolmate-core/internal/store"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
	"github.com/schoolmate/schoolmate-core/pkg/metrics"
)

// TransferService implements whole-document export and destructive import,
// plus single-collection export. Admin only, matching the settings page
// gate.
type TransferService struct {
	store   *store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewTransferService constructs the service.
func NewTransferService(st *store.Store, logger *zap.Logger, m *metrics.Metrics) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{store: st, logger: logger, metrics: m}
}

// Export streams the entire document, pretty-printed, exactly as persisted.
// Export followed by Import of the same bytes is the identity.
func (s *TransferService) Export(actor access.Actor, w io.Writer) error {
	if !access.CanManageRecords(actor.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the principal can access settings")
	}
	data, err := s.store.Serialize()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to write export")
	}
	return nil
}

// ExportCollection streams one named collection as pretty-printed JSON.
func (s *TransferService) ExportCollection(actor access.Actor, w io.Writer, name string) error {
	if !access.CanManageRecords(actor.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the principal can access settings")
	}

	var payload any
	s.store.View(func(doc *models.Document) {
		switch name {
		case "users":
			payload = doc.Users
		case "students":
			payload = doc.Students
		case "teachers":
			payload = doc.Teachers
		case "classes":
			payload = doc.Classes
		case "subjects":
			payload = doc.Subjects
		case "attendance":
			payload = doc.Attendance
		case "grades":
			payload = doc.Grades
		case "announcements":
			payload = doc.Announcements
		case "ratings":
			payload = doc.Ratings
		}
	})
	if payload == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "unknown collection")
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to serialize collection")
	}
	if _, err := w.Write(data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to write export")
	}
	return nil
}

// Import parses a document from r and, once confirm approves the
// destructive replace, swaps it in wholesale and persists. Unparsable input
// leaves the in-memory document untouched. The returned bool reports
// whether the replace happened.
func (s *TransferService) Import(actor access.Actor, r io.Reader, confirm func() bool) (bool, error) {
	if !access.CanManageRecords(actor.Role) {
		return false, appErrors.Clone(appErrors.ErrForbidden, "only the principal can access settings")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		s.metrics.RecordImport(false)
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to read import")
	}

	incoming := &models.Document{}
	if err := json.Unmarshal(data, incoming); err != nil {
		s.metrics.RecordImport(false)
		return false, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid JSON")
	}

	if confirm != nil && !confirm() {
		return false, nil
	}

	if err := s.store.Replace(incoming); err != nil {
		s.metrics.RecordImport(false)
		return false, err
	}
	s.metrics.RecordImport(true)
	s.logger.Info("document imported")
	return true, nil
}

// Reset clears all data back to the seeded first-run state once confirm
// approves it.
func (s *TransferService) Reset(actor access.Actor, confirm func() bool) (bool, error) {
	if !access.CanManageRecords(actor.Role) {
		return false, appErrors.Clone(appErrors.ErrForbidden, "only the principal can access settings")
	}
	if confirm != nil && !confirm() {
		return false, nil
	}
	if err := s.store.Reset(); err != nil {
		return false, err
	}
	s.logger.Info("document reset")
	return true, nil
}
