// Package schoolmate wires the document store and the view services into a
// single embeddable application object. Callers construct an App, drive the
// services it exposes, and Close it on the way out.
package schoolmate

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/service"
	"github.com/schoolmate/schoolmate-core/internal/store"
	"github.com/schoolmate/schoolmate-core/pkg/config"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
	"github.com/schoolmate/schoolmate-core/pkg/logger"
	"github.com/schoolmate/schoolmate-core/pkg/metrics"
	"github.com/schoolmate/schoolmate-core/pkg/storage"
)

// App is the composition root: one document store plus every service the
// views need, sharing a logger, validator and metrics registry.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Metrics *metrics.Metrics

	Auth          *service.AuthService
	Students      *service.StudentService
	Teachers      *service.TeacherService
	Catalog       *service.CatalogService
	Attendance    *service.AttendanceService
	Grades        *service.GradeService
	Announcements *service.AnnouncementService
	Ratings       *service.RatingService
	Dashboard     *service.DashboardService
	Transfer      *service.TransferService
	Exports       *service.ExportService

	logger *zap.Logger
}

// New loads configuration from the environment and opens the document at the
// configured path.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load config")
	}
	return NewWithConfig(cfg)
}

// NewWithConfig builds an App against an explicit configuration.
func NewWithConfig(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to build logger")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	st, err := store.OpenWithOptions(store.NewFilePersister(cfg.Store.DocumentPath), log, m, store.Options{
		SeedDemoData: cfg.Store.SeedDemoData,
	})
	if err != nil {
		return nil, err
	}

	exportFiles, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to prepare exports directory")
	}

	validate := validator.New()

	app := &App{
		Config:  cfg,
		Store:   st,
		Metrics: m,
		logger:  log,
	}
	app.Auth = service.NewAuthService(st, nil, validate, log, m, cfg.Auth)
	app.Students = service.NewStudentService(st, validate, log, m)
	app.Teachers = service.NewTeacherService(st, validate, log, m)
	app.Catalog = service.NewCatalogService(st, validate, log, m)
	app.Attendance = service.NewAttendanceService(st, validate, log, m)
	app.Grades = service.NewGradeService(st, validate, log, m)
	app.Announcements = service.NewAnnouncementService(st, validate, log, m)
	app.Ratings = service.NewRatingService(st, validate, log, m)
	app.Dashboard = service.NewDashboardService(st, log)
	app.Transfer = service.NewTransferService(st, log, m)
	app.Exports = service.NewExportService(app.Students, app.Teachers, app.Attendance, app.Grades, exportFiles, log, m, nil, nil)

	if cfg.Exports.ResultTTL > 0 {
		if _, err := app.Exports.Cleanup(cfg.Exports.ResultTTL); err != nil {
			log.Warn("export cleanup failed", zap.Error(err))
		}
	}

	log.Info("application ready",
		zap.String("document", cfg.Store.DocumentPath),
		zap.String("exports", cfg.Exports.Dir))
	return app, nil
}

// Close flushes the logger. The document is already on disk after every
// mutation, so there is nothing else to drain.
func (a *App) Close() error {
	return a.logger.Sync()
}
