package service

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/access"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
	"github.com/schoolmate/schoolmate-core/pkg/export"
	"github.com/schoolmate/schoolmate-core/pkg/metrics"
)

// ReportFormat selects the rendered export format.
type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ReportFormat) Valid() bool {
	return f == FormatCSV || f == FormatPDF
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportService renders collections and sheets to downloadable CSV/PDF
// files under the configured exports directory.
type ExportService struct {
	students   *StudentService
	attendance *AttendanceService
	grades     *GradeService
	teachers   *TeacherService
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(students *StudentService, teachers *TeacherService, attendance *AttendanceService, grades *GradeService, storage fileStorage, logger *zap.Logger, m *metrics.Metrics, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		students:   students,
		teachers:   teachers,
		attendance: attendance,
		grades:     grades,
		storage:    storage,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// Students renders the student list visible to the actor.
func (s *ExportService) Students(actor access.Actor, format ReportFormat) (string, error) {
	rows, err := s.students.List(actor)
	if err != nil {
		return "", err
	}
	data := export.Dataset{Headers: []string{"Roll", "Name", "Class", "Email"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, []string{r.Roll, r.Name, r.ClassName, r.Email})
	}
	return s.render("students", "Students", format, data)
}

// Teachers renders the teacher list visible to the actor.
func (s *ExportService) Teachers(actor access.Actor, format ReportFormat) (string, error) {
	rows, err := s.teachers.List(actor)
	if err != nil {
		return "", err
	}
	data := export.Dataset{Headers: []string{"Name", "Email", "Subjects"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, []string{r.Name, r.Email, r.SubjectNames})
	}
	return s.render("teachers", "Teachers", format, data)
}

// AttendanceSheet renders one class/date checklist, honoring the actor's
// class scope.
func (s *ExportService) AttendanceSheet(actor access.Actor, classID, date string, format ReportFormat) (string, error) {
	sheet, err := s.attendance.Sheet(actor, classID, date)
	if err != nil {
		return "", err
	}
	data := export.Dataset{Headers: []string{"Roll", "Name", "Present"}}
	for _, r := range sheet.Rows {
		data.Rows = append(data.Rows, []string{r.Roll, r.Name, strconv.FormatBool(r.Present)})
	}
	title := fmt.Sprintf("Attendance %s %s", sheet.ClassName, sheet.Date)
	return s.render("attendance", title, format, data)
}

// GradeSheet renders one class/subject marks table, honoring the actor's
// subject scope.
func (s *ExportService) GradeSheet(actor access.Actor, classID, subjectID string, format ReportFormat) (string, error) {
	sheet, err := s.grades.Sheet(actor, classID, subjectID)
	if err != nil {
		return "", err
	}
	data := export.Dataset{Headers: []string{"Roll", "Name", "Marks"}}
	for _, r := range sheet.Rows {
		marks := ""
		if r.Marks != nil {
			marks = strconv.FormatFloat(*r.Marks, 'f', -1, 64)
		}
		data.Rows = append(data.Rows, []string{r.Roll, r.Name, marks})
	}
	title := fmt.Sprintf("Grades %s %s", sheet.ClassName, sheet.SubjectName)
	return s.render("grades", title, format, data)
}

// Cleanup deletes rendered export files older than ttl and returns their
// names.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	deleted, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to clean exports")
	}
	if len(deleted) > 0 {
		s.logger.Info("cleaned exports", zap.Int("files", len(deleted)))
	}
	return deleted, nil
}

func (s *ExportService) render(kind, title string, format ReportFormat, data export.Dataset) (string, error) {
	if !format.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "unsupported format")
	}

	var rendered []byte
	var err error
	switch format {
	case FormatCSV:
		rendered, err = s.csv.Render(data)
	case FormatPDF:
		rendered, err = s.pdf.Render(data, title)
	}
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render export")
	}

	filename := fmt.Sprintf("%s_%s.%s", kind, s.now().UTC().Format("20060102T150405"), format)
	saved, err := s.storage.Save(filename, rendered)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to store export")
	}
	s.metrics.RecordExport(string(format))
	s.logger.Info("export rendered", zap.String("file", saved), zap.Int("bytes", len(rendered)))
	return saved, nil
}
