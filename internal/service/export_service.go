package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
	"github.com/siakad-go/siakad-api/pkg/export"
)

// Export formats supported for timetables.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportResult carries rendered bytes plus HTTP metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

type scheduleLister interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, bool, error)
}

// ExportService renders class timetables as downloadable files.
type ExportService struct {
	schedules scheduleLister
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(schedules scheduleLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedules: schedules,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// Timetable renders the timetable for one class in the requested format.
func (s *ExportService) Timetable(ctx context.Context, kelasID int64, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format harus csv atau pdf")
	}

	entries, _, err := s.schedules.List(ctx, models.ScheduleFilter{KelasID: &kelasID})
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Hari", "Jam Mulai", "Jam Selesai", "Mata Pelajaran", "Guru", "Ruangan"},
	}
	className := fmt.Sprintf("kelas-%d", kelasID)
	for _, entry := range entries {
		className = entry.ClassName
		room := ""
		if entry.Ruangan != nil {
			room = *entry.Ruangan
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Hari":           entry.Hari,
			"Jam Mulai":      entry.JamMulai,
			"Jam Selesai":    entry.JamSelesai,
			"Mata Pelajaran": entry.SubjectNama,
			"Guru":           entry.TeacherNama,
			"Ruangan":        room,
		})
	}

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv timetable")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("jadwal-%s.csv", slugify(className)),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	default:
		data, err := s.pdf.Render(dataset, fmt.Sprintf("Jadwal Pelajaran %s", className))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf timetable")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("jadwal-%s.pdf", slugify(className)),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	}
}

func slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
