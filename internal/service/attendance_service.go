package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error)
	FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error)
	FindAbsenceCandidates(ctx context.Context, tanggal string) ([]models.AbsenceCandidate, error)
	BulkInsertAlfa(ctx context.Context, tanggal string, semester *models.Semester, candidates []models.AbsenceCandidate) (int, error)
	Exists(ctx context.Context, studentID, subjectID int64, tanggal string) (bool, error)
	Create(ctx context.Context, record *models.AttendanceRecord) error
	Update(ctx context.Context, record *models.AttendanceRecord) error
	Delete(ctx context.Context, id int64) error
}

type semesterResolver interface {
	ActiveSemester(ctx context.Context, reference time.Time) (*models.Semester, error)
	ResolveFromPayload(ctx context.Context, ref models.SemesterRef, opts ResolveOptions) (*models.Semester, error)
}

// CreateAttendanceRequest describes a manual attendance entry.
type CreateAttendanceRequest struct {
	StudentID  int64              `json:"studentId" validate:"required"`
	KelasID    int64              `json:"kelasId" validate:"required"`
	SubjectID  int64              `json:"subjectId" validate:"required"`
	TeacherID  int64              `json:"teacherId" validate:"required"`
	Tanggal    string             `json:"tanggal" validate:"required"`
	Status     string             `json:"status" validate:"required"`
	Keterangan *string            `json:"keterangan"`
	Semester   models.SemesterRef `json:"semester"`
}

// UpdateAttendanceRequest describes a status correction.
type UpdateAttendanceRequest struct {
	Status     string  `json:"status" validate:"required"`
	Keterangan *string `json:"keterangan"`
}

// AttendanceService owns manual attendance entry and the automatic
// absence job.
type AttendanceService struct {
	repo      attendanceRepository
	semesters semesterResolver
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, semesters semesterResolver, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, semesters: semesters, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// List returns attendance records for the filter.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// MarkAbsentForDate runs the automatic absence job for the given date. A
// blank date means today. The job inserts one "alfa" row per (student,
// teacher assignment) pair that has no attendance record for that exact
// combination yet; re-running for the same date finds an empty candidate
// set and inserts nothing.
func (s *AttendanceService) MarkAbsentForDate(ctx context.Context, rawDate string) (*models.AutoAlphaResult, error) {
	target, err := s.parseTargetDate(rawDate)
	if err != nil {
		return nil, err
	}
	canonical := target.Format("2006-01-02")

	semester, err := s.semesters.ActiveSemester(ctx, target)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.FindAbsenceCandidates(ctx, canonical)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute absence candidates")
	}

	result := &models.AutoAlphaResult{Date: canonical}
	if semester != nil {
		result.SemesterID = &semester.ID
		result.TahunAjaran = &semester.TahunAjaran
		result.Semester = &semester.Semester
	}

	if len(candidates) == 0 {
		s.logger.Info("auto absence run found no candidates", zap.String("date", canonical))
		if s.metrics != nil {
			s.metrics.RecordAutoAlphaRun(0)
		}
		return result, nil
	}

	inserted, err := s.repo.BulkInsertAlfa(ctx, canonical, semester, candidates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert automatic absences")
	}
	result.Inserted = inserted

	s.logger.Info("auto absence run completed",
		zap.String("date", canonical),
		zap.Int("inserted", inserted))
	if s.metrics != nil {
		s.metrics.RecordAutoAlphaRun(inserted)
	}
	return result, nil
}

// Create records a manual attendance entry. Semester resolution follows
// the payload protocol with the required flag set.
func (s *AttendanceService) Create(ctx context.Context, req CreateAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(strings.ToLower(req.Status))
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status harus hadir, izin, sakit, atau alfa")
	}
	tanggal, err := time.Parse("2006-01-02", req.Tanggal)
	if err != nil {
		return nil, appErrors.ErrInvalidDate
	}

	semester, err := s.semesters.ResolveFromPayload(ctx, req.Semester, ResolveOptions{Required: true, ReferenceDate: tanggal})
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, req.SubjectID, req.Tanggal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attendance existence")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "absensi untuk siswa, mapel, dan tanggal tersebut sudah ada")
	}

	record := &models.AttendanceRecord{
		StudentID:  req.StudentID,
		KelasID:    req.KelasID,
		SubjectID:  req.SubjectID,
		TeacherID:  req.TeacherID,
		Tanggal:    tanggal,
		Status:     status,
		Keterangan: req.Keterangan,
	}
	if semester != nil {
		record.SemesterID = &semester.ID
		record.TahunAjaran = &semester.TahunAjaran
		record.Semester = &semester.Semester
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance")
	}
	return record, nil
}

// Update corrects the status or note of an existing record.
func (s *AttendanceService) Update(ctx context.Context, id int64, req UpdateAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(strings.ToLower(req.Status))
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status harus hadir, izin, sakit, atau alfa")
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absensi tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	record.Status = status
	if req.Keterangan != nil {
		record.Keterangan = req.Keterangan
	}
	if err := s.repo.Update(ctx, record); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absensi tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	return record, nil
}

// Delete removes an attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "absensi tidak ditemukan")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	return nil
}

// parseTargetDate normalizes the raw date to local midnight. Blank means
// today; both YYYY-MM-DD and RFC 3339 inputs are accepted.
func (s *AttendanceService) parseTargetDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := s.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, appErrors.ErrInvalidDate
		}
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.Local), nil
}
