package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, kelasID *int64) ([]models.StudentDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	FindByUserID(ctx context.Context, userID int64) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

type gradeSummaryReader interface {
	SummarizeByStudent(ctx context.Context, studentID int64, semesterID *int64) ([]models.RaportSubjectGrade, error)
}

type attendanceRecapReader interface {
	CountByStatus(ctx context.Context, studentID int64, semesterID *int64) (*models.RaportAttendanceRecap, error)
}

// SaveStudentRequest describes student create/update payloads.
type SaveStudentRequest struct {
	UserID       *int64  `json:"userId"`
	Nisn         string  `json:"nisn" validate:"required"`
	Nama         string  `json:"nama" validate:"required"`
	KelasID      *int64  `json:"kelasId"`
	JenisKelamin *string `json:"jenisKelamin"`
	TanggalLahir *string `json:"tanggalLahir"`
	Alamat       *string `json:"alamat"`
	TahunMasuk   *int    `json:"tahunMasuk"`
}

// StudentService owns the student roster and the per-student raport recap.
type StudentService struct {
	repo       studentRepository
	classes    classReader
	grades     gradeSummaryReader
	attendance attendanceRecapReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, classes classReader, grades gradeSummaryReader, attendance attendanceRecapReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, grades: grades, attendance: attendance, validator: validate, logger: logger}
}

// List returns students, optionally scoped to one class.
func (s *StudentService) List(ctx context.Context, kelasID *int64) ([]models.StudentDetail, error) {
	students, err := s.repo.List(ctx, kelasID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// FindByID returns one student.
func (s *StudentService) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "siswa tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// FindByUserID returns the student linked to an account.
func (s *StudentService) FindByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	student, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "siswa tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Raport builds the per-student recap, per-subject grade averages plus
// attendance counts, optionally scoped to one semester.
func (s *StudentService) Raport(ctx context.Context, studentID int64, semesterID *int64) (*models.RaportSummary, error) {
	student, err := s.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	grades, err := s.grades.SummarizeByStudent(ctx, studentID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize grades")
	}
	recap, err := s.attendance.CountByStatus(ctx, studentID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize attendance")
	}

	summary := &models.RaportSummary{
		Student:    student,
		SemesterID: semesterID,
		Grades:     grades,
		Attendance: *recap,
	}
	if summary.Grades == nil {
		summary.Grades = []models.RaportSubjectGrade{}
	}
	return summary, nil
}

// Create registers a student. An assigned class must exist.
func (s *StudentService) Create(ctx context.Context, req SaveStudentRequest) (*models.Student, error) {
	student, err := s.buildStudent(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update rewrites a student.
func (s *StudentService) Update(ctx context.Context, id int64, req SaveStudentRequest) (*models.Student, error) {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student, err := s.buildStudent(ctx, req)
	if err != nil {
		return nil, err
	}
	student.ID = id
	student.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, student); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "siswa tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "siswa tidak ditemukan")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

func (s *StudentService) buildStudent(ctx context.Context, req SaveStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if req.KelasID != nil {
		if _, err := s.classes.FindByID(ctx, *req.KelasID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas tidak ditemukan")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
	}

	var birthDate *time.Time
	if req.TanggalLahir != nil && *req.TanggalLahir != "" {
		parsed, err := time.Parse("2006-01-02", *req.TanggalLahir)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "tanggalLahir harus berformat YYYY-MM-DD")
		}
		birthDate = &parsed
	}

	return &models.Student{
		UserID:       req.UserID,
		Nisn:         req.Nisn,
		Nama:         req.Nama,
		KelasID:      req.KelasID,
		JenisKelamin: req.JenisKelamin,
		TanggalLahir: birthDate,
		Alamat:       req.Alamat,
		TahunMasuk:   req.TahunMasuk,
	}, nil
}
