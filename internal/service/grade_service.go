package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	SetVerified(ctx context.Context, id int64, verified bool, verifiedBy *string) error
	Delete(ctx context.Context, id int64) error
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type walikelasClassReader interface {
	FindByWalikelas(ctx context.Context, teacherID int64) ([]models.Class, error)
}

// CreateGradeRequest describes a new assessment score.
type CreateGradeRequest struct {
	StudentID  int64              `json:"studentId" validate:"required"`
	SubjectID  int64              `json:"subjectId" validate:"required"`
	TeacherID  int64              `json:"teacherId" validate:"required"`
	Jenis      string             `json:"jenis" validate:"required"`
	Nilai      float64            `json:"nilai" validate:"gte=0,lte=100"`
	Keterangan *string            `json:"keterangan"`
	Semester   models.SemesterRef `json:"semester"`
}

// UpdateGradeRequest describes a score correction. The semester reference
// is only re-resolved when identifying fields are supplied.
type UpdateGradeRequest struct {
	Jenis      string             `json:"jenis"`
	Nilai      *float64           `json:"nilai" validate:"omitempty,gte=0,lte=100"`
	Keterangan *string            `json:"keterangan"`
	Semester   models.SemesterRef `json:"semester"`
}

// GradeService owns assessment scores and walikelas verification.
type GradeService struct {
	repo      gradeRepository
	students  studentReader
	classes   walikelasClassReader
	semesters semesterResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(repo gradeRepository, students studentReader, classes walikelasClassReader, semesters semesterResolver, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, students: students, classes: classes, semesters: semesters, validator: validate, logger: logger}
}

// List returns grades for the filter.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	grades, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Create records a grade. Semester resolution is required on create.
func (s *GradeService) Create(ctx context.Context, req CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "siswa tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	semester, err := s.semesters.ResolveFromPayload(ctx, req.Semester, ResolveOptions{Required: true})
	if err != nil {
		return nil, err
	}

	grade := &models.Grade{
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		TeacherID:  req.TeacherID,
		SemesterID: semester.ID,
		Jenis:      req.Jenis,
		Nilai:      req.Nilai,
		Keterangan: req.Keterangan,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	return grade, nil
}

// Update corrects a grade. Any edit clears previous verification.
func (s *GradeService) Update(ctx context.Context, id int64, req UpdateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "nilai tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}

	if req.Semester.HasID() || req.Semester.HasPair() {
		semester, err := s.semesters.ResolveFromPayload(ctx, req.Semester, ResolveOptions{})
		if err != nil {
			return nil, err
		}
		if semester != nil {
			grade.SemesterID = semester.ID
		}
	}
	if req.Jenis != "" {
		grade.Jenis = req.Jenis
	}
	if req.Nilai != nil {
		grade.Nilai = *req.Nilai
	}
	if req.Keterangan != nil {
		grade.Keterangan = req.Keterangan
	}
	grade.Verified = false
	grade.VerifiedBy = nil

	if err := s.repo.Update(ctx, grade); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "nilai tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	return grade, nil
}

// Verify stamps a grade as checked by the student's walikelas. The caller
// identity must be the homeroom teacher of the student's class.
func (s *GradeService) Verify(ctx context.Context, id, walikelasTeacherID int64, verifierName string) (*models.Grade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "nilai tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	student, err := s.students.FindByID(ctx, grade.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "siswa tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	classes, err := s.classes.FindByWalikelas(ctx, walikelasTeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load walikelas classes")
	}
	allowed := false
	for _, class := range classes {
		if student.KelasID != nil && class.ID == *student.KelasID {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "hanya walikelas kelas siswa yang dapat memverifikasi nilai")
	}

	if err := s.repo.SetVerified(ctx, id, true, &verifierName); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify grade")
	}
	grade.Verified = true
	grade.VerifiedBy = &verifierName
	return grade, nil
}

// Delete removes a grade.
func (s *GradeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "nilai tidak ditemukan")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}
