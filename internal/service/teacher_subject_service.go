package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
)

type teacherSubjectRepository interface {
	MapByIDs(ctx context.Context, ids []int64) (map[int64]models.TeacherSubject, error)
	FindByID(ctx context.Context, id int64) (*models.TeacherSubject, error)
	FindDetailedByID(ctx context.Context, id int64) (*models.TeacherSubjectDetail, error)
	ListDetailed(ctx context.Context, filter models.TeacherSubjectFilter) ([]models.TeacherSubjectDetail, error)
	ExistsByTriple(ctx context.Context, teacherID, subjectID, kelasID, excludeID int64) (bool, error)
	Create(ctx context.Context, row *models.TeacherSubject) error
	Delete(ctx context.Context, id int64) error
}

type teacherReader interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

type classReader interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
}

// CreateTeacherSubjectRequest describes a new teacher assignment.
type CreateTeacherSubjectRequest struct {
	TeacherID int64 `json:"teacherId" validate:"required"`
	SubjectID int64 `json:"subjectId" validate:"required"`
	KelasID   int64 `json:"kelasId" validate:"required"`
}

// TeacherSubjectService owns the teacher-subject-class assignments. The
// identity of an assignment is immutable; there is no update, only
// create and delete.
type TeacherSubjectService struct {
	repo      teacherSubjectRepository
	teachers  teacherReader
	subjects  subjectReader
	classes   classReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherSubjectService constructs TeacherSubjectService.
func NewTeacherSubjectService(repo teacherSubjectRepository, teachers teacherReader, subjects subjectReader, classes classReader, validate *validator.Validate, logger *zap.Logger) *TeacherSubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherSubjectService{repo: repo, teachers: teachers, subjects: subjects, classes: classes, validator: validate, logger: logger}
}

// List returns assignments with names resolved.
func (s *TeacherSubjectService) List(ctx context.Context, filter models.TeacherSubjectFilter) ([]models.TeacherSubjectDetail, error) {
	rows, err := s.repo.ListDetailed(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher subjects")
	}
	return rows, nil
}

// MapByIDs batch-resolves assignments by id; empty input fetches all.
func (s *TeacherSubjectService) MapByIDs(ctx context.Context, ids []int64) (map[int64]models.TeacherSubject, error) {
	rows, err := s.repo.MapByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to map teacher subjects")
	}
	return rows, nil
}

// FindByID returns one assignment with names resolved.
func (s *TeacherSubjectService) FindByID(ctx context.Context, id int64) (*models.TeacherSubjectDetail, error) {
	row, err := s.repo.FindDetailedByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrTeacherSubjectNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher subject")
	}
	return row, nil
}

// Create registers an assignment after checking the referenced rows and
// the triple's uniqueness.
func (s *TeacherSubjectService) Create(ctx context.Context, req CreateTeacherSubjectRequest) (*models.TeacherSubjectDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher subject payload")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guru tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mata pelajaran tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if _, err := s.classes.FindByID(ctx, req.KelasID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	exists, err := s.repo.ExistsByTriple(ctx, req.TeacherID, req.SubjectID, req.KelasID, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher subject uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "relasi guru-mapel-kelas tersebut sudah ada")
	}

	row := &models.TeacherSubject{TeacherID: req.TeacherID, SubjectID: req.SubjectID, KelasID: req.KelasID}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher subject")
	}
	return s.FindByID(ctx, row.ID)
}

// Delete removes an assignment.
func (s *TeacherSubjectService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.ErrTeacherSubjectNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher subject")
	}
	return nil
}
