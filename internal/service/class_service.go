package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id int64) (*models.Class, error)
	FindByWalikelas(ctx context.Context, teacherID int64) ([]models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
}

// SaveClassRequest describes class create/update payloads.
type SaveClassRequest struct {
	Nama        string  `json:"nama" validate:"required"`
	Tingkat     string  `json:"tingkat" validate:"required"`
	Jurusan     *string `json:"jurusan"`
	WalikelasID *int64  `json:"walikelasId"`
}

// ClassService owns class administration, including the homeroom teacher
// assignment.
type ClassService struct {
	repo      classRepository
	teachers  teacherReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, teachers teacherReader, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns all classes.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// FindByID returns one class.
func (s *ClassService) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// FindByWalikelas returns the classes assigned to a homeroom teacher.
func (s *ClassService) FindByWalikelas(ctx context.Context, teacherID int64) ([]models.Class, error) {
	classes, err := s.repo.FindByWalikelas(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load walikelas classes")
	}
	return classes, nil
}

// Create registers a class. An assigned walikelas must exist.
func (s *ClassService) Create(ctx context.Context, req SaveClassRequest) (*models.Class, error) {
	class, err := s.buildClass(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update rewrites a class.
func (s *ClassService) Update(ctx context.Context, id int64, req SaveClassRequest) (*models.Class, error) {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	class, err := s.buildClass(ctx, req)
	if err != nil {
		return nil, err
	}
	class.ID = id
	class.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, class); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "kelas tidak ditemukan")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}

func (s *ClassService) buildClass(ctx context.Context, req SaveClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if req.WalikelasID != nil {
		if _, err := s.teachers.FindByID(ctx, *req.WalikelasID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "walikelas tidak ditemukan")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load walikelas")
		}
	}
	return &models.Class{
		Nama:        req.Nama,
		Tingkat:     req.Tingkat,
		Jurusan:     req.Jurusan,
		WalikelasID: req.WalikelasID,
	}, nil
}
