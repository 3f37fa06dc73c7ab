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

type semesterRepository interface {
	List(ctx context.Context) ([]models.Semester, error)
	FindByID(ctx context.Context, id int64) (*models.Semester, error)
	FindByYearAndNumber(ctx context.Context, tahunAjaran string, semester int) (*models.Semester, error)
	FindActive(ctx context.Context, reference time.Time) (*models.Semester, error)
	ExistsByYearAndNumber(ctx context.Context, tahunAjaran string, semester int, excludeID int64) (bool, error)
	Create(ctx context.Context, semester *models.Semester) error
	Update(ctx context.Context, semester *models.Semester) error
	Delete(ctx context.Context, id int64) error
}

type settingStore interface {
	Get(ctx context.Context, key string) (string, error)
	Upsert(ctx context.Context, key, value string) error
}

// SaveSemesterRequest describes semester create/update payloads.
type SaveSemesterRequest struct {
	TahunAjaran       string  `json:"tahunAjaran" validate:"required"`
	Semester          int     `json:"semester" validate:"required,oneof=1 2"`
	TanggalMulai      string  `json:"tanggalMulai" validate:"required"`
	TanggalSelesai    string  `json:"tanggalSelesai" validate:"required"`
	JumlahHariBelajar int     `json:"jumlahHariBelajar" validate:"gte=0"`
	Catatan           *string `json:"catatan"`
}

// ResolveOptions steers ResolveFromPayload.
type ResolveOptions struct {
	// Required makes an empty reference an error instead of a nil result.
	Required bool
	// ReferenceDate defaults to now; activity is judged against it.
	ReferenceDate time.Time
}

// SemesterService owns semester lookup, the payload resolution protocol and
// the enforcement mode setting.
type SemesterService struct {
	repo      semesterRepository
	settings  settingStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs SemesterService.
func NewSemesterService(repo semesterRepository, settings settingStore, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{repo: repo, settings: settings, validator: validate, logger: logger}
}

// List returns all semesters.
func (s *SemesterService) List(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// FindByID returns one semester.
func (s *SemesterService) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrSemesterNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// ResolveReference turns a semester reference into a row. The id form takes
// precedence over the (tahunAjaran, semester) pair; a reference with neither
// resolves to nil without error.
func (s *SemesterService) ResolveReference(ctx context.Context, ref models.SemesterRef) (*models.Semester, error) {
	if ref.HasID() {
		id, err := ref.SemesterID.Int64()
		if err != nil {
			return nil, appErrors.ErrSemesterNotFound
		}
		return s.FindByID(ctx, id)
	}
	if ref.HasPair() {
		number, err := ref.Semester.Int64()
		if err != nil {
			return nil, appErrors.ErrSemesterNotFound
		}
		semester, err := s.repo.FindByYearAndNumber(ctx, ref.TahunAjaran, int(number))
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.ErrSemesterNotFound
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
		}
		return semester, nil
	}
	return nil, nil
}

// IsActive reports whether the reference date falls inside the semester's
// bounds. The comparison is date-only and inclusive on both ends.
func (s *SemesterService) IsActive(semester *models.Semester, reference time.Time) bool {
	if semester == nil {
		return false
	}
	day := dateOnly(reference)
	start := dateOnly(semester.TanggalMulai)
	end := dateOnly(semester.TanggalSelesai)
	return !day.Before(start) && !day.After(end)
}

// ActiveSemester returns the semester active on the reference date, or nil.
func (s *SemesterService) ActiveSemester(ctx context.Context, reference time.Time) (*models.Semester, error) {
	semester, err := s.repo.FindActive(ctx, reference)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find active semester")
	}
	return semester, nil
}

// EnforcementMode reads the configured mode. Any stored value other than
// "strict" reads as relaxed, unknown values included.
func (s *SemesterService) EnforcementMode(ctx context.Context) (models.EnforcementMode, error) {
	value, err := s.settings.Get(ctx, models.SettingKeySemesterEnforcement)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read enforcement mode")
	}
	if strings.EqualFold(strings.TrimSpace(value), string(models.EnforcementStrict)) {
		return models.EnforcementStrict, nil
	}
	return models.EnforcementRelaxed, nil
}

// SetEnforcementMode stores the mode. Input is case-insensitive; only
// relaxed and strict are accepted.
func (s *SemesterService) SetEnforcementMode(ctx context.Context, mode string) (models.EnforcementMode, error) {
	normalized := models.EnforcementMode(strings.ToLower(strings.TrimSpace(mode)))
	switch normalized {
	case models.EnforcementRelaxed, models.EnforcementStrict:
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "mode harus relaxed atau strict")
	}
	if err := s.settings.Upsert(ctx, models.SettingKeySemesterEnforcement, string(normalized)); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store enforcement mode")
	}
	return normalized, nil
}

// ResolveFromPayload resolves the semester a write should attach to.
//
// A supplied reference is looked up and, under strict enforcement, must be
// active on the reference date. With no reference the active semester is
// used as fallback; when that fallback is empty the call fails if the
// caller required a semester or enforcement is strict, and otherwise
// resolves to nil so the write proceeds without semester metadata.
func (s *SemesterService) ResolveFromPayload(ctx context.Context, ref models.SemesterRef, opts ResolveOptions) (*models.Semester, error) {
	reference := opts.ReferenceDate
	if reference.IsZero() {
		reference = time.Now()
	}

	semester, err := s.ResolveReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if semester != nil {
		mode, err := s.EnforcementMode(ctx)
		if err != nil {
			return nil, err
		}
		if mode == models.EnforcementStrict && !s.IsActive(semester, reference) {
			return nil, appErrors.ErrSemesterNotActive
		}
		return semester, nil
	}

	active, err := s.ActiveSemester(ctx, reference)
	if err != nil {
		return nil, err
	}
	if active == nil {
		mode, err := s.EnforcementMode(ctx)
		if err != nil {
			return nil, err
		}
		if opts.Required || mode == models.EnforcementStrict {
			return nil, appErrors.ErrActiveSemesterNotFound
		}
	}
	if active == nil && opts.Required {
		return nil, appErrors.ErrSemesterRequired
	}
	return active, nil
}

// Create registers a new semester after validating the payload and the
// (tahunAjaran, semester) uniqueness convention.
func (s *SemesterService) Create(ctx context.Context, req SaveSemesterRequest) (*models.Semester, error) {
	semester, err := s.buildSemester(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}
	return semester, nil
}

// Update rewrites an existing semester.
func (s *SemesterService) Update(ctx context.Context, id int64, req SaveSemesterRequest) (*models.Semester, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	semester, err := s.buildSemester(ctx, req, id)
	if err != nil {
		return nil, err
	}
	semester.ID = id
	if err := s.repo.Update(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update semester")
	}
	return semester, nil
}

// Delete removes a semester.
func (s *SemesterService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.ErrSemesterNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete semester")
	}
	return nil
}

func (s *SemesterService) buildSemester(ctx context.Context, req SaveSemesterRequest, excludeID int64) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	start, err := time.Parse("2006-01-02", req.TanggalMulai)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tanggalMulai harus berformat YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.TanggalSelesai)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tanggalSelesai harus berformat YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tanggalSelesai harus setelah tanggalMulai")
	}
	exists, err := s.repo.ExistsByYearAndNumber(ctx, req.TahunAjaran, req.Semester, excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "semester dengan tahun ajaran dan nomor tersebut sudah ada")
	}
	return &models.Semester{
		TahunAjaran:       req.TahunAjaran,
		Semester:          req.Semester,
		TanggalMulai:      start,
		TanggalSelesai:    end,
		JumlahHariBelajar: req.JumlahHariBelajar,
		Catatan:           req.Catatan,
	}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
