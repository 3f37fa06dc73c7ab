package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
	"github.com/siakad-go/siakad-api/pkg/linktoken"
)

type schoolRepository interface {
	GetProfile(ctx context.Context) (*models.SchoolProfile, error)
	UpsertProfile(ctx context.Context, profile *models.SchoolProfile) error
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
	CreateAchievement(ctx context.Context, achievement *models.Achievement) error
	DeleteAchievement(ctx context.Context, id int64) error
	ListPrograms(ctx context.Context) ([]models.Program, error)
	CreateProgram(ctx context.Context, program *models.Program) error
	DeleteProgram(ctx context.Context, id int64) error
	CreateRegistrationLink(ctx context.Context, link *models.RegistrationLink) error
	FindRegistrationLinkByKode(ctx context.Context, kode string) (*models.RegistrationLink, error)
	MarkRegistrationLinkUsed(ctx context.Context, id int64) error
}

// SaveProfileRequest describes the school profile payload.
type SaveProfileRequest struct {
	Nama    string  `json:"nama" validate:"required"`
	Npsn    *string `json:"npsn"`
	Alamat  *string `json:"alamat"`
	Telepon *string `json:"telepon"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Website *string `json:"website"`
	KepSek  *string `json:"kepalaSekolah"`
}

// CreateAchievementRequest describes a new showcased achievement.
type CreateAchievementRequest struct {
	Judul     string  `json:"judul" validate:"required"`
	Deskripsi *string `json:"deskripsi"`
	Tingkat   *string `json:"tingkat"`
	Tahun     *int    `json:"tahun"`
}

// CreateProgramRequest describes a new school program.
type CreateProgramRequest struct {
	Nama      string  `json:"nama" validate:"required"`
	Deskripsi *string `json:"deskripsi"`
	Kategori  *string `json:"kategori"`
}

// SchoolService owns the public school content and registration links.
type SchoolService struct {
	repo      schoolRepository
	signer    *linktoken.Signer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolService constructs SchoolService.
func NewSchoolService(repo schoolRepository, signer *linktoken.Signer, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{repo: repo, signer: signer, validator: validate, logger: logger}
}

// Profile returns the school profile; nil means it has not been set.
func (s *SchoolService) Profile(ctx context.Context) (*models.SchoolProfile, error) {
	profile, err := s.repo.GetProfile(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	return profile, nil
}

// SaveProfile creates or rewrites the single profile row.
func (s *SchoolService) SaveProfile(ctx context.Context, req SaveProfileRequest) (*models.SchoolProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile := &models.SchoolProfile{
		Nama:    req.Nama,
		Npsn:    req.Npsn,
		Alamat:  req.Alamat,
		Telepon: req.Telepon,
		Email:   req.Email,
		Website: req.Website,
		KepSek:  req.KepSek,
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save school profile")
	}
	return profile, nil
}

// ListAchievements returns showcased achievements.
func (s *SchoolService) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	rows, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list achievements")
	}
	return rows, nil
}

// CreateAchievement adds an achievement.
func (s *SchoolService) CreateAchievement(ctx context.Context, req CreateAchievementRequest) (*models.Achievement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid achievement payload")
	}
	achievement := &models.Achievement{Judul: req.Judul, Deskripsi: req.Deskripsi, Tingkat: req.Tingkat, Tahun: req.Tahun}
	if err := s.repo.CreateAchievement(ctx, achievement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create achievement")
	}
	return achievement, nil
}

// DeleteAchievement removes an achievement.
func (s *SchoolService) DeleteAchievement(ctx context.Context, id int64) error {
	if err := s.repo.DeleteAchievement(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "prestasi tidak ditemukan")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete achievement")
	}
	return nil
}

// ListPrograms returns school programs.
func (s *SchoolService) ListPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := s.repo.ListPrograms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return rows, nil
}

// CreateProgram adds a program.
func (s *SchoolService) CreateProgram(ctx context.Context, req CreateProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	program := &models.Program{Nama: req.Nama, Deskripsi: req.Deskripsi, Kategori: req.Kategori}
	if err := s.repo.CreateProgram(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	return program, nil
}

// DeleteProgram removes a program.
func (s *SchoolService) DeleteProgram(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProgram(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "program tidak ditemukan")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program")
	}
	return nil
}

// CreateRegistrationLink mints a signed registration link. The public code
// is random; the signed token binds the code to its audience and expiry.
func (s *SchoolService) CreateRegistrationLink(ctx context.Context, audience string) (*models.RegistrationLink, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "registration link signing is not configured")
	}
	kode := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	token, expiresAt, err := s.signer.Generate(kode, audience)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign registration link")
	}

	link := &models.RegistrationLink{Kode: kode, Token: token, ExpiresAt: expiresAt}
	if audience != "" {
		link.Audience = &audience
	}
	if err := s.repo.CreateRegistrationLink(ctx, link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store registration link")
	}
	return link, nil
}

// ValidateRegistrationLink checks a presented token against the stored
// link and marks first use.
func (s *SchoolService) ValidateRegistrationLink(ctx context.Context, token string) (*models.RegistrationLink, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "registration link signing is not configured")
	}
	kode, _, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "tautan pendaftaran tidak valid atau sudah kedaluwarsa")
	}

	link, err := s.repo.FindRegistrationLinkByKode(ctx, kode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tautan pendaftaran tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration link")
	}
	if time.Now().After(link.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "tautan pendaftaran sudah kedaluwarsa")
	}
	if link.UsedAt == nil {
		if err := s.repo.MarkRegistrationLinkUsed(ctx, link.ID); err != nil && err != sql.ErrNoRows {
			s.logger.Warn("failed to mark registration link used",
				zap.String("kode", kode), zap.Error(err))
		}
	}
	return link, nil
}
