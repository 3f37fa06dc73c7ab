package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/siakad-go/siakad-api/internal/models"
)

// SchoolRepository handles the public-facing school content: the profile
// row, achievements, programs and registration links.
type SchoolRepository struct {
	db *sqlx.DB
}

func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// GetProfile returns the single school profile row, or nil when it has
// not been filled in yet.
func (r *SchoolRepository) GetProfile(ctx context.Context) (*models.SchoolProfile, error) {
	const query = `SELECT id, nama, npsn, alamat, telepon, email, website, kepala_sekolah, updated_at
		FROM school_profile ORDER BY id LIMIT 1`
	var profile models.SchoolProfile
	if err := r.db.GetContext(ctx, &profile, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get school profile: %w", err)
	}
	return &profile, nil
}

// UpsertProfile writes the school profile, creating the row on first use.
func (r *SchoolRepository) UpsertProfile(ctx context.Context, profile *models.SchoolProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO school_profile (id, nama, npsn, alamat, telepon, email, website, kepala_sekolah, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET nama = EXCLUDED.nama, npsn = EXCLUDED.npsn, alamat = EXCLUDED.alamat,
			telepon = EXCLUDED.telepon, email = EXCLUDED.email, website = EXCLUDED.website,
			kepala_sekolah = EXCLUDED.kepala_sekolah, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		profile.Nama, profile.Npsn, profile.Alamat, profile.Telepon, profile.Email,
		profile.Website, profile.KepSek, profile.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert school profile: %w", err)
	}
	return nil
}

// ListAchievements returns achievements, newest year first.
func (r *SchoolRepository) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	const query = `SELECT id, judul, deskripsi, tingkat, tahun, created_at, updated_at
		FROM achievements ORDER BY tahun DESC NULLS LAST, judul`
	var rows []models.Achievement
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return rows, nil
}

// CreateAchievement inserts an achievement.
func (r *SchoolRepository) CreateAchievement(ctx context.Context, achievement *models.Achievement) error {
	now := time.Now().UTC()
	achievement.CreatedAt = now
	achievement.UpdatedAt = now
	const query = `INSERT INTO achievements (judul, deskripsi, tingkat, tahun, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		achievement.Judul, achievement.Deskripsi, achievement.Tingkat, achievement.Tahun,
		achievement.CreatedAt, achievement.UpdatedAt,
	).Scan(&achievement.ID); err != nil {
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

// DeleteAchievement removes an achievement.
func (r *SchoolRepository) DeleteAchievement(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM achievements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete achievement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted achievement rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListPrograms returns school programs ordered by name.
func (r *SchoolRepository) ListPrograms(ctx context.Context) ([]models.Program, error) {
	const query = `SELECT id, nama, deskripsi, kategori, created_at, updated_at FROM programs ORDER BY nama`
	var rows []models.Program
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return rows, nil
}

// CreateProgram inserts a program.
func (r *SchoolRepository) CreateProgram(ctx context.Context, program *models.Program) error {
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	const query = `INSERT INTO programs (nama, deskripsi, kategori, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		program.Nama, program.Deskripsi, program.Kategori, program.CreatedAt, program.UpdatedAt,
	).Scan(&program.ID); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// DeleteProgram removes a program.
func (r *SchoolRepository) DeleteProgram(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted program rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateRegistrationLink stores a generated registration link.
func (r *SchoolRepository) CreateRegistrationLink(ctx context.Context, link *models.RegistrationLink) error {
	link.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO registration_links (kode, token, audience, expires_at, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		link.Kode, link.Token, link.Audience, link.ExpiresAt, link.UsedAt, link.CreatedAt,
	).Scan(&link.ID); err != nil {
		return fmt.Errorf("create registration link: %w", err)
	}
	return nil
}

// FindRegistrationLinkByKode loads a registration link by its public code.
func (r *SchoolRepository) FindRegistrationLinkByKode(ctx context.Context, kode string) (*models.RegistrationLink, error) {
	const query = `SELECT id, kode, token, audience, expires_at, used_at, created_at
		FROM registration_links WHERE kode = $1`
	var link models.RegistrationLink
	if err := r.db.GetContext(ctx, &link, query, kode); err != nil {
		return nil, err
	}
	return &link, nil
}

// MarkRegistrationLinkUsed records the first use of a registration link.
func (r *SchoolRepository) MarkRegistrationLinkUsed(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE registration_links SET used_at = $1 WHERE id = $2 AND used_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark registration link used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check used registration link rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
