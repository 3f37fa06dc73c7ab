package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/siakad-go/siakad-api/internal/models"
)

// SemesterRepository handles persistence for semester windows.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository instantiates a semester repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

const semesterColumns = `id, tahun_ajaran, semester, tanggal_mulai, tanggal_selesai, jumlah_hari_belajar, catatan, created_at, updated_at`

// List returns all semesters, most recent school year first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	query := fmt.Sprintf(`SELECT %s FROM semesters ORDER BY tahun_ajaran DESC, semester DESC`, semesterColumns)
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// FindByID loads a semester by identifier.
func (r *SemesterRepository) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	query := fmt.Sprintf(`SELECT %s FROM semesters WHERE id = $1`, semesterColumns)
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindByYearAndNumber loads the semester matching a school year and term
// number pair.
func (r *SemesterRepository) FindByYearAndNumber(ctx context.Context, tahunAjaran string, semester int) (*models.Semester, error) {
	query := fmt.Sprintf(`SELECT %s FROM semesters WHERE tahun_ajaran = $1 AND semester = $2`, semesterColumns)
	var row models.Semester
	if err := r.db.GetContext(ctx, &row, query, tahunAjaran, semester); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindActive returns the semester whose date bounds contain the reference
// date, preferring the most recently started one. Returns nil when no
// semester is active.
func (r *SemesterRepository) FindActive(ctx context.Context, reference time.Time) (*models.Semester, error) {
	dateOnly := reference.Format("2006-01-02")
	query := fmt.Sprintf(`SELECT %s FROM semesters WHERE tanggal_mulai <= $1 AND tanggal_selesai >= $1 ORDER BY tanggal_mulai DESC LIMIT 1`, semesterColumns)
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, dateOnly); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active semester: %w", err)
	}
	return &semester, nil
}

// ExistsByYearAndNumber checks the (tahun_ajaran, semester) uniqueness
// convention, optionally excluding one row.
func (r *SemesterRepository) ExistsByYearAndNumber(ctx context.Context, tahunAjaran string, semester int, excludeID int64) (bool, error) {
	base := `SELECT 1 FROM semesters WHERE tahun_ajaran = $1 AND semester = $2`
	args := []interface{}{tahunAjaran, semester}
	if excludeID > 0 {
		base += ` AND id <> $3`
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+` LIMIT 1`, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check semester uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts a new semester record.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	now := time.Now().UTC()
	semester.CreatedAt = now
	semester.UpdatedAt = now

	const query = `INSERT INTO semesters (tahun_ajaran, semester, tanggal_mulai, tanggal_selesai, jumlah_hari_belajar, catatan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		semester.TahunAjaran, semester.Semester, semester.TanggalMulai, semester.TanggalSelesai,
		semester.JumlahHariBelajar, semester.Catatan, semester.CreatedAt, semester.UpdatedAt,
	).Scan(&semester.ID); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

// Update modifies an existing semester.
func (r *SemesterRepository) Update(ctx context.Context, semester *models.Semester) error {
	semester.UpdatedAt = time.Now().UTC()
	const query = `UPDATE semesters SET tahun_ajaran = :tahun_ajaran, semester = :semester, tanggal_mulai = :tanggal_mulai,
		tanggal_selesai = :tanggal_selesai, jumlah_hari_belajar = :jumlah_hari_belajar, catatan = :catatan, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("update semester: %w", err)
	}
	return nil
}

// Delete removes a semester by id.
func (r *SemesterRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete semester: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted semester rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
