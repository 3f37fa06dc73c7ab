package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/siakad-go/siakad-api/internal/models"
)

// TeacherSubjectRepository handles the assignment rows binding a teacher
// to a subject taught in a class.
type TeacherSubjectRepository struct {
	db *sqlx.DB
}

func NewTeacherSubjectRepository(db *sqlx.DB) *TeacherSubjectRepository {
	return &TeacherSubjectRepository{db: db}
}

const teacherSubjectDetailSelect = `SELECT ts.id, ts.teacher_id, ts.subject_id, ts.kelas_id, ts.created_at, ts.updated_at,
	t.nama AS teacher_nama, s.nama AS subject_nama, s.kode AS subject_kode, c.nama AS class_name
	FROM teacher_subjects ts
	JOIN teachers t ON t.id = ts.teacher_id
	JOIN subjects s ON s.id = ts.subject_id
	JOIN classes c ON c.id = ts.kelas_id`

// ListDetailed returns assignments with teacher, subject and class names
// resolved, optionally filtered.
func (r *TeacherSubjectRepository) ListDetailed(ctx context.Context, filter models.TeacherSubjectFilter) ([]models.TeacherSubjectDetail, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.TeacherID != nil {
		conditions = append(conditions, fmt.Sprintf("ts.teacher_id = $%d", argPos))
		args = append(args, *filter.TeacherID)
		argPos++
	}
	if filter.SubjectID != nil {
		conditions = append(conditions, fmt.Sprintf("ts.subject_id = $%d", argPos))
		args = append(args, *filter.SubjectID)
		argPos++
	}
	if filter.KelasID != nil {
		conditions = append(conditions, fmt.Sprintf("ts.kelas_id = $%d", argPos))
		args = append(args, *filter.KelasID)
		argPos++
	}

	query := teacherSubjectDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.nama, s.nama"

	var rows []models.TeacherSubjectDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return rows, nil
}

// MapByIDs returns assignments keyed by id. An empty id list fetches all
// rows.
func (r *TeacherSubjectRepository) MapByIDs(ctx context.Context, ids []int64) (map[int64]models.TeacherSubject, error) {
	query := `SELECT id, teacher_id, subject_id, kelas_id, created_at, updated_at FROM teacher_subjects`
	args := []interface{}{}
	if len(ids) > 0 {
		var err error
		query, args, err = sqlx.In(query+` WHERE id IN (?)`, ids)
		if err != nil {
			return nil, fmt.Errorf("build teacher subject id query: %w", err)
		}
		query = r.db.Rebind(query)
	}

	var rows []models.TeacherSubject
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("map teacher subjects: %w", err)
	}
	result := make(map[int64]models.TeacherSubject, len(rows))
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}

// FindByID loads a single assignment row through the batch map.
func (r *TeacherSubjectRepository) FindByID(ctx context.Context, id int64) (*models.TeacherSubject, error) {
	rows, err := r.MapByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	row, ok := rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

// FindDetailedByID loads one assignment with names resolved.
func (r *TeacherSubjectRepository) FindDetailedByID(ctx context.Context, id int64) (*models.TeacherSubjectDetail, error) {
	var row models.TeacherSubjectDetail
	if err := r.db.GetContext(ctx, &row, teacherSubjectDetailSelect+` WHERE ts.id = $1`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ExistsByTriple reports whether the (teacher, subject, kelas) combination
// is already assigned, optionally excluding one row.
func (r *TeacherSubjectRepository) ExistsByTriple(ctx context.Context, teacherID, subjectID, kelasID, excludeID int64) (bool, error) {
	query := `SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 AND kelas_id = $3`
	args := []interface{}{teacherID, subjectID, kelasID}
	if excludeID > 0 {
		query += ` AND id <> $4`
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+` LIMIT 1`, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher subject uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts an assignment row.
func (r *TeacherSubjectRepository) Create(ctx context.Context, row *models.TeacherSubject) error {
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now

	const query = `INSERT INTO teacher_subjects (teacher_id, subject_id, kelas_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		row.TeacherID, row.SubjectID, row.KelasID, row.CreatedAt, row.UpdatedAt,
	).Scan(&row.ID); err != nil {
		return fmt.Errorf("create teacher subject: %w", err)
	}
	return nil
}

// Update rewrites an assignment row.
func (r *TeacherSubjectRepository) Update(ctx context.Context, row *models.TeacherSubject) error {
	row.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teacher_subjects SET teacher_id = :teacher_id, subject_id = :subject_id,
		kelas_id = :kelas_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("update teacher subject: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *TeacherSubjectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teacher_subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher subject: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted teacher subject rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
