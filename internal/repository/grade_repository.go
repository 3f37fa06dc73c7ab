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

// GradeRepository handles assessment scores and their verification state.
type GradeRepository struct {
	db *sqlx.DB
}

func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeDetailSelect = `SELECT g.id, g.student_id, g.subject_id, g.teacher_id, g.semester_id, g.jenis, g.nilai,
	g.keterangan, g.verified, g.verified_by, g.created_at, g.updated_at,
	st.nama AS student_nama, s.nama AS subject_nama, t.nama AS teacher_nama,
	sm.tahun_ajaran, sm.semester AS semester_ke
	FROM grades g
	JOIN students st ON st.id = g.student_id
	JOIN subjects s ON s.id = g.subject_id
	JOIN teachers t ON t.id = g.teacher_id
	JOIN semesters sm ON sm.id = g.semester_id`

// List returns grades with names resolved, filtered.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	appendCond := func(expr string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(expr, argPos))
		args = append(args, value)
		argPos++
	}

	if filter.StudentID != nil {
		appendCond("g.student_id = $%d", *filter.StudentID)
	}
	if filter.TeacherID != nil {
		appendCond("g.teacher_id = $%d", *filter.TeacherID)
	}
	if filter.SubjectID != nil {
		appendCond("g.subject_id = $%d", *filter.SubjectID)
	}
	if filter.SemesterID != nil {
		appendCond("g.semester_id = $%d", *filter.SemesterID)
	}
	if filter.TahunAjaran != "" {
		appendCond("sm.tahun_ajaran = $%d", filter.TahunAjaran)
	}
	if filter.Semester != nil {
		appendCond("sm.semester = $%d", *filter.Semester)
	}
	if filter.WalikelasID != nil {
		appendCond("st.kelas_id IN (SELECT id FROM classes WHERE walikelas_id = $%d)", *filter.WalikelasID)
	}

	query := gradeDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY g.created_at DESC"

	var rows []models.GradeDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return rows, nil
}

// FindByID loads one grade row.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	var row models.Grade
	err := r.db.GetContext(ctx, &row,
		`SELECT id, student_id, subject_id, teacher_id, semester_id, jenis, nilai, keterangan,
		 verified, verified_by, created_at, updated_at FROM grades WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a grade. New grades start unverified.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	now := time.Now().UTC()
	grade.CreatedAt = now
	grade.UpdatedAt = now
	grade.Verified = false
	grade.VerifiedBy = nil

	const query = `INSERT INTO grades (student_id, subject_id, teacher_id, semester_id, jenis, nilai, keterangan,
		verified, verified_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		grade.StudentID, grade.SubjectID, grade.TeacherID, grade.SemesterID, grade.Jenis, grade.Nilai,
		grade.Keterangan, grade.Verified, grade.VerifiedBy, grade.CreatedAt, grade.UpdatedAt,
	).Scan(&grade.ID); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update rewrites a grade's score fields. Editing a verified grade resets
// its verification, handled by the service layer.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET semester_id = :semester_id, jenis = :jenis, nilai = :nilai,
		keterangan = :keterangan, verified = :verified, verified_by = :verified_by, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated grade rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetVerified flips the verification flag on a grade.
func (r *GradeRepository) SetVerified(ctx context.Context, id int64, verified bool, verifiedBy *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE grades SET verified = $1, verified_by = $2, updated_at = $3 WHERE id = $4`,
		verified, verifiedBy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set grade verification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check verified grade rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SummarizeByStudent averages a student's scores per subject, optionally
// scoped to one semester.
func (r *GradeRepository) SummarizeByStudent(ctx context.Context, studentID int64, semesterID *int64) ([]models.RaportSubjectGrade, error) {
	query := `SELECT g.subject_id, s.nama AS subject_nama,
		COALESCE(AVG(g.nilai), 0) AS rata_rata,
		COUNT(*) AS jumlah_nilai,
		COUNT(*) FILTER (WHERE g.verified) AS verified_count
		FROM grades g
		JOIN subjects s ON s.id = g.subject_id
		WHERE g.student_id = $1`
	args := []interface{}{studentID}
	if semesterID != nil {
		query += " AND g.semester_id = $2"
		args = append(args, *semesterID)
	}
	query += " GROUP BY g.subject_id, s.nama ORDER BY s.nama"

	var rows []models.RaportSubjectGrade
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("summarize grades: %w", err)
	}
	return rows, nil
}

// Delete removes a grade.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted grade rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
