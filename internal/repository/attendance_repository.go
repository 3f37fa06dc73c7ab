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

// AttendanceRepository handles attendance records, including the bulk
// insert used by the automatic absence job.
type AttendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceDetailSelect = `SELECT ar.id, ar.student_id, ar.kelas_id, ar.subject_id, ar.teacher_id, ar.semester_id,
	ar.tahun_ajaran, ar.semester, ar.tanggal, ar.status, ar.keterangan, ar.created_at, ar.updated_at,
	st.nama AS student_nama, st.nisn AS student_nisn, c.nama AS class_name, s.nama AS subject_nama
	FROM attendance_records ar
	JOIN students st ON st.id = ar.student_id
	JOIN classes c ON c.id = ar.kelas_id
	JOIN subjects s ON s.id = ar.subject_id`

// List returns attendance records matching the filter, newest first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	appendCond := func(expr string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(expr, argPos))
		args = append(args, value)
		argPos++
	}

	if filter.StudentID != nil {
		appendCond("ar.student_id = $%d", *filter.StudentID)
	}
	if filter.KelasID != nil {
		appendCond("ar.kelas_id = $%d", *filter.KelasID)
	}
	if filter.SubjectID != nil {
		appendCond("ar.subject_id = $%d", *filter.SubjectID)
	}
	if filter.TeacherID != nil {
		appendCond("ar.teacher_id = $%d", *filter.TeacherID)
	}
	if filter.SemesterID != nil {
		appendCond("ar.semester_id = $%d", *filter.SemesterID)
	}
	if filter.Status != "" {
		appendCond("ar.status = $%d", string(filter.Status))
	}
	if filter.DateFrom != nil {
		appendCond("ar.tanggal >= $%d", filter.DateFrom.Format("2006-01-02"))
	}
	if filter.DateTo != nil {
		appendCond("ar.tanggal <= $%d", filter.DateTo.Format("2006-01-02"))
	}

	query := attendanceDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY ar.tanggal DESC, st.nama"

	var rows []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return rows, nil
}

// FindByID loads one attendance record.
func (r *AttendanceRepository) FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	var row models.AttendanceRecord
	err := r.db.GetContext(ctx, &row,
		`SELECT id, student_id, kelas_id, subject_id, teacher_id, semester_id, tahun_ajaran, semester,
		 tanggal, status, keterangan, created_at, updated_at FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

const absenceCandidateQuery = `SELECT st.id AS student_id, ts.kelas_id, ts.subject_id, ts.teacher_id
	FROM teacher_subjects ts
	JOIN students st ON st.kelas_id = ts.kelas_id
	WHERE NOT EXISTS (
		SELECT 1 FROM attendance_records ar
		WHERE ar.student_id = st.id AND ar.subject_id = ts.subject_id
		AND ar.teacher_id = ts.teacher_id AND ar.tanggal = $1
	)
	ORDER BY ts.kelas_id, st.id, ts.subject_id, ts.teacher_id`

// FindAbsenceCandidates returns every (student, class, subject, teacher)
// tuple derived from the teacher assignments, minus tuples that already
// have a record for that exact combination on the given date. The set
// difference is computed in SQL so a re-run after a partial insert only
// yields the remainder.
func (r *AttendanceRepository) FindAbsenceCandidates(ctx context.Context, tanggal string) ([]models.AbsenceCandidate, error) {
	var rows []models.AbsenceCandidate
	if err := r.db.SelectContext(ctx, &rows, absenceCandidateQuery, tanggal); err != nil {
		return nil, fmt.Errorf("find absence candidates: %w", err)
	}
	return rows, nil
}

// BulkInsertAlfa inserts the automatic absence rows inside a single
// transaction. Either every candidate is written or none are.
func (r *AttendanceRepository) BulkInsertAlfa(ctx context.Context, tanggal string, semester *models.Semester, candidates []models.AbsenceCandidate) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin auto absence transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		semesterID  *int64
		tahunAjaran *string
		semesterKe  *int
	)
	if semester != nil {
		semesterID = &semester.ID
		tahunAjaran = &semester.TahunAjaran
		semesterKe = &semester.Semester
	}

	const query = `INSERT INTO attendance_records (student_id, kelas_id, subject_id, teacher_id, semester_id,
		tahun_ajaran, semester, tanggal, status, keterangan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	now := time.Now().UTC()
	inserted := 0
	for _, candidate := range candidates {
		if _, err := tx.ExecContext(ctx, query,
			candidate.StudentID, candidate.KelasID, candidate.SubjectID, candidate.TeacherID,
			semesterID, tahunAjaran, semesterKe, tanggal,
			string(models.StatusAlfa), models.AutoAlphaNote, now, now,
		); err != nil {
			return 0, fmt.Errorf("insert auto absence row: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit auto absence transaction: %w", err)
	}
	return inserted, nil
}

// Exists reports whether a record already exists for the student and
// subject on a date.
func (r *AttendanceRepository) Exists(ctx context.Context, studentID, subjectID int64, tanggal string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists,
		`SELECT 1 FROM attendance_records WHERE student_id = $1 AND subject_id = $2 AND tanggal = $3 LIMIT 1`,
		studentID, subjectID, tanggal)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check attendance existence: %w", err)
	}
	return true, nil
}

// Create inserts a manual attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	const query = `INSERT INTO attendance_records (student_id, kelas_id, subject_id, teacher_id, semester_id,
		tahun_ajaran, semester, tanggal, status, keterangan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		record.StudentID, record.KelasID, record.SubjectID, record.TeacherID, record.SemesterID,
		record.TahunAjaran, record.Semester, record.Tanggal, string(record.Status), record.Keterangan,
		record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID); err != nil {
		return fmt.Errorf("create attendance record: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an attendance record.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.AttendanceRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance_records SET status = :status, keterangan = :keterangan, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated attendance rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus tallies a student's attendance records per status,
// optionally scoped to one semester.
func (r *AttendanceRepository) CountByStatus(ctx context.Context, studentID int64, semesterID *int64) (*models.RaportAttendanceRecap, error) {
	query := `SELECT
		COUNT(*) FILTER (WHERE status = 'hadir') AS hadir,
		COUNT(*) FILTER (WHERE status = 'izin') AS izin,
		COUNT(*) FILTER (WHERE status = 'sakit') AS sakit,
		COUNT(*) FILTER (WHERE status = 'alfa') AS alfa
		FROM attendance_records WHERE student_id = $1`
	args := []interface{}{studentID}
	if semesterID != nil {
		query += " AND semester_id = $2"
		args = append(args, *semesterID)
	}

	var recap models.RaportAttendanceRecap
	if err := r.db.GetContext(ctx, &recap, query, args...); err != nil {
		return nil, fmt.Errorf("count attendance by status: %w", err)
	}
	return &recap, nil
}

// Delete removes an attendance record.
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attendance record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted attendance rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
