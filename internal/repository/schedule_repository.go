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

// Columns a conflict scan may pivot on. Anything else is rejected before
// it reaches the query builder.
const (
	CandidateColumnKelas          = "ts.kelas_id"
	CandidateColumnTeacher        = "ts.teacher_id"
	CandidateColumnTeacherSubject = "se.teacher_subject_id"
)

// ScheduleRepository handles persistence for timetable entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleDetailSelect = `SELECT se.id, se.teacher_subject_id, se.semester_id, se.hari, se.jam_mulai, se.jam_selesai,
	se.ruangan, se.keterangan, se.created_at, se.updated_at,
	ts.kelas_id, ts.subject_id, ts.teacher_id,
	c.nama AS class_name, s.nama AS subject_nama, s.kode AS subject_kode,
	t.nama AS teacher_nama, t.nip AS teacher_nip,
	sm.tahun_ajaran AS semester_tahun_ajaran, sm.semester AS semester_ke
	FROM schedule_entries se
	JOIN teacher_subjects ts ON ts.id = se.teacher_subject_id
	JOIN classes c ON c.id = ts.kelas_id
	JOIN subjects s ON s.id = ts.subject_id
	JOIN teachers t ON t.id = ts.teacher_id
	JOIN semesters sm ON sm.id = se.semester_id`

// ListDetailed returns timetable entries with class, subject, teacher and
// semester names resolved, filtered and ordered by day then start time.
func (r *ScheduleRepository) ListDetailed(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.KelasID != nil {
		conditions = append(conditions, fmt.Sprintf("ts.kelas_id = $%d", argPos))
		args = append(args, *filter.KelasID)
		argPos++
	}
	if filter.TeacherID != nil {
		conditions = append(conditions, fmt.Sprintf("ts.teacher_id = $%d", argPos))
		args = append(args, *filter.TeacherID)
		argPos++
	}
	if filter.TeacherSubjectID != nil {
		conditions = append(conditions, fmt.Sprintf("se.teacher_subject_id = $%d", argPos))
		args = append(args, *filter.TeacherSubjectID)
		argPos++
	}
	if filter.SemesterID != nil {
		conditions = append(conditions, fmt.Sprintf("se.semester_id = $%d", argPos))
		args = append(args, *filter.SemesterID)
		argPos++
	}
	if filter.Hari != "" {
		conditions = append(conditions, fmt.Sprintf("se.hari = $%d", argPos))
		args = append(args, filter.Hari)
		argPos++
	}
	if filter.WalikelasID != nil {
		conditions = append(conditions, fmt.Sprintf("c.walikelas_id = $%d", argPos))
		args = append(args, *filter.WalikelasID)
		argPos++
	}

	query := scheduleDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY se.hari, se.jam_mulai"

	var rows []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return rows, nil
}

// FindByID loads a bare timetable entry.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	var row models.ScheduleEntry
	err := r.db.GetContext(ctx, &row,
		`SELECT id, teacher_subject_id, semester_id, hari, jam_mulai, jam_selesai, ruangan, keterangan, created_at, updated_at
		 FROM schedule_entries WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindDetailedByID loads one entry with names resolved.
func (r *ScheduleRepository) FindDetailedByID(ctx context.Context, id int64) (*models.ScheduleDetail, error) {
	var row models.ScheduleDetail
	if err := r.db.GetContext(ctx, &row, scheduleDetailSelect+` WHERE se.id = $1`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindCandidates returns the entries that could clash with a slot on the
// given day, pivoted on one of the candidate columns. The new entry itself
// is excluded on update via excludeID.
func (r *ScheduleRepository) FindCandidates(ctx context.Context, hari, column string, value, excludeID int64) ([]models.ScheduleDetail, error) {
	switch column {
	case CandidateColumnKelas, CandidateColumnTeacher, CandidateColumnTeacherSubject:
	default:
		return nil, fmt.Errorf("unsupported candidate column %q", column)
	}

	query := scheduleDetailSelect + fmt.Sprintf(` WHERE se.hari = $1 AND %s = $2`, column)
	args := []interface{}{hari, value}
	if excludeID > 0 {
		query += ` AND se.id <> $3`
		args = append(args, excludeID)
	}
	query += ` ORDER BY se.jam_mulai`

	var rows []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find schedule candidates: %w", err)
	}
	return rows, nil
}

// Create inserts a timetable entry.
func (r *ScheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `INSERT INTO schedule_entries (teacher_subject_id, semester_id, hari, jam_mulai, jam_selesai, ruangan, keterangan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		entry.TeacherSubjectID, entry.SemesterID, entry.Hari, entry.JamMulai, entry.JamSelesai,
		entry.Ruangan, entry.Keterangan, entry.CreatedAt, entry.UpdatedAt,
	).Scan(&entry.ID); err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}
	return nil
}

// Update rewrites a timetable entry.
func (r *ScheduleRepository) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_entries SET teacher_subject_id = :teacher_subject_id, semester_id = :semester_id,
		hari = :hari, jam_mulai = :jam_mulai, jam_selesai = :jam_selesai, ruangan = :ruangan,
		keterangan = :keterangan, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated schedule rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timetable entry.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted schedule rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
