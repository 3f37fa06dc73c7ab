package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/siakad-go/siakad-api/internal/models"
)

func newAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAttendanceRepositoryFindAbsenceCandidates(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	rows := sqlmock.NewRows([]string{"student_id", "kelas_id", "subject_id", "teacher_id"}).
		AddRow(int64(11), int64(1), int64(2), int64(3)).
		AddRow(int64(12), int64(1), int64(2), int64(3))
	mock.ExpectQuery(regexp.QuoteMeta("NOT EXISTS")).
		WithArgs("2025-09-01").
		WillReturnRows(rows)

	candidates, err := repo.FindAbsenceCandidates(context.Background(), "2025-09-01")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, int64(11), candidates[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

// The candidate set comes from the teacher assignments alone. A relation
// with no timetable slot on the run date still yields its rows, so the
// query must not touch schedule_entries.
func TestAttendanceRepositoryAbsenceCandidatesIgnoreTimetable(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	rows := sqlmock.NewRows([]string{"student_id", "kelas_id", "subject_id", "teacher_id"}).
		AddRow(int64(11), int64(1), int64(2), int64(3))
	mock.ExpectQuery(`FROM teacher_subjects ts\s+JOIN students st ON st\.kelas_id = ts\.kelas_id`).
		WithArgs("2025-09-06").
		WillReturnRows(rows)

	candidates, err := repo.FindAbsenceCandidates(context.Background(), "2025-09-06")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.NotContains(t, absenceCandidateQuery, "schedule_entries")
	require.NoError(t, mock.ExpectationsWereMet())
}

// Two teachers teaching the same subject to one class produce independent
// candidate tuples: a record for one teacher must not suppress the other's
// absence row, so the exclusion matches on the teacher as well.
func TestAttendanceRepositoryAbsenceCandidatesPerTeacher(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	rows := sqlmock.NewRows([]string{"student_id", "kelas_id", "subject_id", "teacher_id"}).
		AddRow(int64(11), int64(1), int64(2), int64(3)).
		AddRow(int64(11), int64(1), int64(2), int64(4))
	mock.ExpectQuery(regexp.QuoteMeta("ar.teacher_id = ts.teacher_id")).
		WithArgs("2025-09-01").
		WillReturnRows(rows)

	candidates, err := repo.FindAbsenceCandidates(context.Background(), "2025-09-01")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, int64(3), candidates[0].TeacherID)
	require.Equal(t, int64(4), candidates[1].TeacherID)
	require.Contains(t, absenceCandidateQuery, "ar.teacher_id = ts.teacher_id")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkInsertAlfaCommitsAll(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	semester := &models.Semester{ID: 5, TahunAjaran: "2025/2026", Semester: 1}
	candidates := []models.AbsenceCandidate{
		{StudentID: 11, KelasID: 1, SubjectID: 2, TeacherID: 3},
		{StudentID: 12, KelasID: 1, SubjectID: 2, TeacherID: 3},
	}

	mock.ExpectBegin()
	for range candidates {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_records")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	inserted, err := repo.BulkInsertAlfa(context.Background(), "2025-09-01", semester, candidates)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkInsertAlfaRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	candidates := []models.AbsenceCandidate{
		{StudentID: 11, KelasID: 1, SubjectID: 2, TeacherID: 3},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	inserted, err := repo.BulkInsertAlfa(context.Background(), "2025-09-01", nil, candidates)
	require.Error(t, err)
	require.Zero(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkInsertAlfaEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	inserted, err := repo.BulkInsertAlfa(context.Background(), "2025-09-01", nil, nil)
	require.NoError(t, err)
	require.Zero(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByStatusAndRange(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "kelas_id", "subject_id", "teacher_id", "semester_id",
		"tahun_ajaran", "semester", "tanggal", "status", "keterangan", "created_at", "updated_at",
		"student_nama", "student_nisn", "class_name", "subject_nama",
	}).AddRow(
		int64(1), int64(11), int64(1), int64(2), int64(3), int64(5),
		"2025/2026", 1, now, "alfa", models.AutoAlphaNote, now, now,
		"Budi", "0051234567", "X IPA 1", "Matematika",
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ar.id, ar.student_id")).
		WithArgs("alfa", now.Format("2006-01-02"), now.Format("2006-01-02")).
		WillReturnRows(rows)

	records, err := repo.List(context.Background(), models.AttendanceFilter{
		Status:   models.StatusAlfa,
		DateFrom: &now,
		DateTo:   &now,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, models.StatusAlfa, records[0].Status)
	require.Equal(t, models.AutoAlphaNote, *records[0].Keterangan)
	require.NoError(t, mock.ExpectationsWereMet())
}
