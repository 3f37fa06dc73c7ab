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

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func scheduleDetailColumns() []string {
	return []string{
		"id", "teacher_subject_id", "semester_id", "hari", "jam_mulai", "jam_selesai",
		"ruangan", "keterangan", "created_at", "updated_at",
		"kelas_id", "subject_id", "teacher_id",
		"class_name", "subject_nama", "subject_kode",
		"teacher_nama", "teacher_nip",
		"semester_tahun_ajaran", "semester_ke",
	}
}

func addScheduleDetailRow(rows *sqlmock.Rows, id int64, hari, jamMulai, jamSelesai string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, int64(10), int64(5), hari, jamMulai, jamSelesai,
		nil, nil, now, now,
		int64(1), int64(2), int64(3),
		"X IPA 1", "Matematika", "MTK", "Bu Sari", "1987", "2025/2026", 1,
	)
}

func TestScheduleRepositoryListDetailedFilters(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	rows := addScheduleDetailRow(sqlmock.NewRows(scheduleDetailColumns()), 1, "Senin", "07:00", "08:30")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT se.id, se.teacher_subject_id")).
		WithArgs(int64(1), "Senin").
		WillReturnRows(rows)

	kelasID := int64(1)
	entries, err := repo.ListDetailed(context.Background(), models.ScheduleFilter{
		KelasID: &kelasID,
		Hari:    "Senin",
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "X IPA 1", entries[0].ClassName)
	require.Equal(t, "2025/2026", entries[0].SemesterTahunAjaran)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindCandidatesExcludesSelf(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	rows := addScheduleDetailRow(sqlmock.NewRows(scheduleDetailColumns()), 2, "Selasa", "09:00", "10:00")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT se.id, se.teacher_subject_id")).
		WithArgs("Selasa", int64(3), int64(7)).
		WillReturnRows(rows)

	entries, err := repo.FindCandidates(context.Background(), "Selasa", CandidateColumnTeacher, 3, 7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(2), entries[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindCandidatesRejectsUnknownColumn(t *testing.T) {
	db, _, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	_, err := repo.FindCandidates(context.Background(), "Senin", "se.ruangan", 1, 0)
	require.Error(t, err)
}

func TestScheduleRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schedule_entries")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	entry := &models.ScheduleEntry{
		TeacherSubjectID: 10,
		SemesterID:       5,
		Hari:             "Senin",
		JamMulai:         "07:00",
		JamSelesai:       "08:30",
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	require.Equal(t, int64(42), entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
