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

func newSemesterRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func semesterColumnsList() []string {
	return []string{"id", "tahun_ajaran", "semester", "tanggal_mulai", "tanggal_selesai", "jumlah_hari_belajar", "catatan", "created_at", "updated_at"}
}

func TestSemesterRepositoryFindActivePicksLatestStart(t *testing.T) {
	db, mock, cleanup := newSemesterRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(semesterColumnsList()).
		AddRow(int64(2), "2025/2026", 1, now.AddDate(0, -1, 0), now.AddDate(0, 5, 0), 0, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY tanggal_mulai DESC LIMIT 1")).
		WithArgs(now.Format("2006-01-02")).
		WillReturnRows(rows)

	semester, err := repo.FindActive(context.Background(), now)
	require.NoError(t, err)
	require.NotNil(t, semester)
	require.Equal(t, int64(2), semester.ID)
	require.Equal(t, "2025/2026", semester.TahunAjaran)
	require.Zero(t, semester.JumlahHariBelajar)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryFindActiveNoneIsNil(t *testing.T) {
	db, mock, cleanup := newSemesterRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY tanggal_mulai DESC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows(semesterColumnsList()))

	semester, err := repo.FindActive(context.Background(), time.Now())
	require.NoError(t, err)
	require.Nil(t, semester)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryExistsByYearAndNumber(t *testing.T) {
	db, mock, cleanup := newSemesterRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM semesters")).
		WithArgs("2025/2026", 1, int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByYearAndNumber(context.Background(), "2025/2026", 1, 4)
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newSemesterRepoMock(t)
	defer cleanup()

	repo := NewSemesterRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO semesters")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	semester := &models.Semester{
		TahunAjaran:    "2025/2026",
		Semester:       2,
		TanggalMulai:   time.Now(),
		TanggalSelesai: time.Now().AddDate(0, 6, 0),
	}
	require.NoError(t, repo.Create(context.Background(), semester))
	require.Equal(t, int64(7), semester.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
