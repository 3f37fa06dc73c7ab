package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newTeacherSubjectRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func teacherSubjectColumnsList() []string {
	return []string{"id", "teacher_id", "subject_id", "kelas_id", "created_at", "updated_at"}
}

func TestTeacherSubjectRepositoryMapByIDsExpandsInClause(t *testing.T) {
	db, mock, cleanup := newTeacherSubjectRepoMock(t)
	defer cleanup()

	repo := NewTeacherSubjectRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(teacherSubjectColumnsList()).
		AddRow(int64(4), int64(3), int64(7), int64(2), now, now).
		AddRow(int64(9), int64(5), int64(7), int64(2), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id IN (?, ?)")).
		WithArgs(int64(4), int64(9)).
		WillReturnRows(rows)

	assignments, err := repo.MapByIDs(context.Background(), []int64{4, 9})
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	require.Equal(t, int64(3), assignments[4].TeacherID)
	require.Equal(t, int64(5), assignments[9].TeacherID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherSubjectRepositoryMapByIDsEmptyFetchesAll(t *testing.T) {
	db, mock, cleanup := newTeacherSubjectRepoMock(t)
	defer cleanup()

	repo := NewTeacherSubjectRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(teacherSubjectColumnsList()).
		AddRow(int64(4), int64(3), int64(7), int64(2), now, now)
	mock.ExpectQuery(`FROM teacher_subjects$`).WillReturnRows(rows)

	assignments, err := repo.MapByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherSubjectRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newTeacherSubjectRepoMock(t)
	defer cleanup()

	repo := NewTeacherSubjectRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id IN (?)")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(teacherSubjectColumnsList()))

	row, err := repo.FindByID(context.Background(), 99)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.Nil(t, row)
	require.NoError(t, mock.ExpectationsWereMet())
}
