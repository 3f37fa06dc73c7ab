package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[int64]*models.Student
}

func (m *mockStudentRepo) List(ctx context.Context, kelasID *int64) ([]models.StudentDetail, error) {
	return nil, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) FindByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	for _, s := range m.students {
		if s.UserID != nil && *s.UserID == userID {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = int64(len(m.students) + 1)
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	return nil
}

type stubGradeSummary struct {
	rows       []models.RaportSubjectGrade
	semesterID *int64
}

func (s *stubGradeSummary) SummarizeByStudent(ctx context.Context, studentID int64, semesterID *int64) ([]models.RaportSubjectGrade, error) {
	s.semesterID = semesterID
	return s.rows, nil
}

type stubAttendanceRecap struct {
	recap models.RaportAttendanceRecap
}

func (s *stubAttendanceRecap) CountByStatus(ctx context.Context, studentID int64, semesterID *int64) (*models.RaportAttendanceRecap, error) {
	return &s.recap, nil
}

func newRaportFixture() (*StudentService, *stubGradeSummary) {
	repo := &mockStudentRepo{students: map[int64]*models.Student{
		4: {ID: 4, Nisn: "0051234567", Nama: "Rina Putri"},
	}}
	grades := &stubGradeSummary{rows: []models.RaportSubjectGrade{
		{SubjectID: 7, SubjectNama: "Matematika", RataRata: 86.5, JumlahNilai: 4, Verified: 3},
	}}
	attendance := &stubAttendanceRecap{recap: models.RaportAttendanceRecap{Hadir: 40, Izin: 1, Sakit: 2, Alfa: 1}}
	svc := NewStudentService(repo, &mockClassReader{}, grades, attendance, nil, nil)
	return svc, grades
}

type mockClassReader struct{}

func (m *mockClassReader) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	return &models.Class{ID: id, Nama: "X IPA 1"}, nil
}

func TestRaportAggregatesGradesAndAttendance(t *testing.T) {
	svc, grades := newRaportFixture()

	semesterID := int64(5)
	summary, err := svc.Raport(context.Background(), 4, &semesterID)
	require.NoError(t, err)

	assert.Equal(t, "Rina Putri", summary.Student.Nama)
	require.Len(t, summary.Grades, 1)
	assert.Equal(t, "Matematika", summary.Grades[0].SubjectNama)
	assert.InDelta(t, 86.5, summary.Grades[0].RataRata, 0.001)
	assert.Equal(t, 40, summary.Attendance.Hadir)
	assert.Equal(t, 1, summary.Attendance.Alfa)

	require.NotNil(t, grades.semesterID)
	assert.Equal(t, int64(5), *grades.semesterID)
	require.NotNil(t, summary.SemesterID)
	assert.Equal(t, int64(5), *summary.SemesterID)
}

func TestRaportUnknownStudent(t *testing.T) {
	svc, _ := newRaportFixture()

	_, err := svc.Raport(context.Background(), 99, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRaportEmptyGradesNormalizedToEmptySlice(t *testing.T) {
	svc, grades := newRaportFixture()
	grades.rows = nil

	summary, err := svc.Raport(context.Background(), 4, nil)
	require.NoError(t, err)
	assert.NotNil(t, summary.Grades)
	assert.Empty(t, summary.Grades)
	assert.Nil(t, summary.SemesterID)
}
