package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	"github.com/siakad-go/siakad-api/internal/repository"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
)

type mockScheduleRepo struct {
	entries    map[int64]*models.ScheduleEntry
	details    map[int64]*models.ScheduleDetail
	candidates map[string][]models.ScheduleDetail
	nextID     int64
}

func (m *mockScheduleRepo) ListDetailed(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error) {
	var out []models.ScheduleDetail
	for _, d := range m.details {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleRepo) FindDetailedByID(ctx context.Context, id int64) (*models.ScheduleDetail, error) {
	if d, ok := m.details[id]; ok {
		return d, nil
	}
	if e, ok := m.entries[id]; ok {
		return &models.ScheduleDetail{ScheduleEntry: *e, ClassName: "X IPA 1", SubjectNama: "Matematika", TeacherNama: "Bu Sari", SemesterTahunAjaran: "2024/2025"}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleRepo) FindCandidates(ctx context.Context, hari, column string, value, excludeID int64) ([]models.ScheduleDetail, error) {
	var out []models.ScheduleDetail
	for _, c := range m.candidates[column] {
		if c.Hari == hari && c.ID != excludeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	if m.entries == nil {
		m.entries = make(map[int64]*models.ScheduleEntry)
	}
	m.nextID++
	entry.ID = m.nextID
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockScheduleRepo) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	if _, ok := m.entries[entry.ID]; !ok {
		return sql.ErrNoRows
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.entries[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.entries, id)
	return nil
}

type mockRelationReader struct {
	relations map[int64]*models.TeacherSubject
}

func (m *mockRelationReader) MapByIDs(ctx context.Context, ids []int64) (map[int64]models.TeacherSubject, error) {
	out := make(map[int64]models.TeacherSubject)
	for _, id := range ids {
		if r, ok := m.relations[id]; ok {
			out[id] = *r
		}
	}
	return out, nil
}

type mockSemesterReader struct {
	semesters map[int64]*models.Semester
}

func (m *mockSemesterReader) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func candidate(id int64, hari, start, end string) models.ScheduleDetail {
	return models.ScheduleDetail{
		ScheduleEntry: models.ScheduleEntry{ID: id, Hari: hari, JamMulai: start, JamSelesai: end},
		ClassName:     "X IPA 1",
	}
}

func newScheduleService(repo *mockScheduleRepo) *ScheduleService {
	relations := &mockRelationReader{relations: map[int64]*models.TeacherSubject{
		10: {ID: 10, TeacherID: 3, SubjectID: 7, KelasID: 2},
	}}
	semesters := &mockSemesterReader{semesters: map[int64]*models.Semester{
		5: {ID: 5, TahunAjaran: "2024/2025", Semester: 1},
	}}
	return NewScheduleService(repo, relations, semesters, nil, validator.New(), zap.NewNop())
}

func validRequest() SaveScheduleRequest {
	return SaveScheduleRequest{
		TeacherSubjectID: "10",
		SemesterID:       "5",
		Hari:             "Senin",
		JamMulai:         "07:00",
		JamSelesai:       "08:30",
	}
}

func TestScheduleCreateSucceedsWithJoinedRow(t *testing.T) {
	repo := &mockScheduleRepo{}
	svc := newScheduleService(repo)

	detail, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "X IPA 1", detail.ClassName)
	assert.Equal(t, "Matematika", detail.SubjectNama)
	assert.Equal(t, "Bu Sari", detail.TeacherNama)
	assert.Equal(t, "2024/2025", detail.SemesterTahunAjaran)
}

func TestScheduleCreateMissingField(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{})

	req := validRequest()
	req.JamSelesai = ""
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleCreateNonNumericID(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{})

	req := validRequest()
	req.TeacherSubjectID = "abc"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleCreateMalformedTime(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{})

	req := validRequest()
	req.JamMulai = "7am"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "HH:MM")
}

func TestScheduleCreateInvertedRange(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{})

	req := validRequest()
	req.JamMulai = "09:00"
	req.JamSelesai = "08:00"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "sebelum")
}

func TestScheduleCreateUnknownRelation(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{})

	req := validRequest()
	req.TeacherSubjectID = "99"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTeacherSubjectNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleCreateUnknownSemester(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{})

	req := validRequest()
	req.SemesterID = "99"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSemesterNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleConflictCarriesFullList(t *testing.T) {
	repo := &mockScheduleRepo{candidates: map[string][]models.ScheduleDetail{
		repository.CandidateColumnKelas: {
			candidate(21, "Senin", "07:30", "09:00"),
		},
		repository.CandidateColumnTeacher: {
			candidate(22, "Senin", "08:00", "09:00"),
		},
	}}
	svc := newScheduleService(repo)

	_, err := svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErr.Code)

	conflicts, ok := appErr.Details.([]models.ScheduleConflict)
	require.True(t, ok)
	require.Len(t, conflicts, 2)
	assert.Equal(t, models.ConflictScopeKelas, conflicts[0].ConflictScope)
	assert.Equal(t, models.ConflictScopeTeacher, conflicts[1].ConflictScope)
}

func TestScheduleConflictDeduplicatesFirstScopeWins(t *testing.T) {
	// Same entry visible through two scopes keeps the kelas tag.
	shared := candidate(21, "Senin", "07:30", "09:00")
	repo := &mockScheduleRepo{candidates: map[string][]models.ScheduleDetail{
		repository.CandidateColumnKelas:   {shared},
		repository.CandidateColumnTeacher: {shared},
	}}
	svc := newScheduleService(repo)

	_, err := svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	conflicts, ok := appErrors.FromError(err).Details.([]models.ScheduleConflict)
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictScopeKelas, conflicts[0].ConflictScope)
}

func TestScheduleTouchingSlotsDoNotConflict(t *testing.T) {
	repo := &mockScheduleRepo{candidates: map[string][]models.ScheduleDetail{
		repository.CandidateColumnKelas: {
			candidate(21, "Senin", "08:30", "10:00"),
		},
	}}
	svc := newScheduleService(repo)

	detail, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, detail)
}

func TestScheduleUpdateExcludesSelfAndInherits(t *testing.T) {
	existing := &models.ScheduleEntry{
		ID: 7, TeacherSubjectID: 10, SemesterID: 5,
		Hari: "Senin", JamMulai: "07:00", JamSelesai: "08:30",
	}
	repo := &mockScheduleRepo{
		entries: map[int64]*models.ScheduleEntry{7: existing},
		nextID:  7,
		candidates: map[string][]models.ScheduleDetail{
			repository.CandidateColumnTeacherSubject: {
				candidate(7, "Senin", "07:00", "08:30"),
			},
		},
	}
	svc := newScheduleService(repo)

	// Only the time shifts; everything else inherits from the stored row.
	// The stored row itself is excluded from the scan.
	detail, err := svc.Update(context.Background(), 7, SaveScheduleRequest{
		JamMulai:   "07:15",
		JamSelesai: "08:45",
	})
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "07:15", detail.JamMulai)
	assert.Equal(t, "Senin", detail.Hari)
}

func TestScheduleUpdateMissingEntry(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{})

	_, err := svc.Update(context.Background(), 99, validRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleDeleteMissingEntry(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{})

	err := svc.Delete(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleNotFound.Code, appErrors.FromError(err).Code)
}
