package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
)

type mockSemesterRepo struct {
	semesters map[int64]*models.Semester
	active    *models.Semester
}

func (m *mockSemesterRepo) List(ctx context.Context) ([]models.Semester, error) {
	var out []models.Semester
	for _, s := range m.semesters {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSemesterRepo) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSemesterRepo) FindByYearAndNumber(ctx context.Context, tahunAjaran string, semester int) (*models.Semester, error) {
	for _, s := range m.semesters {
		if s.TahunAjaran == tahunAjaran && s.Semester == semester {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSemesterRepo) FindActive(ctx context.Context, reference time.Time) (*models.Semester, error) {
	return m.active, nil
}

func (m *mockSemesterRepo) ExistsByYearAndNumber(ctx context.Context, tahunAjaran string, semester int, excludeID int64) (bool, error) {
	for _, s := range m.semesters {
		if s.TahunAjaran == tahunAjaran && s.Semester == semester && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSemesterRepo) Create(ctx context.Context, semester *models.Semester) error {
	if m.semesters == nil {
		m.semesters = make(map[int64]*models.Semester)
	}
	semester.ID = int64(len(m.semesters) + 1)
	m.semesters[semester.ID] = semester
	return nil
}

func (m *mockSemesterRepo) Update(ctx context.Context, semester *models.Semester) error {
	m.semesters[semester.ID] = semester
	return nil
}

func (m *mockSemesterRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.semesters[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.semesters, id)
	return nil
}

type mockSettingStore struct {
	values map[string]string
}

func (m *mockSettingStore) Get(ctx context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *mockSettingStore) Upsert(ctx context.Context, key, value string) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func date(value string) time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return t
}

func semesterFixture() *models.Semester {
	return &models.Semester{
		ID:             1,
		TahunAjaran:    "2024/2025",
		Semester:       1,
		TanggalMulai:   date("2024-07-01"),
		TanggalSelesai: date("2024-12-20"),
	}
}

func newSemesterService(repo *mockSemesterRepo, settings *mockSettingStore) *SemesterService {
	if settings == nil {
		settings = &mockSettingStore{}
	}
	return NewSemesterService(repo, settings, validator.New(), zap.NewNop())
}

func TestResolveReferenceByIDPrecedence(t *testing.T) {
	repo := &mockSemesterRepo{semesters: map[int64]*models.Semester{1: semesterFixture()}}
	svc := newSemesterService(repo, nil)

	// Pair points nowhere, id wins.
	sem, err := svc.ResolveReference(context.Background(), models.SemesterRef{
		SemesterID:  "1",
		TahunAjaran: "1999/2000",
		Semester:    "2",
	})
	require.NoError(t, err)
	require.NotNil(t, sem)
	assert.Equal(t, int64(1), sem.ID)
}

func TestResolveReferenceNonNumericID(t *testing.T) {
	repo := &mockSemesterRepo{semesters: map[int64]*models.Semester{1: semesterFixture()}}
	svc := newSemesterService(repo, nil)

	_, err := svc.ResolveReference(context.Background(), models.SemesterRef{SemesterID: "abc"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSemesterNotFound.Code, appErrors.FromError(err).Code)
}

func TestResolveReferenceByPair(t *testing.T) {
	repo := &mockSemesterRepo{semesters: map[int64]*models.Semester{1: semesterFixture()}}
	svc := newSemesterService(repo, nil)

	sem, err := svc.ResolveReference(context.Background(), models.SemesterRef{
		TahunAjaran: "2024/2025",
		Semester:    "1",
	})
	require.NoError(t, err)
	require.NotNil(t, sem)
	assert.Equal(t, "2024/2025", sem.TahunAjaran)
}

func TestResolveReferenceEmptyIsNil(t *testing.T) {
	svc := newSemesterService(&mockSemesterRepo{}, nil)

	sem, err := svc.ResolveReference(context.Background(), models.SemesterRef{})
	require.NoError(t, err)
	assert.Nil(t, sem)
}

func TestIsActiveInclusiveBounds(t *testing.T) {
	svc := newSemesterService(&mockSemesterRepo{}, nil)
	sem := semesterFixture()

	assert.True(t, svc.IsActive(sem, date("2024-07-01")))
	assert.True(t, svc.IsActive(sem, date("2024-12-20")))
	assert.True(t, svc.IsActive(sem, date("2024-09-15")))
	assert.False(t, svc.IsActive(sem, date("2024-06-30")))
	assert.False(t, svc.IsActive(sem, date("2024-12-21")))
	assert.False(t, svc.IsActive(nil, date("2024-09-15")))
}

func TestEnforcementModeNormalizesUnknown(t *testing.T) {
	settings := &mockSettingStore{values: map[string]string{
		models.SettingKeySemesterEnforcement: "banana",
	}}
	svc := newSemesterService(&mockSemesterRepo{}, settings)

	mode, err := svc.EnforcementMode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.EnforcementRelaxed, mode)
}

func TestEnforcementModeAbsentIsRelaxed(t *testing.T) {
	svc := newSemesterService(&mockSemesterRepo{}, &mockSettingStore{})

	mode, err := svc.EnforcementMode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.EnforcementRelaxed, mode)
}

func TestSetEnforcementModeCaseInsensitive(t *testing.T) {
	settings := &mockSettingStore{}
	svc := newSemesterService(&mockSemesterRepo{}, settings)

	mode, err := svc.SetEnforcementMode(context.Background(), "STRICT")
	require.NoError(t, err)
	assert.Equal(t, models.EnforcementStrict, mode)
	assert.Equal(t, "strict", settings.values[models.SettingKeySemesterEnforcement])

	_, err = svc.SetEnforcementMode(context.Background(), "lenient")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResolveFromPayloadStrictRejectsInactive(t *testing.T) {
	repo := &mockSemesterRepo{semesters: map[int64]*models.Semester{1: semesterFixture()}}
	settings := &mockSettingStore{values: map[string]string{
		models.SettingKeySemesterEnforcement: "strict",
	}}
	svc := newSemesterService(repo, settings)

	_, err := svc.ResolveFromPayload(context.Background(), models.SemesterRef{SemesterID: "1"},
		ResolveOptions{ReferenceDate: date("2025-03-01")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSemesterNotActive.Code, appErrors.FromError(err).Code)
}

func TestResolveFromPayloadRelaxedAcceptsInactive(t *testing.T) {
	repo := &mockSemesterRepo{semesters: map[int64]*models.Semester{1: semesterFixture()}}
	svc := newSemesterService(repo, &mockSettingStore{})

	sem, err := svc.ResolveFromPayload(context.Background(), models.SemesterRef{SemesterID: "1"},
		ResolveOptions{ReferenceDate: date("2025-03-01")})
	require.NoError(t, err)
	require.NotNil(t, sem)
	assert.Equal(t, int64(1), sem.ID)
}

func TestResolveFromPayloadFallsBackToActive(t *testing.T) {
	active := semesterFixture()
	repo := &mockSemesterRepo{semesters: map[int64]*models.Semester{1: active}, active: active}
	svc := newSemesterService(repo, &mockSettingStore{})

	sem, err := svc.ResolveFromPayload(context.Background(), models.SemesterRef{}, ResolveOptions{})
	require.NoError(t, err)
	require.NotNil(t, sem)
	assert.Equal(t, active.ID, sem.ID)
}

func TestResolveFromPayloadNoActiveRequired(t *testing.T) {
	svc := newSemesterService(&mockSemesterRepo{}, &mockSettingStore{})

	_, err := svc.ResolveFromPayload(context.Background(), models.SemesterRef{}, ResolveOptions{Required: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrActiveSemesterNotFound.Code, appErrors.FromError(err).Code)
}

func TestResolveFromPayloadNoActiveStrict(t *testing.T) {
	settings := &mockSettingStore{values: map[string]string{
		models.SettingKeySemesterEnforcement: "strict",
	}}
	svc := newSemesterService(&mockSemesterRepo{}, settings)

	_, err := svc.ResolveFromPayload(context.Background(), models.SemesterRef{}, ResolveOptions{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrActiveSemesterNotFound.Code, appErrors.FromError(err).Code)
}

func TestResolveFromPayloadNoActiveRelaxedOptional(t *testing.T) {
	svc := newSemesterService(&mockSemesterRepo{}, &mockSettingStore{})

	sem, err := svc.ResolveFromPayload(context.Background(), models.SemesterRef{}, ResolveOptions{})
	require.NoError(t, err)
	assert.Nil(t, sem)
}

func TestSemesterUniquenessConflict(t *testing.T) {
	repo := &mockSemesterRepo{semesters: map[int64]*models.Semester{1: semesterFixture()}}
	svc := newSemesterService(repo, nil)

	_, err := svc.Create(context.Background(), SaveSemesterRequest{
		TahunAjaran:    "2024/2025",
		Semester:       1,
		TanggalMulai:   "2024-07-01",
		TanggalSelesai: "2024-12-20",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
