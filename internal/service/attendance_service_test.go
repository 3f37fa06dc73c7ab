package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-go/siakad-api/internal/models"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records    map[int64]*models.AttendanceRecord
	candidates map[string][]models.AbsenceCandidate
	existing   map[string]bool
	nextID     int64

	candidatesTanggal string
	insertedTanggal   string
	insertedSemester  *models.Semester
	bulkCalls         int
	bulkErr           error
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error) {
	var out []models.AttendanceDetail
	for _, r := range m.records {
		out = append(out, models.AttendanceDetail{AttendanceRecord: *r})
	}
	return out, nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	if r, ok := m.records[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) FindAbsenceCandidates(ctx context.Context, tanggal string) ([]models.AbsenceCandidate, error) {
	m.candidatesTanggal = tanggal
	return m.candidates[tanggal], nil
}

func (m *mockAttendanceRepo) BulkInsertAlfa(ctx context.Context, tanggal string, semester *models.Semester, candidates []models.AbsenceCandidate) (int, error) {
	m.bulkCalls++
	if m.bulkErr != nil {
		return 0, m.bulkErr
	}
	m.insertedTanggal = tanggal
	m.insertedSemester = semester
	// Once inserted, the set difference for this date is empty.
	delete(m.candidates, tanggal)
	return len(candidates), nil
}

func (m *mockAttendanceRepo) Exists(ctx context.Context, studentID, subjectID int64, tanggal string) (bool, error) {
	return m.existing[tanggal], nil
}

func (m *mockAttendanceRepo) Create(ctx context.Context, record *models.AttendanceRecord) error {
	if m.records == nil {
		m.records = make(map[int64]*models.AttendanceRecord)
	}
	m.nextID++
	record.ID = m.nextID
	m.records[record.ID] = record
	return nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, record *models.AttendanceRecord) error {
	if _, ok := m.records[record.ID]; !ok {
		return sql.ErrNoRows
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	return nil
}

type stubResolver struct {
	active     *models.Semester
	resolved   *models.Semester
	resolveErr error
}

func (s *stubResolver) ActiveSemester(ctx context.Context, reference time.Time) (*models.Semester, error) {
	return s.active, nil
}

func (s *stubResolver) ResolveFromPayload(ctx context.Context, ref models.SemesterRef, opts ResolveOptions) (*models.Semester, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.resolved, nil
}

func newAttendanceService(repo *mockAttendanceRepo, resolver *stubResolver) *AttendanceService {
	svc := NewAttendanceService(repo, resolver, nil, nil, nil)
	// Pin "today" to a known Monday.
	svc.now = func() time.Time {
		return time.Date(2025, 9, 1, 10, 30, 0, 0, time.Local)
	}
	return svc
}

func absenceCandidates(n int) []models.AbsenceCandidate {
	out := make([]models.AbsenceCandidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.AbsenceCandidate{
			StudentID: int64(100 + i),
			KelasID:   2,
			SubjectID: 7,
			TeacherID: 3,
		})
	}
	return out
}

func TestMarkAbsentBlankDateUsesToday(t *testing.T) {
	repo := &mockAttendanceRepo{candidates: map[string][]models.AbsenceCandidate{
		"2025-09-01": absenceCandidates(3),
	}}
	svc := newAttendanceService(repo, &stubResolver{active: semesterFixture()})

	result, err := svc.MarkAbsentForDate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", result.Date)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, "2025-09-01", repo.candidatesTanggal)
}

func TestMarkAbsentAcceptsRFC3339(t *testing.T) {
	repo := &mockAttendanceRepo{candidates: map[string][]models.AbsenceCandidate{
		"2025-09-02": absenceCandidates(1),
	}}
	svc := newAttendanceService(repo, &stubResolver{})

	result, err := svc.MarkAbsentForDate(context.Background(), "2025-09-02T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-02", result.Date)
	assert.Equal(t, "2025-09-02", repo.candidatesTanggal)
}

func TestMarkAbsentRejectsMalformedDate(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &stubResolver{})

	_, err := svc.MarkAbsentForDate(context.Background(), "01/09/2025")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDate.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.bulkCalls)
}

func TestMarkAbsentEmptyCandidateSet(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &stubResolver{active: semesterFixture()})

	result, err := svc.MarkAbsentForDate(context.Background(), "2025-09-01")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Zero(t, repo.bulkCalls)
}

func TestMarkAbsentIdempotentAcrossRuns(t *testing.T) {
	repo := &mockAttendanceRepo{candidates: map[string][]models.AbsenceCandidate{
		"2025-09-01": absenceCandidates(2),
	}}
	svc := newAttendanceService(repo, &stubResolver{active: semesterFixture()})

	first, err := svc.MarkAbsentForDate(context.Background(), "2025-09-01")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	second, err := svc.MarkAbsentForDate(context.Background(), "2025-09-01")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, repo.bulkCalls)
}

func TestMarkAbsentCarriesActiveSemesterMetadata(t *testing.T) {
	active := semesterFixture()
	repo := &mockAttendanceRepo{candidates: map[string][]models.AbsenceCandidate{
		"2025-09-01": absenceCandidates(1),
	}}
	svc := newAttendanceService(repo, &stubResolver{active: active})

	result, err := svc.MarkAbsentForDate(context.Background(), "2025-09-01")
	require.NoError(t, err)
	require.NotNil(t, result.SemesterID)
	assert.Equal(t, active.ID, *result.SemesterID)
	assert.Equal(t, active.TahunAjaran, *result.TahunAjaran)
	require.NotNil(t, repo.insertedSemester)
	assert.Equal(t, active.ID, repo.insertedSemester.ID)
}

func TestMarkAbsentWithoutActiveSemester(t *testing.T) {
	repo := &mockAttendanceRepo{candidates: map[string][]models.AbsenceCandidate{
		"2025-09-01": absenceCandidates(1),
	}}
	svc := newAttendanceService(repo, &stubResolver{active: nil})

	result, err := svc.MarkAbsentForDate(context.Background(), "2025-09-01")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Nil(t, result.SemesterID)
	assert.Nil(t, result.TahunAjaran)
	assert.Nil(t, repo.insertedSemester)
}

func TestAttendanceCreateRejectsUnknownStatus(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &stubResolver{resolved: semesterFixture()})

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentID: 1, KelasID: 2, SubjectID: 7, TeacherID: 3,
		Tanggal: "2025-09-01", Status: "bolos",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceCreateRejectsDuplicate(t *testing.T) {
	repo := &mockAttendanceRepo{existing: map[string]bool{"2025-09-01": true}}
	svc := newAttendanceService(repo, &stubResolver{resolved: semesterFixture()})

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentID: 1, KelasID: 2, SubjectID: 7, TeacherID: 3,
		Tanggal: "2025-09-01", Status: "hadir",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAttendanceCreatePropagatesResolverError(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &stubResolver{resolveErr: appErrors.ErrActiveSemesterNotFound})

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentID: 1, KelasID: 2, SubjectID: 7, TeacherID: 3,
		Tanggal: "2025-09-01", Status: "sakit",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrActiveSemesterNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceCreateStampsSemester(t *testing.T) {
	resolved := semesterFixture()
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &stubResolver{resolved: resolved})

	record, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentID: 1, KelasID: 2, SubjectID: 7, TeacherID: 3,
		Tanggal: "2025-09-01", Status: "HADIR",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusHadir, record.Status)
	require.NotNil(t, record.SemesterID)
	assert.Equal(t, resolved.ID, *record.SemesterID)
	assert.Equal(t, resolved.TahunAjaran, *record.TahunAjaran)
}

func TestAttendanceUpdateStatusOnly(t *testing.T) {
	note := "dispensasi lomba"
	repo := &mockAttendanceRepo{records: map[int64]*models.AttendanceRecord{
		4: {ID: 4, StudentID: 1, SubjectID: 7, Status: models.StatusAlfa},
	}, nextID: 4}
	svc := newAttendanceService(repo, &stubResolver{})

	record, err := svc.Update(context.Background(), 4, UpdateAttendanceRequest{Status: "izin", Keterangan: &note})
	require.NoError(t, err)
	assert.Equal(t, models.StatusIzin, record.Status)
	require.NotNil(t, record.Keterangan)
	assert.Equal(t, note, *record.Keterangan)
}

func TestAttendanceUpdateMissingRecord(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &stubResolver{})

	_, err := svc.Update(context.Background(), 99, UpdateAttendanceRequest{Status: "hadir"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
