package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-go/siakad-api/internal/models"
	"github.com/siakad-go/siakad-api/internal/service"
)

type autoAlphaRepoStub struct {
	candidates map[string][]models.AbsenceCandidate
}

func (s *autoAlphaRepoStub) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error) {
	return nil, nil
}

func (s *autoAlphaRepoStub) FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	return nil, sql.ErrNoRows
}

func (s *autoAlphaRepoStub) FindAbsenceCandidates(ctx context.Context, tanggal string) ([]models.AbsenceCandidate, error) {
	return s.candidates[tanggal], nil
}

func (s *autoAlphaRepoStub) BulkInsertAlfa(ctx context.Context, tanggal string, semester *models.Semester, candidates []models.AbsenceCandidate) (int, error) {
	return len(candidates), nil
}

func (s *autoAlphaRepoStub) Exists(ctx context.Context, studentID, subjectID int64, tanggal string) (bool, error) {
	return false, nil
}

func (s *autoAlphaRepoStub) Create(ctx context.Context, record *models.AttendanceRecord) error {
	return nil
}

func (s *autoAlphaRepoStub) Update(ctx context.Context, record *models.AttendanceRecord) error {
	return nil
}

func (s *autoAlphaRepoStub) Delete(ctx context.Context, id int64) error {
	return nil
}

type semesterResolverStub struct{}

func (semesterResolverStub) ActiveSemester(ctx context.Context, reference time.Time) (*models.Semester, error) {
	return nil, nil
}

func (semesterResolverStub) ResolveFromPayload(ctx context.Context, ref models.SemesterRef, opts service.ResolveOptions) (*models.Semester, error) {
	return nil, nil
}

func buildAttendanceRouter(repo *autoAlphaRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAttendanceService(repo, semesterResolverStub{}, nil, nil, nil)
	h := NewAttendanceHandler(svc)

	router := gin.New()
	router.POST("/attendance/auto-alpha", h.AutoAlpha)
	return router
}

func TestAutoAlphaEndpointReportsInserted(t *testing.T) {
	repo := &autoAlphaRepoStub{candidates: map[string][]models.AbsenceCandidate{
		"2025-09-01": {
			{StudentID: 1, KelasID: 2, SubjectID: 7, TeacherID: 3},
			{StudentID: 2, KelasID: 2, SubjectID: 7, TeacherID: 3},
		},
	}}
	router := buildAttendanceRouter(repo)

	req, _ := http.NewRequest(http.MethodPost, "/attendance/auto-alpha?date=2025-09-01", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Data models.AutoAlphaResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "2025-09-01", body.Data.Date)
	assert.Equal(t, 2, body.Data.Inserted)
}

func TestAutoAlphaEndpointRejectsBadDate(t *testing.T) {
	router := buildAttendanceRouter(&autoAlphaRepoStub{})

	req, _ := http.NewRequest(http.MethodPost, "/attendance/auto-alpha?date=01-09-2025", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_DATE", body.Error.Code)
}
