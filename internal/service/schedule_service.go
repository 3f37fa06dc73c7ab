package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/internal/models"
	"github.com/siakad-go/siakad-api/internal/repository"
	appErrors "github.com/siakad-go/siakad-api/pkg/errors"
	"github.com/siakad-go/siakad-api/pkg/timeslot"
)

type scheduleRepository interface {
	ListDetailed(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error)
	FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error)
	FindDetailedByID(ctx context.Context, id int64) (*models.ScheduleDetail, error)
	FindCandidates(ctx context.Context, hari, column string, value, excludeID int64) ([]models.ScheduleDetail, error)
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id int64) error
}

type teacherSubjectReader interface {
	MapByIDs(ctx context.Context, ids []int64) (map[int64]models.TeacherSubject, error)
}

type semesterReader interface {
	FindByID(ctx context.Context, id int64) (*models.Semester, error)
}

// SaveScheduleRequest describes schedule create/update payloads. The id
// fields accept JSON numbers as well as numeric strings.
type SaveScheduleRequest struct {
	TeacherSubjectID models.FlexNumber `json:"teacherSubjectId"`
	SemesterID       models.FlexNumber `json:"semesterId"`
	Hari             string            `json:"hari"`
	JamMulai         string            `json:"jamMulai"`
	JamSelesai       string            `json:"jamSelesai"`
	Ruangan          *string           `json:"ruangan"`
	Keterangan       *string           `json:"keterangan"`
}

// ScheduleService owns the timetable and its conflict guard chain.
//
// Known limitation: the conflict scan and the following insert are not
// serialized against concurrent writers, so two simultaneous saves can both
// pass the scan. Single-operator admin traffic makes this acceptable.
type ScheduleService struct {
	repo      scheduleRepository
	relations teacherSubjectReader
	semesters semesterReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

const scheduleCachePrefix = "schedules:list:"

// NewScheduleService constructs ScheduleService. The cache may be nil.
func NewScheduleService(repo scheduleRepository, relations teacherSubjectReader, semesters semesterReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, relations: relations, semesters: semesters, cache: cache, validator: validate, logger: logger}
}

// List returns timetable entries for the filter. The second return value
// reports whether the payload came from cache.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, bool, error) {
	key := scheduleCacheKey(filter)
	var cached []models.ScheduleDetail
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	entries, err := s.repo.ListDetailed(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	_ = s.cache.Set(ctx, key, entries, 0)
	return entries, false, nil
}

// FindByID returns one joined entry.
func (s *ScheduleService) FindByID(ctx context.Context, id int64) (*models.ScheduleDetail, error) {
	entry, err := s.repo.FindDetailedByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrScheduleNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return entry, nil
}

// Create runs the guard chain and inserts a new entry, returning the
// joined row.
func (s *ScheduleService) Create(ctx context.Context, req SaveScheduleRequest) (*models.ScheduleDetail, error) {
	entry, err := s.guard(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.invalidateCache(ctx)
	return s.FindByID(ctx, entry.ID)
}

// Update runs the guard chain against the merged payload and rewrites the
// entry. Fields missing from the payload inherit from the stored row.
func (s *ScheduleService) Update(ctx context.Context, id int64, req SaveScheduleRequest) (*models.ScheduleDetail, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrScheduleNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	merged := req
	if merged.TeacherSubjectID.Empty() {
		merged.TeacherSubjectID = models.FlexNumber(fmt.Sprintf("%d", existing.TeacherSubjectID))
	}
	if merged.SemesterID.Empty() {
		merged.SemesterID = models.FlexNumber(fmt.Sprintf("%d", existing.SemesterID))
	}
	if merged.Hari == "" {
		merged.Hari = existing.Hari
	}
	if merged.JamMulai == "" {
		merged.JamMulai = existing.JamMulai
	}
	if merged.JamSelesai == "" {
		merged.JamSelesai = existing.JamSelesai
	}
	if merged.Ruangan == nil {
		merged.Ruangan = existing.Ruangan
	}
	if merged.Keterangan == nil {
		merged.Keterangan = existing.Keterangan
	}

	entry, err := s.guard(ctx, merged, existing)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	entry.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, entry); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrScheduleNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	s.invalidateCache(ctx)
	return s.FindByID(ctx, id)
}

// Delete removes an entry.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.ErrScheduleNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.invalidateCache(ctx)
	return nil
}

// guard walks the validation pipeline and returns the entry ready to
// persist. Each step exits early on its first failure.
func (s *ScheduleService) guard(ctx context.Context, req SaveScheduleRequest, existing *models.ScheduleEntry) (*models.ScheduleEntry, error) {
	// Step 1: required fields. On update the caller has already merged in
	// the stored values, so emptiness here is a real omission.
	switch {
	case req.TeacherSubjectID.Empty():
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacherSubjectId wajib diisi")
	case req.SemesterID.Empty():
		return nil, appErrors.Clone(appErrors.ErrValidation, "semesterId wajib diisi")
	case req.Hari == "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "hari wajib diisi")
	case req.JamMulai == "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "jamMulai wajib diisi")
	case req.JamSelesai == "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "jamSelesai wajib diisi")
	}
	if !models.ValidHari(req.Hari) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hari harus salah satu dari Senin sampai Minggu")
	}

	// Step 2: numeric coercion of the id fields.
	relationID, err := req.TeacherSubjectID.Int64()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacherSubjectId harus berupa angka")
	}
	semesterID, err := req.SemesterID.Int64()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semesterId harus berupa angka")
	}

	// Step 3: time-range validity.
	start, ok := timeslot.ParseClockMinutes(req.JamMulai)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "jamMulai harus berformat HH:MM")
	}
	end, ok := timeslot.ParseClockMinutes(req.JamSelesai)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "jamSelesai harus berformat HH:MM")
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "jamMulai harus sebelum jamSelesai")
	}

	// Step 4: referenced rows must exist.
	relations, err := s.relations.MapByIDs(ctx, []int64{relationID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher subject")
	}
	relation, ok := relations[relationID]
	if !ok {
		return nil, appErrors.ErrTeacherSubjectNotFound
	}
	if _, err := s.semesters.FindByID(ctx, semesterID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrSemesterNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	// Step 5: conflict scan across the three sharing dimensions.
	var excludeID int64
	if existing != nil {
		excludeID = existing.ID
	}
	conflicts, err := s.scanConflicts(ctx, req, &relation, relationID, excludeID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		s.logger.Info("schedule conflict detected",
			zap.Int64("teacherSubjectId", relationID),
			zap.String("hari", req.Hari),
			zap.Int("conflicts", len(conflicts)))
		return nil, appErrors.WithDetails(appErrors.ErrScheduleConflict, conflicts)
	}

	return &models.ScheduleEntry{
		TeacherSubjectID: relationID,
		SemesterID:       semesterID,
		Hari:             req.Hari,
		JamMulai:         req.JamMulai,
		JamSelesai:       req.JamSelesai,
		Ruangan:          req.Ruangan,
		Keterangan:       req.Keterangan,
	}, nil
}

// scanConflicts gathers candidates per scope, keeps true time overlaps and
// deduplicates by entry id. The first scope to see an entry tags it.
func (s *ScheduleService) scanConflicts(ctx context.Context, req SaveScheduleRequest, relation *models.TeacherSubject, relationID, excludeID int64) ([]models.ScheduleConflict, error) {
	scopes := []struct {
		name   string
		column string
		value  int64
	}{
		{models.ConflictScopeKelas, repository.CandidateColumnKelas, relation.KelasID},
		{models.ConflictScopeTeacher, repository.CandidateColumnTeacher, relation.TeacherID},
		{models.ConflictScopeTeacherSubject, repository.CandidateColumnTeacherSubject, relationID},
	}

	seen := map[int64]struct{}{}
	var conflicts []models.ScheduleConflict
	for _, scope := range scopes {
		candidates, err := s.repo.FindCandidates(ctx, req.Hari, scope.column, scope.value, excludeID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan schedule conflicts")
		}
		for _, candidate := range candidates {
			if !timeslot.Overlaps(req.JamMulai, req.JamSelesai, candidate.JamMulai, candidate.JamSelesai) {
				continue
			}
			if _, dup := seen[candidate.ID]; dup {
				continue
			}
			seen[candidate.ID] = struct{}{}
			conflicts = append(conflicts, models.ScheduleConflict{
				ScheduleDetail: candidate,
				ConflictScope:  scope.name,
			})
		}
	}
	return conflicts, nil
}

func (s *ScheduleService) invalidateCache(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, scheduleCachePrefix+"*")
}

func scheduleCacheKey(filter models.ScheduleFilter) string {
	format := func(v *int64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *v)
	}
	return fmt.Sprintf("%sk=%s:t=%s:ts=%s:s=%s:h=%s:w=%s",
		scheduleCachePrefix,
		format(filter.KelasID), format(filter.TeacherID), format(filter.TeacherSubjectID),
		format(filter.SemesterID), filter.Hari, format(filter.WalikelasID))
}
