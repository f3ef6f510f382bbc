package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/repository"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type markStore interface {
	Upsert(ctx context.Context, mark *models.MarkComponent) error
	Get(ctx context.Context, key models.MarkKey) (*models.MarkComponent, error)
	ListForStudent(ctx context.Context, studentID, subjectID, termID, yearID string) ([]models.MarkComponent, error)
	Delete(ctx context.Context, key models.MarkKey) error
}

type resultStore interface {
	Get(ctx context.Context, studentID, subjectID, termID, yearID string) (*models.SubjectResult, error)
	ListByGroup(ctx context.Context, group models.GroupKey) ([]models.SubjectResult, error)
	SaveGroupRanked(ctx context.Context, group models.GroupKey, changed []*models.SubjectResult, ranks map[string]int) error
}

type resultAggregator interface {
	ComputeResult(ctx context.Context, studentID, classID, subjectID, termID, yearID string) (*models.SubjectResult, error)
}

type groupRanker interface {
	Rank(results []models.SubjectResult) []models.SubjectResult
}

type groupLocker interface {
	TryAcquire(ctx context.Context, group models.GroupKey, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, group models.GroupKey, token string) error
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RecordMarkRequest records or replaces one mark component.
type RecordMarkRequest struct {
	StudentID      string               `json:"student_id" validate:"required"`
	SubjectID      string               `json:"subject_id" validate:"required"`
	ClassID        string               `json:"class_id" validate:"required"`
	TermID         string               `json:"term_id" validate:"required"`
	AcademicYearID string               `json:"academic_year_id" validate:"required"`
	ComponentType  models.ComponentType `json:"component_type" validate:"required"`
	RawMarks       []float64            `json:"raw_marks"`
}

// MarkScope identifies one mark component for delete/details calls.
type MarkScope struct {
	StudentID      string               `json:"student_id" validate:"required"`
	SubjectID      string               `json:"subject_id" validate:"required"`
	ClassID        string               `json:"class_id" validate:"required"`
	TermID         string               `json:"term_id" validate:"required"`
	AcademicYearID string               `json:"academic_year_id" validate:"required"`
	ComponentType  models.ComponentType `json:"component_type"`
}

// MarkServiceOptions tunes lock and cache behaviour.
type MarkServiceOptions struct {
	LockTTL          time.Duration
	LockRetries      int
	LockRetryBackoff time.Duration
	ListingCacheTTL  time.Duration
}

// MarkService is the mutation pipeline: every create/update/delete of a mark
// component aggregates the affected student, reranks the whole group and
// persists both in one transaction, so callers never observe a new final
// score next to stale ranks.
type MarkService struct {
	marks      markStore
	results    resultStore
	weights    weightConfigReader
	aggregator resultAggregator
	ranker     groupRanker
	locks      groupLocker
	cache      listingCache
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	opts       MarkServiceOptions
}

// NewMarkService constructs MarkService.
func NewMarkService(marks markStore, results resultStore, weights weightConfigReader, aggregator resultAggregator, ranker groupRanker, locks groupLocker, cache listingCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, opts MarkServiceOptions) *MarkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	if opts.LockRetries <= 0 {
		opts.LockRetries = 3
	}
	if opts.LockRetryBackoff <= 0 {
		opts.LockRetryBackoff = 150 * time.Millisecond
	}
	if opts.ListingCacheTTL <= 0 {
		opts.ListingCacheTTL = 5 * time.Minute
	}
	return &MarkService{
		marks:      marks,
		results:    results,
		weights:    weights,
		aggregator: aggregator,
		ranker:     ranker,
		locks:      locks,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		opts:       opts,
	}
}

// RecordMark upserts the raw-mark list, recomputes the student's result and
// reranks the group, returning the ranked result.
func (s *MarkService) RecordMark(ctx context.Context, req RecordMarkRequest) (*dto.ComputedResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if !req.ComponentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown component type %q", req.ComponentType))
	}
	if err := validateRawMarks(req.RawMarks); err != nil {
		return nil, err
	}

	group := models.GroupKey{ClassID: req.ClassID, SubjectID: req.SubjectID, TermID: req.TermID, AcademicYearID: req.AcademicYearID}
	token, err := s.lockGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	defer s.unlockGroup(ctx, group, token)

	mark := &models.MarkComponent{
		StudentID:      req.StudentID,
		SubjectID:      req.SubjectID,
		TermID:         req.TermID,
		AcademicYearID: req.AcademicYearID,
		ComponentType:  req.ComponentType,
		RawMarks:       req.RawMarks,
	}
	if err := s.marks.Upsert(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store mark component")
	}

	ranked, err := s.recomputeStudent(ctx, req.StudentID, group)
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

// DeleteMark removes one component and recomputes the student and group.
// Deleting the last component leaves a zero-valued result so the student
// still appears in listings, ranked last by the tie rule.
func (s *MarkService) DeleteMark(ctx context.Context, scope MarkScope) error {
	if err := s.validator.Struct(scope); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark scope")
	}
	if !scope.ComponentType.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown component type %q", scope.ComponentType))
	}

	group := models.GroupKey{ClassID: scope.ClassID, SubjectID: scope.SubjectID, TermID: scope.TermID, AcademicYearID: scope.AcademicYearID}
	token, err := s.lockGroup(ctx, group)
	if err != nil {
		return err
	}
	defer s.unlockGroup(ctx, group, token)

	key := models.MarkKey{
		StudentID:      scope.StudentID,
		SubjectID:      scope.SubjectID,
		TermID:         scope.TermID,
		AcademicYearID: scope.AcademicYearID,
		ComponentType:  scope.ComponentType,
	}
	if err := s.marks.Delete(ctx, key); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "mark component not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete mark component")
	}

	if _, err := s.recomputeStudent(ctx, scope.StudentID, group); err != nil {
		return err
	}
	return nil
}

// MarkDetails returns the computed result together with the raw-mark
// breakdown that produced it, for display and edit forms.
func (s *MarkService) MarkDetails(ctx context.Context, studentID, subjectID, termID, yearID string) (*dto.MarkDetails, error) {
	result, err := s.results.Get(ctx, studentID, subjectID, termID, yearID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no result for the given scope")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	marks, err := s.marks.ListForStudent(ctx, studentID, subjectID, termID, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mark components")
	}
	raw := make(map[models.ComponentType][]float64, len(marks))
	for _, mark := range marks {
		raw[mark.ComponentType] = mark.RawMarks
	}
	details := dto.NewComputedResult(*result)
	return &dto.MarkDetails{Result: details, RawMarks: raw}, nil
}

// GroupResults returns the ranked listing for one group, cached with a TTL.
// Rows computed before the last weight change are refreshed before serving,
// so a listing taken right after a weight change is not silently stale.
func (s *MarkService) GroupResults(ctx context.Context, group models.GroupKey) ([]dto.ComputedResult, error) {
	if group.ClassID == "" || group.SubjectID == "" || group.TermID == "" || group.AcademicYearID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class, subject, term and academic year are required")
	}
	key := repository.GroupResultsKey(group)
	var cached []dto.ComputedResult
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("listing cache read failed", zap.Error(err))
		}
	}

	results, err := s.results.ListByGroup(ctx, group)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group results")
	}
	results, err = s.refreshIfStale(ctx, group, results)
	if err != nil {
		return nil, err
	}
	listing := make([]dto.ComputedResult, len(results))
	for i, r := range results {
		listing[i] = dto.NewComputedResult(r)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, listing, s.opts.ListingCacheTTL); err != nil {
			s.logger.Warn("listing cache write failed", zap.Error(err))
		}
	}
	return listing, nil
}

// RecalculateGroup re-aggregates every student in the group, reranks and
// persists the whole snapshot in one transaction. Used after weight or band
// changes.
func (s *MarkService) RecalculateGroup(ctx context.Context, group models.GroupKey) error {
	if group.ClassID == "" || group.SubjectID == "" || group.TermID == "" || group.AcademicYearID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "class, subject, term and academic year are required")
	}
	token, err := s.lockGroup(ctx, group)
	if err != nil {
		return err
	}
	defer s.unlockGroup(ctx, group, token)
	start := time.Now()
	defer func() { s.metrics.ObserveRecompute("group_recalculate", time.Since(start)) }()

	results, err := s.results.ListByGroup(ctx, group)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group results")
	}
	changed := make([]*models.SubjectResult, 0, len(results))
	merged := make([]models.SubjectResult, 0, len(results))
	for _, row := range results {
		computed, err := s.aggregator.ComputeResult(ctx, row.StudentID, group.ClassID, group.SubjectID, group.TermID, group.AcademicYearID)
		if err != nil {
			return err
		}
		computed.ID = row.ID
		changed = append(changed, computed)
		merged = append(merged, *computed)
	}
	ranked := s.ranker.Rank(merged)
	if err := s.results.SaveGroupRanked(ctx, group, changed, ranksByStudent(ranked)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist recomputed group")
	}
	s.invalidateListing(ctx, group)
	return nil
}

// recomputeStudent aggregates one mutated student, reranks the group in
// memory and persists the changed result together with every rank in a
// single transaction. Returns the student's ranked result.
func (s *MarkService) recomputeStudent(ctx context.Context, studentID string, group models.GroupKey) (*dto.ComputedResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRecompute("mutation", time.Since(start)) }()
	computed, err := s.aggregator.ComputeResult(ctx, studentID, group.ClassID, group.SubjectID, group.TermID, group.AcademicYearID)
	if err != nil {
		return nil, err
	}
	existing, err := s.results.ListByGroup(ctx, group)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group results")
	}
	ranked := s.ranker.Rank(mergeResult(existing, computed))
	if err := s.results.SaveGroupRanked(ctx, group, []*models.SubjectResult{computed}, ranksByStudent(ranked)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist recomputed group")
	}
	s.invalidateListing(ctx, group)
	for i := range ranked {
		if ranked[i].StudentID == studentID {
			out := dto.NewComputedResult(ranked[i])
			return &out, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrInternal, "recomputed result missing from group")
}

// refreshIfStale recomputes the group when any row predates the last weight
// change. A group already being recomputed by another writer serves its
// current rows rather than failing the read.
func (s *MarkService) refreshIfStale(ctx context.Context, group models.GroupKey, results []models.SubjectResult) ([]models.SubjectResult, error) {
	if s.weights == nil || len(results) == 0 {
		return results, nil
	}
	cfg, err := s.weights.Get(ctx)
	if err != nil {
		return results, nil
	}
	stale := false
	for i := range results {
		if results[i].CalculatedAt.Before(cfg.UpdatedAt) {
			stale = true
			break
		}
	}
	if !stale {
		return results, nil
	}
	if err := s.RecalculateGroup(ctx, group); err != nil {
		if appErrors.Is(err, appErrors.ErrBusy) {
			return results, nil
		}
		return nil, err
	}
	fresh, err := s.results.ListByGroup(ctx, group)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group results")
	}
	return fresh, nil
}

func (s *MarkService) lockGroup(ctx context.Context, group models.GroupKey) (string, error) {
	if s.locks == nil {
		return "", nil
	}
	attempts := s.opts.LockRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		token, ok, err := s.locks.TryAcquire(ctx, group, s.opts.LockTTL)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire group lock")
		}
		if ok {
			return token, nil
		}
		s.metrics.RecordLockContention()
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", appErrors.Wrap(ctx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lock wait cancelled")
		case <-time.After(s.opts.LockRetryBackoff):
		}
	}
	return "", appErrors.Clone(appErrors.ErrBusy, "")
}

func (s *MarkService) unlockGroup(ctx context.Context, group models.GroupKey, token string) {
	if s.locks == nil {
		return
	}
	if err := s.locks.Release(ctx, group, token); err != nil {
		s.logger.Warn("failed to release group lock", zap.Error(err))
	}
}

func (s *MarkService) invalidateListing(ctx context.Context, group models.GroupKey) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.GroupResultsKey(group)); err != nil {
		s.logger.Warn("failed to invalidate listing cache", zap.Error(err))
	}
}

// mergeResult replaces or appends the recomputed row in the group snapshot,
// carrying over the stored row's identifier.
func mergeResult(existing []models.SubjectResult, computed *models.SubjectResult) []models.SubjectResult {
	for i := range existing {
		if existing[i].StudentID == computed.StudentID {
			computed.ID = existing[i].ID
			existing[i] = *computed
			return existing
		}
	}
	return append(existing, *computed)
}

func ranksByStudent(ranked []models.SubjectResult) map[string]int {
	ranks := make(map[string]int, len(ranked))
	for i := range ranked {
		if ranked[i].Rank != nil {
			ranks[ranked[i].StudentID] = *ranked[i].Rank
		}
	}
	return ranks
}

func validateRawMarks(marks []float64) error {
	if len(marks) == 0 {
		return appErrors.Clone(appErrors.ErrInvalidMark, "raw_marks must contain at least one value")
	}
	if len(marks) > 10 {
		return appErrors.Clone(appErrors.ErrInvalidMark, fmt.Sprintf("raw_marks holds %d values, maximum is 10", len(marks)))
	}
	for i, v := range marks {
		if v < 0 || v > 100 {
			return appErrors.Clone(appErrors.ErrInvalidMark, fmt.Sprintf("raw_marks[%d] = %.2f is outside [0,100]", i, v))
		}
	}
	return nil
}
