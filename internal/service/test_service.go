package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lingodesk/placement-backend/internal/config"
	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/placement"
	"github.com/lingodesk/placement-backend/internal/repository"
	"github.com/lingodesk/placement-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrNotTestAuthor     = errors.New("not the author of this test")
	ErrNoQuestions       = errors.New("test has no questions, cannot publish")
	ErrTestNotDraft      = errors.New("test status is not draft")
	ErrTestNotPublished  = errors.New("test status is not published")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrQuestionInvalid   = errors.New("question is invalid")
	ErrUnknownQuestion   = errors.New("question does not belong to this test")
	ErrPageAtBoundary    = errors.New("page is already at that end of the sequence")
	ErrUnknownModule     = errors.New("module reference is unknown or retired")
)

// allowedTransitions is the test lifecycle graph. Deletion is not a status:
// it is only reachable from archived and handled by Delete directly.
var allowedTransitions = map[model.TestStatus][]model.TestStatus{
	model.TestStatusDraft:     {model.TestStatusPublished, model.TestStatusArchived},
	model.TestStatusPublished: {model.TestStatusDraft},
	model.TestStatusArchived:  {model.TestStatusDraft},
}

func canTransition(from, to model.TestStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// questionKey is the per-question scoring metadata cached alongside the
// delivery payload so submissions can grade without a questions table scan.
type questionKey struct {
	Difficulty model.Difficulty `json:"difficulty"`
	Correct    int              `json:"correct"`
}

// TestService handles test authoring business logic and Redis caching.
type TestService struct {
	testRepo     *repository.TestRepository
	questionRepo *repository.QuestionRepository
	pageRepo     *repository.PageRepository
	moduleRepo   *repository.ModuleCatalogRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(
	testRepo *repository.TestRepository,
	questionRepo *repository.QuestionRepository,
	pageRepo *repository.PageRepository,
	moduleRepo *repository.ModuleCatalogRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *TestService {
	return &TestService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		pageRepo:     pageRepo,
		moduleRepo:   moduleRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "test_service").Logger(),
	}
}

// Create inserts a new test as draft.
func (s *TestService) Create(ctx context.Context, authorID int, title string) (*model.Test, error) {
	t := &model.Test{
		Title:    title,
		AuthorID: authorID,
		Status:   model.TestStatusDraft,
	}
	if err := s.testRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetFull retrieves a test with its questions, pages and assignments.
func (s *TestService) GetFull(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Questions, err = s.questionRepo.ListByTest(ctx, id); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if t.Pages, err = s.pageRepo.ListByTest(ctx, id); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if t.ModuleAssignments, err = s.testRepo.GetAssignments(ctx, id); err != nil {
		return nil, fmt.Errorf("get assignments: %w", err)
	}
	return t, nil
}

// List retrieves tests, filtered by author unless authorID is 0.
func (s *TestService) List(ctx context.Context, authorID, page, perPage int) ([]model.Test, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	tests, total, err := s.testRepo.ListByAuthorPaginated(ctx, authorID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if tests == nil {
		tests = []model.Test{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return tests, pagination, nil
}

// UpdateTitle edits a draft test's basic info.
func (s *TestService) UpdateTitle(ctx context.Context, id uuid.UUID, authorID int, title string) error {
	if _, err := s.requireEditable(ctx, id, authorID); err != nil {
		return err
	}
	return s.testRepo.UpdateTitle(ctx, id, title)
}

// Publish moves a draft test to published and caches its delivery payload
// and answer key in Redis. Every question must pass authoring validation;
// a test that was importable as draft may still be unpublishable.
func (s *TestService) Publish(ctx context.Context, id uuid.UUID, authorID int) error {
	t, err := s.requireAuthor(ctx, id, authorID)
	if err != nil {
		return err
	}
	if !canTransition(t.Status, model.TestStatusPublished) {
		return ErrInvalidTransition
	}

	questions, err := s.questionRepo.ListByTest(ctx, id)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	for i := range questions {
		if err := validateChoices(questions[i].Choices); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	t.Questions = questions
	if err := s.warmCache(ctx, t); err != nil {
		return err
	}

	if err := s.testRepo.UpdateStatus(ctx, id, model.TestStatusPublished); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Str("test_id", id.String()).Msg("Test published")
	return nil
}

// Unpublish moves a published test back to draft and drops its cached
// payload. Attempts already started keep their in-flight Redis state.
func (s *TestService) Unpublish(ctx context.Context, id uuid.UUID, authorID int) error {
	t, err := s.requireAuthor(ctx, id, authorID)
	if err != nil {
		return err
	}
	if t.Status != model.TestStatusPublished {
		return ErrTestNotPublished
	}

	if err := s.testRepo.UpdateStatus(ctx, id, model.TestStatusDraft); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.TestPayloadKey(id.String()))
	pipe.Del(ctx, config.CacheKey.TestAnswerKeyKey(id.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("test_id", id.String()).Msg("Failed to drop cache keys")
	}

	s.log.Info().Str("test_id", id.String()).Msg("Test unpublished")
	return nil
}

// Archive moves a draft test to archived. A published test must be
// unpublished first.
func (s *TestService) Archive(ctx context.Context, id uuid.UUID, authorID int) error {
	t, err := s.requireAuthor(ctx, id, authorID)
	if err != nil {
		return err
	}
	if !canTransition(t.Status, model.TestStatusArchived) {
		return ErrInvalidTransition
	}
	return s.testRepo.UpdateStatus(ctx, id, model.TestStatusArchived)
}

// Restore moves an archived test back to draft.
func (s *TestService) Restore(ctx context.Context, id uuid.UUID, authorID int) error {
	t, err := s.requireAuthor(ctx, id, authorID)
	if err != nil {
		return err
	}
	if t.Status != model.TestStatusArchived || !canTransition(t.Status, model.TestStatusDraft) {
		return ErrInvalidTransition
	}
	return s.testRepo.UpdateStatus(ctx, id, model.TestStatusDraft)
}

// Delete permanently removes an archived test. Placement results survive
// deletion; only the authoring graph goes.
func (s *TestService) Delete(ctx context.Context, id uuid.UUID, authorID int) error {
	t, err := s.requireAuthor(ctx, id, authorID)
	if err != nil {
		return err
	}
	if t.Status != model.TestStatusArchived {
		return ErrInvalidTransition
	}
	return s.testRepo.Delete(ctx, id)
}

// RefreshCache re-caches the payload and answer key for a published test.
func (s *TestService) RefreshCache(ctx context.Context, id uuid.UUID, authorID int) error {
	t, err := s.requireAuthor(ctx, id, authorID)
	if err != nil {
		return err
	}
	if t.Status != model.TestStatusPublished {
		return ErrTestNotPublished
	}

	if t.Questions, err = s.questionRepo.ListByTest(ctx, id); err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	if len(t.Questions) == 0 {
		return ErrNoQuestions
	}

	if err := s.warmCache(ctx, t); err != nil {
		return err
	}

	s.log.Info().Str("test_id", id.String()).Msg("Cache refreshed")
	return nil
}

// warmCache builds the delivery sequence and answer key and caches both.
// t.Questions must already be loaded; pages are fetched here.
func (s *TestService) warmCache(ctx context.Context, t *model.Test) error {
	pages, err := s.pageRepo.ListByTest(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}
	t.Pages = pages

	sequence := placement.BuildSequence(t)
	if len(sequence) == 0 {
		return ErrNoQuestions
	}

	payload := placement.DeliveryPayload{
		TestID: t.ID,
		Title:  t.Title,
		Pages:  sequence,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Answer key for RAM grading: question index → scoring metadata.
	answerKey := make(map[string]interface{}, len(t.Questions))
	for i := range t.Questions {
		entry, err := json.Marshal(questionKey{
			Difficulty: t.Questions[i].Difficulty,
			Correct:    t.Questions[i].CorrectChoice(),
		})
		if err != nil {
			return fmt.Errorf("marshal answer key: %w", err)
		}
		answerKey[strconv.Itoa(i)] = string(entry)
	}

	// Cache both atomically via pipeline.
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.TestPayloadKey(t.ID.String()), payloadJSON, 0)
	pipe.Del(ctx, config.CacheKey.TestAnswerKeyKey(t.ID.String()))
	pipe.HSet(ctx, config.CacheKey.TestAnswerKeyKey(t.ID.String()), answerKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("test_id", t.ID.String()).
		Int("pages", len(sequence)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all published tests into Redis on application
// startup so the first learner never waits on a cold cache.
func (s *TestService) PrewarmAllCaches(ctx context.Context) error {
	tests, err := s.testRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published tests: %w", err)
	}

	if len(tests) == 0 {
		s.log.Info().Msg("No published tests to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(tests)).Msg("Prewarming published tests...")

	warmed := 0
	for i := range tests {
		t := &tests[i]
		if t.Questions, err = s.questionRepo.ListByTest(ctx, t.ID); err != nil {
			s.log.Warn().Err(err).Str("test_id", t.ID.String()).Msg("Failed to load questions, skipping")
			continue
		}
		if err := s.warmCache(ctx, t); err != nil {
			s.log.Warn().Err(err).Str("test_id", t.ID.String()).Msg("Failed to warm test, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(tests)).
		Msg("Prewarming complete")
	return nil
}

// ------------------------------------------------------------------
// Questions
// ------------------------------------------------------------------

// AddQuestion appends a question to a draft test.
func (s *TestService) AddQuestion(ctx context.Context, testID uuid.UUID, authorID int, req *model.AddQuestionRequest) (*model.Question, error) {
	if _, err := s.requireEditable(ctx, testID, authorID); err != nil {
		return nil, err
	}

	q := &model.Question{
		TestID:       testID,
		Difficulty:   model.Difficulty(req.Difficulty),
		Points:       req.Points,
		QuestionText: strings.TrimSpace(req.QuestionText),
		Choices:      toChoices(req.Choices),
	}
	if q.Points == 0 {
		q.Points = model.DefaultPoints
	}
	if err := validateChoices(q.Choices); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, s.testRepo.Touch(ctx, testID)
}

// UpdateQuestion replaces a question's editable fields on a draft test.
func (s *TestService) UpdateQuestion(ctx context.Context, testID, questionID uuid.UUID, authorID int, req *model.UpdateQuestionRequest) (*model.Question, error) {
	if _, err := s.requireEditable(ctx, testID, authorID); err != nil {
		return nil, err
	}

	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.TestID != testID {
		return nil, ErrUnknownQuestion
	}

	q.Difficulty = model.Difficulty(req.Difficulty)
	q.QuestionText = strings.TrimSpace(req.QuestionText)
	q.Choices = toChoices(req.Choices)
	if req.Points > 0 {
		q.Points = req.Points
	}
	if err := validateChoices(q.Choices); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, s.testRepo.Touch(ctx, testID)
}

// DeleteQuestion removes a question and strips it from every question page
// that references it.
func (s *TestService) DeleteQuestion(ctx context.Context, testID, questionID uuid.UUID, authorID int) error {
	if _, err := s.requireEditable(ctx, testID, authorID); err != nil {
		return err
	}

	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return err
	}
	if q.TestID != testID {
		return ErrUnknownQuestion
	}

	if err := s.pageRepo.RemoveQuestionRef(ctx, testID, questionID); err != nil {
		return fmt.Errorf("remove page refs: %w", err)
	}
	if err := s.questionRepo.Delete(ctx, questionID); err != nil {
		return err
	}
	return s.testRepo.Touch(ctx, testID)
}

// ------------------------------------------------------------------
// Pages
// ------------------------------------------------------------------

// AddContentPage adds a content page to a draft test.
func (s *TestService) AddContentPage(ctx context.Context, testID uuid.UUID, authorID int, req *model.AddContentPageRequest) (*model.Page, error) {
	if _, err := s.requireEditable(ctx, testID, authorID); err != nil {
		return nil, err
	}

	p := &model.Page{
		TestID:  testID,
		Kind:    model.PageKindContent,
		Order:   req.Order,
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	}
	if err := s.pageRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, s.testRepo.Touch(ctx, testID)
}

// AddQuestionPage adds a question page to a draft test. Every referenced
// question must belong to the test.
func (s *TestService) AddQuestionPage(ctx context.Context, testID uuid.UUID, authorID int, req *model.AddQuestionPageRequest) (*model.Page, error) {
	if _, err := s.requireEditable(ctx, testID, authorID); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	known := make(map[uuid.UUID]bool, len(questions))
	for i := range questions {
		known[questions[i].ID] = true
	}
	for _, qid := range req.QuestionIDs {
		if !known[qid] {
			return nil, ErrUnknownQuestion
		}
	}

	p := &model.Page{
		TestID:      testID,
		Kind:        model.PageKindQuestion,
		Order:       req.Order,
		QuestionIDs: req.QuestionIDs,
	}
	if err := s.pageRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, s.testRepo.Touch(ctx, testID)
}

// DeletePage removes a page from a draft test.
func (s *TestService) DeletePage(ctx context.Context, testID, pageID uuid.UUID, authorID int) error {
	if _, err := s.requireEditable(ctx, testID, authorID); err != nil {
		return err
	}

	p, err := s.pageRepo.GetByID(ctx, pageID)
	if err != nil {
		return err
	}
	if p.TestID != testID {
		return ErrUnknownQuestion
	}

	if err := s.pageRepo.Delete(ctx, pageID); err != nil {
		return err
	}
	return s.testRepo.Touch(ctx, testID)
}

// MovePage shifts a page one slot up or down in the delivery order. The
// whole test is renumbered to contiguous ranks so duplicate orders from
// explicit inserts cannot make a move a no-op.
func (s *TestService) MovePage(ctx context.Context, testID, pageID uuid.UUID, authorID int, direction string) error {
	if _, err := s.requireEditable(ctx, testID, authorID); err != nil {
		return err
	}

	pages, err := s.pageRepo.ListByTest(ctx, testID)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Order < pages[j].Order
	})

	idx := -1
	for i := range pages {
		if pages[i].ID == pageID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrUnknownQuestion
	}

	target := idx - 1
	if direction == "down" {
		target = idx + 1
	}
	if target < 0 || target >= len(pages) {
		return ErrPageAtBoundary
	}

	pages[idx], pages[target] = pages[target], pages[idx]

	ordered := make([]uuid.UUID, len(pages))
	for i := range pages {
		ordered[i] = pages[i].ID
	}
	if err := s.pageRepo.UpdateOrders(ctx, ordered); err != nil {
		return fmt.Errorf("update orders: %w", err)
	}
	return s.testRepo.Touch(ctx, testID)
}

// ------------------------------------------------------------------
// Module assignments
// ------------------------------------------------------------------

// ReplaceAssignments swaps the ordered module list for one placement level.
// Allowed while draft or published; results computed later pick up the new
// list because assignments are read at submit time.
func (s *TestService) ReplaceAssignments(ctx context.Context, testID uuid.UUID, authorID int, level model.PlacementLevel, moduleIDs []uuid.UUID) error {
	t, err := s.requireAuthor(ctx, testID, authorID)
	if err != nil {
		return err
	}
	if t.Status == model.TestStatusArchived {
		return ErrInvalidTransition
	}

	if len(moduleIDs) > 0 {
		count, err := s.moduleRepo.CountExisting(ctx, moduleIDs)
		if err != nil {
			return fmt.Errorf("check modules: %w", err)
		}
		if count != len(moduleIDs) {
			return ErrUnknownModule
		}
	}

	if err := s.testRepo.ReplaceAssignments(ctx, testID, level, moduleIDs); err != nil {
		return err
	}
	return s.testRepo.Touch(ctx, testID)
}

// ------------------------------------------------------------------
// Guards and validation
// ------------------------------------------------------------------

func (s *TestService) requireAuthor(ctx context.Context, id uuid.UUID, authorID int) (*model.Test, error) {
	t, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if authorID != 0 && t.AuthorID != authorID {
		return nil, ErrNotTestAuthor
	}
	return t, nil
}

func (s *TestService) requireEditable(ctx context.Context, id uuid.UUID, authorID int) (*model.Test, error) {
	t, err := s.requireAuthor(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TestStatusDraft {
		return nil, ErrTestNotDraft
	}
	return t, nil
}

func toChoices(payload []model.ChoicePayload) []model.Choice {
	choices := make([]model.Choice, len(payload))
	for i, c := range payload {
		choices[i] = model.Choice{Text: strings.TrimSpace(c.Text), IsCorrect: c.IsCorrect}
	}
	return choices
}

// validateChoices enforces the authoring invariants: 2–6 choices, exactly
// one marked correct, no empty or duplicate texts (case-insensitive after
// trimming).
func validateChoices(choices []model.Choice) error {
	if len(choices) < model.MinChoices || len(choices) > model.MaxChoices {
		return fmt.Errorf("%w: needs between %d and %d choices", ErrQuestionInvalid, model.MinChoices, model.MaxChoices)
	}

	correct := 0
	seen := make(map[string]bool, len(choices))
	for i, c := range choices {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			return fmt.Errorf("%w: choice %s has no text", ErrQuestionInvalid, model.ChoiceLabel(i))
		}
		if len(text) > model.MaxChoiceTextLen {
			return fmt.Errorf("%w: choice %s text too long", ErrQuestionInvalid, model.ChoiceLabel(i))
		}
		key := strings.ToLower(text)
		if seen[key] {
			return fmt.Errorf("%w: duplicate choice text %q", ErrQuestionInvalid, text)
		}
		seen[key] = true
		if c.IsCorrect {
			correct++
		}
	}

	if correct != 1 {
		return fmt.Errorf("%w: exactly one choice must be marked correct, found %d", ErrQuestionInvalid, correct)
	}
	return nil
}
