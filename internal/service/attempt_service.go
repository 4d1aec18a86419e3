package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lingodesk/placement-backend/internal/config"
	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/placement"
	"github.com/lingodesk/placement-backend/internal/repository"
	"github.com/lingodesk/placement-backend/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Delivery errors.
var (
	ErrAttemptNotFound    = errors.New("attempt not found or expired")
	ErrAttemptSubmitted   = errors.New("attempt already submitted")
	ErrAttemptNotFinished = errors.New("attempt has not reached the end of the test")
	ErrTestNotAvailable   = errors.New("test is not published")
)

// AttemptTTL bounds how long an unsubmitted attempt survives in Redis.
const AttemptTTL = 24 * time.Hour

// attemptMeta is the persisted half of the traversal state machine. The
// answer map lives separately in a Redis hash so each selection is one
// HSet instead of a full rewrite.
type attemptMeta struct {
	TestID    string    `json:"test_id"`
	LearnerID int       `json:"learner_id"`
	Cursor    int       `json:"cursor"`
	Skipped   bool      `json:"skipped"`
	Submitted bool      `json:"submitted"`
	StartedAt time.Time `json:"started_at"`
}

// AttemptView is the learner-facing snapshot returned after every
// transition: the page under the cursor plus traversal position.
type AttemptView struct {
	SessionToken   string               `json:"session_token"`
	TestID         uuid.UUID            `json:"test_id"`
	Title          string               `json:"title"`
	PageNumber     int                  `json:"page_number"`
	TotalPages     int                  `json:"total_pages"`
	Page           placement.LinearPage `json:"page"`
	SelectedChoice *int                 `json:"selected_choice,omitempty"`
	CanSkip        bool                 `json:"can_skip"`
	Progress       float64              `json:"progress"`
	Finished       bool                 `json:"finished"`
}

// MonitorEvent is published to the test's monitor channel after every
// transition so teachers can watch attempts live.
type MonitorEvent struct {
	SessionToken string    `json:"session_token"`
	LearnerID    int       `json:"learner_id"`
	Event        string    `json:"event"`
	PageNumber   int       `json:"page_number"`
	TotalPages   int       `json:"total_pages"`
	Progress     float64   `json:"progress"`
	At           time.Time `json:"at"`
}

// AttemptService drives learner attempts. The traversal state machine is
// pure; this service round-trips it through Redis between HTTP calls and
// owns everything stateful around it: queues, monitor events, results.
type AttemptService struct {
	testRepo   *repository.TestRepository
	resultRepo *repository.ResultRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	testRepo *repository.TestRepository,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		testRepo:   testRepo,
		resultRepo: resultRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "attempt_service").Logger(),
	}
}

// AvailableTests lists the tests a learner may start: everything currently
// published.
func (s *AttemptService) AvailableTests(ctx context.Context) ([]model.Test, error) {
	tests, err := s.testRepo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if tests == nil {
		tests = []model.Test{}
	}
	return tests, nil
}

// Start mints a session token and opens an attempt at the first page of the
// published test's cached sequence.
func (s *AttemptService) Start(ctx context.Context, testID uuid.UUID, learnerID int) (*AttemptView, error) {
	payload, err := s.getPayload(ctx, testID.String())
	if err != nil {
		return nil, err
	}

	token := uuid.New().String()
	attempt, err := placement.NewAttempt(token, payload.Pages)
	if err != nil {
		return nil, err
	}

	meta := &attemptMeta{
		TestID:    testID.String(),
		LearnerID: learnerID,
		StartedAt: time.Now(),
	}
	if err := s.saveMeta(ctx, token, meta); err != nil {
		return nil, err
	}

	s.publishMonitor(ctx, meta, attempt, "started")
	return s.view(payload, attempt, meta, false), nil
}

// SelectAnswer records a choice on the current question page. The cursor
// does not move; the selection is queued for database autosave.
func (s *AttemptService) SelectAnswer(ctx context.Context, token string, choiceIndex int) (*AttemptView, error) {
	attempt, meta, payload, err := s.rebuild(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := attempt.SelectAnswer(choiceIndex); err != nil {
		return nil, err
	}

	questionIndex := attempt.Current().QuestionIndex
	if err := s.rdb.HSet(ctx, config.CacheKey.AttemptAnswersKey(token),
		strconv.Itoa(questionIndex), choiceIndex).Err(); err != nil {
		return nil, fmt.Errorf("store answer: %w", err)
	}
	if err := s.rdb.Expire(ctx, config.CacheKey.AttemptAnswersKey(token), AttemptTTL).Err(); err != nil {
		s.log.Debug().Err(err).Str("session_token", token).Msg("Answer TTL refresh failed")
	}

	raw, _ := json.Marshal(worker.AnswerPayload{
		SessionToken:  token,
		TestID:        meta.TestID,
		QuestionIndex: questionIndex,
		ChoiceIndex:   choiceIndex,
	})
	s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, raw)

	s.publishMonitor(ctx, meta, attempt, "answered")
	return s.view(payload, attempt, meta, false), nil
}

// Next advances the cursor. At the last page nothing moves; the view
// reports finished and the client is expected to submit.
func (s *AttemptService) Next(ctx context.Context, token string) (*AttemptView, error) {
	attempt, meta, payload, err := s.rebuild(ctx, token)
	if err != nil {
		return nil, err
	}

	finished, err := attempt.Next()
	if err != nil {
		return nil, err
	}

	meta.Cursor = attempt.Cursor
	if err := s.saveMeta(ctx, token, meta); err != nil {
		return nil, err
	}

	s.publishMonitor(ctx, meta, attempt, "moved")
	return s.view(payload, attempt, meta, finished), nil
}

// Previous moves the cursor back one page.
func (s *AttemptService) Previous(ctx context.Context, token string) (*AttemptView, error) {
	attempt, meta, payload, err := s.rebuild(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := attempt.Previous(); err != nil {
		return nil, err
	}

	meta.Cursor = attempt.Cursor
	if err := s.saveMeta(ctx, token, meta); err != nil {
		return nil, err
	}

	s.publishMonitor(ctx, meta, attempt, "moved")
	return s.view(payload, attempt, meta, false), nil
}

// Skip ends the attempt early from the opening content page and submits it
// immediately with a beginner placement.
func (s *AttemptService) Skip(ctx context.Context, token string) (*model.PlacementResult, error) {
	attempt, meta, _, err := s.rebuild(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := attempt.Skip(); err != nil {
		return nil, err
	}

	meta.Skipped = true
	if err := s.saveMeta(ctx, token, meta); err != nil {
		return nil, err
	}

	return s.finalize(ctx, token, attempt, meta)
}

// Submit grades the attempt and stores the result. Safe to call more than
// once: the first stored result for a session token always wins.
func (s *AttemptService) Submit(ctx context.Context, token string) (*model.PlacementResult, error) {
	attempt, meta, _, err := s.rebuild(ctx, token)
	if err != nil {
		return nil, err
	}

	if !attempt.Skipped {
		finished, err := attempt.Next()
		if err != nil {
			return nil, err
		}
		if !finished {
			return nil, ErrAttemptNotFinished
		}
	}

	return s.finalize(ctx, token, attempt, meta)
}

// Result retrieves a stored placement result for an attempt.
func (s *AttemptService) Result(ctx context.Context, testID uuid.UUID, token string) (*model.PlacementResult, error) {
	return s.resultRepo.GetBySession(ctx, testID, token)
}

// ListResults retrieves stored placement results for a test, newest first.
func (s *AttemptService) ListResults(ctx context.Context, testID uuid.UUID, limit, offset int) ([]model.PlacementResult, int, error) {
	results, total, err := s.resultRepo.ListByTest(ctx, testID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if results == nil {
		results = []model.PlacementResult{}
	}
	return results, total, nil
}

// finalize grades, persists, and closes an attempt.
func (s *AttemptService) finalize(ctx context.Context, token string, attempt *placement.Attempt, meta *attemptMeta) (*model.PlacementResult, error) {
	testID, err := uuid.Parse(meta.TestID)
	if err != nil {
		return nil, err
	}

	scoringTest, err := s.scoringTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	result := placement.BuildResult(scoringTest, attempt)
	result.LearnerID = meta.LearnerID

	stored, err := s.resultRepo.Insert(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	meta.Submitted = true
	if err := s.saveMeta(ctx, token, meta); err != nil {
		return nil, err
	}

	raw, _ := json.Marshal(worker.PlacementPayload{
		TestID:       meta.TestID,
		SessionToken: token,
		Level:        string(stored.Level),
		Skipped:      stored.Skipped,
	})
	s.rdb.RPush(ctx, config.WorkerKey.PersistPlacementsQueue, raw)

	s.publishMonitor(ctx, meta, attempt, "submitted")

	s.log.Info().
		Str("test_id", meta.TestID).
		Str("session_token", token).
		Str("level", string(stored.Level)).
		Bool("skipped", stored.Skipped).
		Msg("Attempt submitted")
	return stored, nil
}

// scoringTest assembles the minimal test the scoring engine needs: question
// scoring metadata in index order from the cached answer key, plus module
// assignments from Postgres.
func (s *AttemptService) scoringTest(ctx context.Context, testID uuid.UUID) (*model.Test, error) {
	assignments, err := s.testRepo.GetAssignments(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("get assignments: %w", err)
	}

	entries, err := s.rdb.HGetAll(ctx, config.CacheKey.TestAnswerKeyKey(testID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("get answer key: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrTestNotAvailable
	}

	questions := make([]model.Question, len(entries))
	for field, raw := range entries {
		idx, err := strconv.Atoi(field)
		if err != nil || idx < 0 || idx >= len(questions) {
			return nil, fmt.Errorf("corrupt answer key field %q", field)
		}
		var key questionKey
		if err := json.Unmarshal([]byte(raw), &key); err != nil {
			return nil, fmt.Errorf("decode answer key: %w", err)
		}

		q := model.Question{Difficulty: key.Difficulty}
		if key.Correct >= 0 {
			q.Choices = make([]model.Choice, key.Correct+1)
			q.Choices[key.Correct].IsCorrect = true
		}
		questions[idx] = q
	}

	return &model.Test{
		ID:                testID,
		Questions:         questions,
		ModuleAssignments: assignments,
	}, nil
}

// rebuild restores the traversal state machine from Redis.
func (s *AttemptService) rebuild(ctx context.Context, token string) (*placement.Attempt, *attemptMeta, *placement.DeliveryPayload, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.AttemptMetaKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil, nil, ErrAttemptNotFound
		}
		return nil, nil, nil, fmt.Errorf("get attempt meta: %w", err)
	}

	var meta attemptMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, nil, fmt.Errorf("decode attempt meta: %w", err)
	}
	if meta.Submitted {
		return nil, nil, nil, ErrAttemptSubmitted
	}

	payload, err := s.getPayload(ctx, meta.TestID)
	if err != nil {
		return nil, nil, nil, err
	}

	stored, err := s.rdb.HGetAll(ctx, config.CacheKey.AttemptAnswersKey(token)).Result()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get attempt answers: %w", err)
	}
	answers := make(map[int]int, len(stored))
	for field, value := range stored {
		qIdx, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		cIdx, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		answers[qIdx] = cIdx
	}

	attempt := &placement.Attempt{
		SessionToken: token,
		Pages:        payload.Pages,
		Cursor:       meta.Cursor,
		Answers:      answers,
		Skipped:      meta.Skipped,
	}
	if attempt.Cursor < 0 || attempt.Cursor >= len(attempt.Pages) {
		return nil, nil, nil, ErrAttemptNotFound
	}
	return attempt, &meta, payload, nil
}

func (s *AttemptService) getPayload(ctx context.Context, testID string) (*placement.DeliveryPayload, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.TestPayloadKey(testID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTestNotAvailable
		}
		return nil, fmt.Errorf("get payload: %w", err)
	}

	var payload placement.DeliveryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &payload, nil
}

func (s *AttemptService) saveMeta(ctx context.Context, token string, meta *attemptMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode attempt meta: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.AttemptMetaKey(token), raw, AttemptTTL).Err(); err != nil {
		return fmt.Errorf("store attempt meta: %w", err)
	}
	return nil
}

func (s *AttemptService) view(payload *placement.DeliveryPayload, attempt *placement.Attempt, meta *attemptMeta, finished bool) *AttemptView {
	testID, _ := uuid.Parse(meta.TestID)

	v := &AttemptView{
		SessionToken: attempt.SessionToken,
		TestID:       testID,
		Title:        payload.Title,
		PageNumber:   attempt.Cursor + 1,
		TotalPages:   len(attempt.Pages),
		Page:         *attempt.Current(),
		CanSkip:      attempt.Cursor == 0 && !attempt.Current().IsQuestion(),
		Progress:     attempt.Progress(),
		Finished:     finished,
	}
	if choice, ok := attempt.SelectedAnswer(); ok {
		selected := choice
		v.SelectedChoice = &selected
	}
	return v
}

func (s *AttemptService) publishMonitor(ctx context.Context, meta *attemptMeta, attempt *placement.Attempt, event string) {
	raw, err := json.Marshal(MonitorEvent{
		SessionToken: attempt.SessionToken,
		LearnerID:    meta.LearnerID,
		Event:        event,
		PageNumber:   attempt.Cursor + 1,
		TotalPages:   len(attempt.Pages),
		Progress:     attempt.Progress(),
		At:           time.Now(),
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.TestMonitorChannel(meta.TestID), raw).Err(); err != nil {
		s.log.Debug().Err(err).Msg("Monitor publish failed")
	}
}
