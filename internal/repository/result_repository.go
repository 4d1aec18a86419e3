package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingodesk/placement-backend/internal/model"
)

// ResultRepository handles placement result data access. Results are
// write-once: the unique (test_id, session_token) pair plus ON CONFLICT DO
// NOTHING makes Insert safe to retry without ever overwriting a row.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert stores a placement result. If a result already exists for the same
// (test, session token) pair the stored row wins and is returned unchanged;
// the caller's computed result is discarded.
func (r *ResultRepository) Insert(ctx context.Context, res *model.PlacementResult) (*model.PlacementResult, error) {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	scores, err := json.Marshal(res.DifficultyScores)
	if err != nil {
		return nil, fmt.Errorf("encode difficulty scores: %w", err)
	}
	percentages, err := json.Marshal(res.Percentages)
	if err != nil {
		return nil, fmt.Errorf("encode percentages: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO placement_results
		 (test_id, session_token, learner_id, answers, difficulty_scores,
		  percentage_scores, level, recommended_modules, feedback, skipped)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (test_id, session_token) DO NOTHING
		 RETURNING id, created_at`,
		res.TestID, res.SessionToken, res.LearnerID, answers, scores,
		percentages, res.Level, res.RecommendedModules, res.Feedback, res.Skipped,
	).Scan(&res.ID, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.GetBySession(ctx, res.TestID, res.SessionToken)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetBySession retrieves the result for one attempt.
func (r *ResultRepository) GetBySession(ctx context.Context, testID uuid.UUID, sessionToken string) (*model.PlacementResult, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, test_id, session_token, learner_id, answers, difficulty_scores,
		        percentage_scores, level, recommended_modules, feedback, skipped, created_at
		 FROM placement_results
		 WHERE test_id = $1 AND session_token = $2`,
		testID, sessionToken)
	return scanResult(row)
}

// ListByTest retrieves all results for a test, newest first.
func (r *ResultRepository) ListByTest(ctx context.Context, testID uuid.UUID, limit, offset int) ([]model.PlacementResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM placement_results WHERE test_id = $1`, testID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, session_token, learner_id, answers, difficulty_scores,
		        percentage_scores, level, recommended_modules, feedback, skipped, created_at
		 FROM placement_results
		 WHERE test_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		testID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.PlacementResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *res)
	}
	return results, total, rows.Err()
}

// ListByLearner retrieves a learner's results across all tests, newest first.
func (r *ResultRepository) ListByLearner(ctx context.Context, learnerID int) ([]model.PlacementResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, session_token, learner_id, answers, difficulty_scores,
		        percentage_scores, level, recommended_modules, feedback, skipped, created_at
		 FROM placement_results
		 WHERE learner_id = $1
		 ORDER BY created_at DESC`,
		learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.PlacementResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

func scanResult(row pgx.Row) (*model.PlacementResult, error) {
	var (
		res         model.PlacementResult
		answers     []byte
		scores      []byte
		percentages []byte
	)
	err := row.Scan(&res.ID, &res.TestID, &res.SessionToken, &res.LearnerID,
		&answers, &scores, &percentages, &res.Level, &res.RecommendedModules,
		&res.Feedback, &res.Skipped, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &res.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(scores, &res.DifficultyScores); err != nil {
		return nil, fmt.Errorf("decode difficulty scores: %w", err)
	}
	if err := json.Unmarshal(percentages, &res.Percentages); err != nil {
		return nil, fmt.Errorf("decode percentages: %w", err)
	}
	return &res, nil
}
