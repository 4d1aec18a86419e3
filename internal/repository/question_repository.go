package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingodesk/placement-backend/internal/model"
)

// QuestionRepository handles question data access. Choices are stored as a
// jsonb column and decoded into typed structs at this boundary; nothing
// above the repository sees raw JSON.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByTest retrieves all questions for a test in stored position order.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, position, difficulty, points, question_text, choices
		 FROM questions WHERE test_id = $1
		 ORDER BY position`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var (
			q       model.Question
			rawJSON []byte
		)
		if err := rows.Scan(&q.ID, &q.TestID, &q.Position, &q.Difficulty, &q.Points, &q.QuestionText, &rawJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawJSON, &q.Choices); err != nil {
			return nil, fmt.Errorf("decode choices for question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	var (
		q       model.Question
		rawJSON []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, position, difficulty, points, question_text, choices
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.TestID, &q.Position, &q.Difficulty, &q.Points, &q.QuestionText, &rawJSON)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawJSON, &q.Choices); err != nil {
		return nil, fmt.Errorf("decode choices for question %s: %w", q.ID, err)
	}
	return &q, nil
}

// Create inserts a new question at the end of the test's question list.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	choices, err := json.Marshal(q.Choices)
	if err != nil {
		return fmt.Errorf("encode choices: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (test_id, position, difficulty, points, question_text, choices)
		 VALUES ($1,
		         (SELECT COALESCE(MAX(position), -1) + 1 FROM questions WHERE test_id = $1),
		         $2, $3, $4, $5)
		 RETURNING id, position`,
		q.TestID, q.Difficulty, q.Points, q.QuestionText, choices,
	).Scan(&q.ID, &q.Position)
}

// Update replaces a question's editable fields.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	choices, err := json.Marshal(q.Choices)
	if err != nil {
		return fmt.Errorf("encode choices: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE questions
		 SET difficulty = $1, points = $2, question_text = $3, choices = $4
		 WHERE id = $5`,
		q.Difficulty, q.Points, q.QuestionText, choices, q.ID)
	return err
}

// Delete removes a question from its test's question collection.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// CountByTest counts the questions on a test.
func (r *QuestionRepository) CountByTest(ctx context.Context, testID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE test_id = $1`, testID).Scan(&count)
	return count, err
}
