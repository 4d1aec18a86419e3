package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingodesk/placement-backend/internal/model"
)

// TestRepository handles placement test and module assignment data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// Create inserts a new test.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (title, author_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.AuthorID, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a test's base row.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, author_id, status, created_at, updated_at
		 FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.AuthorID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByAuthorPaginated lists tests, optionally filtered by author
// (authorID = 0 lists everything).
func (r *TestRepository) ListByAuthorPaginated(ctx context.Context, authorID, limit, offset int) ([]model.Test, int, error) {
	where := ``
	args := []any{}
	if authorID != 0 {
		where = ` WHERE author_id = $1`
		args = append(args, authorID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tests`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, title, author_id, status, created_at, updated_at FROM tests` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.Title, &t.AuthorID, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		tests = append(tests, t)
	}
	return tests, total, rows.Err()
}

// ListPublished retrieves every published test, used for cache prewarming
// at startup.
func (r *TestRepository) ListPublished(ctx context.Context) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, author_id, status, created_at, updated_at
		 FROM tests WHERE status = $1
		 ORDER BY created_at`, model.TestStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.Title, &t.AuthorID, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// UpdateTitle updates a test's basic info.
func (r *TestRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tests SET title = $1, updated_at = NOW() WHERE id = $2`, title, id)
	return err
}

// UpdateStatus moves a test to a new lifecycle status.
func (r *TestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TestStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tests SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

// Delete removes a test. Questions, pages and assignments cascade.
func (r *TestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	return err
}

// GetAssignments loads the per-level ordered module references for a test.
func (r *TestRepository) GetAssignments(ctx context.Context, testID uuid.UUID) (map[model.PlacementLevel][]model.ModuleRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ma.level, cm.id, cm.title
		 FROM module_assignments ma
		 JOIN course_modules cm ON cm.id = ma.module_id
		 WHERE ma.test_id = $1
		 ORDER BY ma.level, ma.position`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make(map[model.PlacementLevel][]model.ModuleRef)
	for rows.Next() {
		var (
			level string
			ref   model.ModuleRef
		)
		if err := rows.Scan(&level, &ref.ID, &ref.Title); err != nil {
			return nil, err
		}
		parsed, err := model.ParsePlacementLevel(level)
		if err != nil {
			return nil, err
		}
		assignments[parsed] = append(assignments[parsed], ref)
	}
	return assignments, rows.Err()
}

// ReplaceAssignments swaps the ordered module list for one level inside a
// transaction.
func (r *TestRepository) ReplaceAssignments(ctx context.Context, testID uuid.UUID, level model.PlacementLevel, moduleIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM module_assignments WHERE test_id = $1 AND level = $2`,
		testID, level); err != nil {
		return err
	}

	for i, moduleID := range moduleIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO module_assignments (test_id, level, module_id, position)
			 VALUES ($1, $2, $3, $4)`,
			testID, level, moduleID, i); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Touch bumps updated_at, used when child rows change.
func (r *TestRepository) Touch(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tests SET updated_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}
