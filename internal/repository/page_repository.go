package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingodesk/placement-backend/internal/model"
)

// PageRepository handles page data access. order_num is the authoring sort
// key and seq is the insertion counter used to break ties between pages
// that share the same order.
type PageRepository struct {
	pool *pgxpool.Pool
}

// NewPageRepository creates a new PageRepository.
func NewPageRepository(pool *pgxpool.Pool) *PageRepository {
	return &PageRepository{pool: pool}
}

// ListByTest retrieves all pages for a test in insertion order.
func (r *PageRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Page, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, kind, order_num, seq, title, content, image, question_ids
		 FROM pages WHERE test_id = $1
		 ORDER BY seq`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.TestID, &p.Kind, &p.Order, &p.Seq, &p.Title, &p.Content, &p.Image, &p.QuestionIDs); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// Create inserts a new page. A zero order means "after every existing
// page"; any other value is stored as given, duplicates included.
func (r *PageRepository) Create(ctx context.Context, p *model.Page) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO pages (test_id, kind, order_num, title, content, image, question_ids)
		 VALUES ($1, $2,
		         CASE WHEN $3 > 0 THEN $3
		              ELSE (SELECT COALESCE(MAX(order_num), 0) + 1 FROM pages WHERE test_id = $1)
		         END,
		         $4, $5, $6, $7)
		 RETURNING id, order_num, seq`,
		p.TestID, p.Kind, p.Order, p.Title, p.Content, p.Image, p.QuestionIDs,
	).Scan(&p.ID, &p.Order, &p.Seq)
}

// GetByID retrieves a single page.
func (r *PageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Page, error) {
	var p model.Page
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, kind, order_num, seq, title, content, image, question_ids
		 FROM pages WHERE id = $1`, id,
	).Scan(&p.ID, &p.TestID, &p.Kind, &p.Order, &p.Seq, &p.Title, &p.Content, &p.Image, &p.QuestionIDs)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateOrders rewrites order values so the given ids rank 1..n in slice
// order. One UNNEST update covers the whole test.
func (r *PageRepository) UpdateOrders(ctx context.Context, ordered []uuid.UUID) error {
	ranks := make([]int, len(ordered))
	for i := range ordered {
		ranks[i] = i + 1
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE pages AS p
		 SET order_num = t.rank
		 FROM (
		 	SELECT u.id, u.rank
		 	FROM UNNEST($1::uuid[], $2::int[]) AS u (id, rank)
		 ) AS t
		 WHERE p.id = t.id`,
		ordered, ranks)
	return err
}

// RemoveQuestionRef strips a deleted question's id from every question page
// on the test that still references it.
func (r *PageRepository) RemoveQuestionRef(ctx context.Context, testID, questionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE pages SET question_ids = array_remove(question_ids, $1)
		 WHERE test_id = $2 AND kind = 'question'`,
		questionID, testID)
	return err
}

// Delete removes a page.
func (r *PageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	return err
}
