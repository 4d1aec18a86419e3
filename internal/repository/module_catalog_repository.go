package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingodesk/placement-backend/internal/model"
)

// ModuleCatalogRepository handles course module data access.
type ModuleCatalogRepository struct {
	pool *pgxpool.Pool
}

// NewModuleCatalogRepository creates a new ModuleCatalogRepository.
func NewModuleCatalogRepository(pool *pgxpool.Pool) *ModuleCatalogRepository {
	return &ModuleCatalogRepository{pool: pool}
}

// List retrieves catalog modules. When activeOnly is set, retired modules
// are excluded.
func (r *ModuleCatalogRepository) List(ctx context.Context, activeOnly bool) ([]model.CourseModule, error) {
	query := `SELECT id, title, description, status, created_at, updated_at
	          FROM course_modules`
	if activeOnly {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY title`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []model.CourseModule
	for rows.Next() {
		var m model.CourseModule
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// GetByID retrieves a single catalog module.
func (r *ModuleCatalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CourseModule, error) {
	var m model.CourseModule
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, status, created_at, updated_at
		 FROM course_modules WHERE id = $1`, id,
	).Scan(&m.ID, &m.Title, &m.Description, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountExisting counts how many of the given ids are present and active.
// Assignment writes use this to reject references to unknown or retired
// modules in one round trip.
func (r *ModuleCatalogRepository) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM course_modules
		 WHERE id = ANY($1) AND status = 'active'`, ids).Scan(&count)
	return count, err
}

// Create inserts a new catalog module.
func (r *ModuleCatalogRepository) Create(ctx context.Context, m *model.CourseModule) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO course_modules (title, description, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		m.Title, m.Description, m.Status,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// Update replaces a catalog module's editable fields.
func (r *ModuleCatalogRepository) Update(ctx context.Context, m *model.CourseModule) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE course_modules
		 SET title = $1, description = $2, status = $3, updated_at = NOW()
		 WHERE id = $4`,
		m.Title, m.Description, m.Status, m.ID)
	return err
}

// Delete removes a catalog module. Assignment rows referencing it are
// removed by the foreign key cascade.
func (r *ModuleCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM course_modules WHERE id = $1`, id)
	return err
}
