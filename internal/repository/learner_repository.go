package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingodesk/placement-backend/internal/model"
)

// LearnerRepository handles learner account data access.
type LearnerRepository struct {
	pool *pgxpool.Pool
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(pool *pgxpool.Pool) *LearnerRepository {
	return &LearnerRepository{pool: pool}
}

// GetByEmail retrieves a learner by email for login.
func (r *LearnerRepository) GetByEmail(ctx context.Context, email string) (*model.Learner, error) {
	var l model.Learner
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, native_language, password_hash, created_at, updated_at
		 FROM learners WHERE email = $1`, email,
	).Scan(&l.ID, &l.Email, &l.Name, &l.NativeLanguage, &l.PasswordHash, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID retrieves a learner by id.
func (r *LearnerRepository) GetByID(ctx context.Context, id int) (*model.Learner, error) {
	var l model.Learner
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, native_language, password_hash, created_at, updated_at
		 FROM learners WHERE id = $1`, id,
	).Scan(&l.ID, &l.Email, &l.Name, &l.NativeLanguage, &l.PasswordHash, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListPaginated retrieves learners ordered by name.
func (r *LearnerRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Learner, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM learners`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, email, name, native_language, password_hash, created_at, updated_at
		 FROM learners ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var learners []model.Learner
	for rows.Next() {
		var l model.Learner
		if err := rows.Scan(&l.ID, &l.Email, &l.Name, &l.NativeLanguage, &l.PasswordHash, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		learners = append(learners, l)
	}
	return learners, total, rows.Err()
}

// Create inserts a new learner account.
func (r *LearnerRepository) Create(ctx context.Context, l *model.Learner) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO learners (email, name, native_language, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		l.Email, l.Name, l.NativeLanguage, l.PasswordHash,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

// Update replaces a learner's profile fields. An empty password hash keeps
// the stored one.
func (r *LearnerRepository) Update(ctx context.Context, l *model.Learner) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE learners
		 SET email = $1, name = $2, native_language = $3,
		     password_hash = COALESCE(NULLIF($4, ''), password_hash),
		     updated_at = NOW()
		 WHERE id = $5`,
		l.Email, l.Name, l.NativeLanguage, l.PasswordHash, l.ID)
	return err
}

// Delete removes a learner account.
func (r *LearnerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM learners WHERE id = $1`, id)
	return err
}
