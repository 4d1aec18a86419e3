package service

import (
	"context"

	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/repository"
	"github.com/lingodesk/placement-backend/internal/response"
	"github.com/rs/zerolog"
)

// LearnerService manages learner accounts.
type LearnerService struct {
	learnerRepo *repository.LearnerRepository
	resultRepo  *repository.ResultRepository
	auth        *AuthService
	log         zerolog.Logger
}

// NewLearnerService creates a new LearnerService.
func NewLearnerService(
	learnerRepo *repository.LearnerRepository,
	resultRepo *repository.ResultRepository,
	auth *AuthService,
	log zerolog.Logger,
) *LearnerService {
	return &LearnerService{
		learnerRepo: learnerRepo,
		resultRepo:  resultRepo,
		auth:        auth,
		log:         log.With().Str("component", "learner_service").Logger(),
	}
}

// GetByEmail retrieves a learner by email.
func (s *LearnerService) GetByEmail(ctx context.Context, email string) (*model.Learner, error) {
	return s.learnerRepo.GetByEmail(ctx, email)
}

// GetByID retrieves a learner.
func (s *LearnerService) GetByID(ctx context.Context, id int) (*model.Learner, error) {
	return s.learnerRepo.GetByID(ctx, id)
}

// List retrieves learners paginated.
func (s *LearnerService) List(ctx context.Context, page, perPage int) ([]model.Learner, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	learners, total, err := s.learnerRepo.ListPaginated(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if learners == nil {
		learners = []model.Learner{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return learners, pagination, nil
}

// Create registers a learner account with a hashed password.
func (s *LearnerService) Create(ctx context.Context, req *model.CreateLearnerRequest) (*model.Learner, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	l := &model.Learner{
		Email:          req.Email,
		Name:           req.Name,
		NativeLanguage: req.NativeLanguage,
		PasswordHash:   hash,
	}
	if err := s.learnerRepo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update edits a learner account. An empty password keeps the current one.
func (s *LearnerService) Update(ctx context.Context, id int, req *model.UpdateLearnerRequest) (*model.Learner, error) {
	l, err := s.learnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	l.Email = req.Email
	l.Name = req.Name
	l.NativeLanguage = req.NativeLanguage
	l.PasswordHash = ""
	if req.Password != "" {
		if l.PasswordHash, err = s.auth.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.learnerRepo.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.learnerRepo.GetByID(ctx, id)
}

// Delete removes a learner account and clears any active login session.
func (s *LearnerService) Delete(ctx context.Context, id int) error {
	if err := s.auth.ResetLearnerSession(ctx, id); err != nil {
		s.log.Warn().Err(err).Int("learner_id", id).Msg("Failed to clear session")
	}
	return s.learnerRepo.Delete(ctx, id)
}

// History retrieves a learner's placement results across all tests.
func (s *LearnerService) History(ctx context.Context, learnerID int) ([]model.PlacementResult, error) {
	results, err := s.resultRepo.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.PlacementResult{}
	}
	return results, nil
}
