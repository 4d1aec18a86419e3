package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/repository"
	"github.com/rs/zerolog"
)

// CatalogService manages the course module catalog that placement levels
// map onto.
type CatalogService struct {
	moduleRepo *repository.ModuleCatalogRepository
	log        zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(moduleRepo *repository.ModuleCatalogRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		moduleRepo: moduleRepo,
		log:        log.With().Str("component", "catalog_service").Logger(),
	}
}

// List retrieves catalog modules.
func (s *CatalogService) List(ctx context.Context, activeOnly bool) ([]model.CourseModule, error) {
	modules, err := s.moduleRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		modules = []model.CourseModule{}
	}
	return modules, nil
}

// GetByID retrieves a single catalog module.
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*model.CourseModule, error) {
	return s.moduleRepo.GetByID(ctx, id)
}

// Create adds a catalog module as active.
func (s *CatalogService) Create(ctx context.Context, req *model.CreateModuleRequest) (*model.CourseModule, error) {
	m := &model.CourseModule{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.ModuleStatusActive,
	}
	if err := s.moduleRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update edits a catalog module. Retiring a module leaves existing
// assignments and results untouched; it only blocks new assignments.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateModuleRequest) (*model.CourseModule, error) {
	m, err := s.moduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	m.Title = req.Title
	m.Description = req.Description
	m.Status = model.ModuleStatus(req.Status)

	if err := s.moduleRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a catalog module and cascades its assignments away.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.moduleRepo.Delete(ctx, id)
}
