package service

import (
	"context"

	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/repository"
)

// TeacherService manages teacher staff accounts and their permissions.
type TeacherService struct {
	teacherRepo *repository.TeacherRepository
	roleRepo    *repository.RoleRepository
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(teacherRepo *repository.TeacherRepository, roleRepo *repository.RoleRepository) *TeacherService {
	return &TeacherService{teacherRepo: teacherRepo, roleRepo: roleRepo}
}

// GetByEmail retrieves a teacher by email.
func (s *TeacherService) GetByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	return s.teacherRepo.GetByEmail(ctx, email)
}

// GetByID retrieves a teacher by id.
func (s *TeacherService) GetByID(ctx context.Context, id int) (*model.Teacher, error) {
	return s.teacherRepo.GetByID(ctx, id)
}

// GetPermissions retrieves the permission codes for a teacher's role.
func (s *TeacherService) GetPermissions(ctx context.Context, roleID int) ([]string, error) {
	return s.roleRepo.GetPermissions(ctx, roleID)
}
