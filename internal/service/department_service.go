package service

import (
	"context"

	"github.com/employee-api/internal/domain"
	"github.com/employee-api/internal/repository"
)

// DepartmentService определяет интерфейс бизнес-логики для подразделений
type DepartmentService interface {
	List(ctx context.Context) ([]domain.DepartmentSummary, error)
}

type departmentService struct {
	deptRepo repository.DepartmentRepository
}

// NewDepartmentService создаёт новый экземпляр сервиса
func NewDepartmentService(deptRepo repository.DepartmentRepository) DepartmentService {
	return &departmentService{deptRepo: deptRepo}
}

func (s *departmentService) List(ctx context.Context) ([]domain.DepartmentSummary, error) {
	return s.deptRepo.List(ctx)
}
