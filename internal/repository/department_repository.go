package repository

import (
	"context"

	"github.com/employee-api/internal/domain"
	"gorm.io/gorm"
)

// DepartmentRepository определяет интерфейс для работы с подразделениями
type DepartmentRepository interface {
	List(ctx context.Context) ([]domain.DepartmentSummary, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository создаёт новый экземпляр репозитория
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.DepartmentSummary, error) {
	summaries := make([]domain.DepartmentSummary, 0)

	err := r.db.WithContext(ctx).
		Model(&domain.Department{}).
		Select("departments.id, departments.name, departments.code, departments.description, COUNT(employees.id) AS employee_count").
		Joins("LEFT JOIN employees ON employees.department_id = departments.id").
		Group("departments.id, departments.name, departments.code, departments.description").
		Order("departments.id ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, domain.NewStoreError("list departments", err)
	}

	return summaries, nil
}

func (r *departmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Department{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, domain.NewStoreError("check department", err)
	}
	return count > 0, nil
}
