package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/employee-api/internal/domain"
	"gorm.io/gorm"
)

// EmployeeRepository определяет интерфейс для работы с сотрудниками
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, int64, error)
	Update(ctx context.Context, emp *domain.Employee) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string, excludeID *int64) (bool, error)
}

// likeEscaper экранирует спецсимволы LIKE, поиск идёт по подстроке буквально
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository создаёт новый экземпляр репозитория
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	if err := r.db.WithContext(ctx).Create(emp).Error; err != nil {
		return r.translate("create employee", err)
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var emp domain.Employee
	err := r.db.WithContext(ctx).First(&emp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError(domain.ErrEmployeeNotFound, "employee %d not found", id)
		}
		return nil, domain.NewStoreError("get employee", err)
	}
	return &emp, nil
}

func (r *employeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.DepartmentID != nil {
			db = db.Where("department_id = ?", *filter.DepartmentID)
		}
		if filter.IsActive != nil {
			db = db.Where("is_active = ?", *filter.IsActive)
		}
		if term := strings.TrimSpace(filter.Search); term != "" {
			like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
			db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, like, like)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Employee{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, domain.NewStoreError("count employees", err)
	}

	employees := make([]domain.Employee, 0)
	if filter.Limit == 0 || int64(filter.Offset) >= total {
		return employees, total, nil
	}

	err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&employees).Error
	if err != nil {
		return nil, 0, domain.NewStoreError("list employees", err)
	}

	return employees, total, nil
}

// Update полностью перезаписывает запись; created_at не изменяется
func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	result := r.db.WithContext(ctx).
		Model(emp).
		Select("*").
		Omit("id", "created_at").
		Updates(emp)
	if result.Error != nil {
		return r.translate("update employee", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError(domain.ErrEmployeeNotFound, "employee %d not found", emp.ID)
	}
	return nil
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Employee{}, id)
	if result.Error != nil {
		return domain.NewStoreError("delete employee", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError(domain.ErrEmployeeNotFound, "employee %d not found", id)
	}
	return nil
}

func (r *employeeRepository) ExistsByEmail(ctx context.Context, email string, excludeID *int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Employee{}).Where("LOWER(email) = ?", strings.ToLower(email))

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, domain.NewStoreError("check email", err)
	}
	return count > 0, nil
}

// translate отделяет нарушения ограничений схемы от прочих сбоев хранилища
func (r *employeeRepository) translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.NewConflictError(domain.ErrDuplicateEmail, "employee with this email already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.NewFieldError("department_id", "department does not exist", domain.ErrUnknownDepartment)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		// единственная CHECK-проверка таблицы - salary > 0
		return domain.NewFieldError("salary", "is out of the allowed range", err)
	}
	return domain.NewStoreError(op, err)
}
