package service

import (
	"context"
	"strconv"

	"github.com/employee-api/internal/domain"
	"github.com/employee-api/internal/dto"
	"github.com/employee-api/internal/repository"
)

// EmployeeService определяет интерфейс бизнес-логики для сотрудников
type EmployeeService interface {
	List(ctx context.Context, query *dto.ListEmployeesQuery) ([]domain.Employee, int64, error)
	Create(ctx context.Context, req *dto.EmployeeRequest) (*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	Update(ctx context.Context, id int64, req *dto.EmployeeRequest) (*domain.Employee, error)
	Delete(ctx context.Context, id int64) error
}

type employeeService struct {
	empRepo  repository.EmployeeRepository
	deptRepo repository.DepartmentRepository
}

// NewEmployeeService создаёт новый экземпляр сервиса
func NewEmployeeService(empRepo repository.EmployeeRepository, deptRepo repository.DepartmentRepository) EmployeeService {
	return &employeeService{
		empRepo:  empRepo,
		deptRepo: deptRepo,
	}
}

func (s *employeeService) List(ctx context.Context, query *dto.ListEmployeesQuery) ([]domain.Employee, int64, error) {
	return s.empRepo.List(ctx, domain.EmployeeFilter{
		Offset:       query.Offset,
		Limit:        query.Limit,
		DepartmentID: query.DepartmentID,
		IsActive:     query.IsActive,
		Search:       query.Search,
	})
}

func (s *employeeService) Create(ctx context.Context, req *dto.EmployeeRequest) (*domain.Employee, error) {
	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	if err := s.checkEmail(ctx, req.Email, nil); err != nil {
		return nil, err
	}

	emp := &domain.Employee{}
	apply(emp, req)

	if err := s.empRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	return emp, nil
}

func (s *employeeService) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.empRepo.GetByID(ctx, id)
}

func (s *employeeService) Update(ctx context.Context, id int64, req *dto.EmployeeRequest) (*domain.Employee, error) {
	emp, err := s.empRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	if err := s.checkEmail(ctx, req.Email, &id); err != nil {
		return nil, err
	}

	// Полная замена: поля, не переданные в запросе, сбрасываются
	apply(emp, req)

	if err := s.empRepo.Update(ctx, emp); err != nil {
		return nil, err
	}

	return s.empRepo.GetByID(ctx, id)
}

func (s *employeeService) Delete(ctx context.Context, id int64) error {
	return s.empRepo.Delete(ctx, id)
}

// checkDepartment проверяет, что ссылка на подразделение разрешается
func (s *employeeService) checkDepartment(ctx context.Context, departmentID *int64) error {
	if departmentID == nil {
		return nil
	}

	exists, err := s.deptRepo.Exists(ctx, *departmentID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewFieldError(
			"department_id",
			"department "+strconv.FormatInt(*departmentID, 10)+" does not exist",
			domain.ErrUnknownDepartment,
		)
	}
	return nil
}

func (s *employeeService) checkEmail(ctx context.Context, email *string, excludeID *int64) error {
	if email == nil {
		return nil
	}

	exists, err := s.empRepo.ExistsByEmail(ctx, *email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.NewConflictError(domain.ErrDuplicateEmail, "employee with email %s already exists", *email)
	}
	return nil
}

// apply переносит все поля запроса в модель
func apply(emp *domain.Employee, req *dto.EmployeeRequest) {
	emp.Name = req.Name
	emp.Email = req.Email
	emp.DepartmentID = req.DepartmentID
	emp.Position = req.Position
	emp.Salary = nil
	if req.Salary != nil {
		salary := req.Salary.Round(2)
		emp.Salary = &salary
	}
	emp.IsActive = true
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}
}
