package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeRequest - тело запроса на создание и полную замену сотрудника
type EmployeeRequest struct {
	Name         string           `json:"name" validate:"required,min=1,max=200"`
	Email        *string          `json:"email" validate:"omitempty,email,max=255"`
	DepartmentID *int64           `json:"department_id" validate:"omitempty,min=1"`
	Position     *string          `json:"position" validate:"omitempty,max=200"`
	Salary       *decimal.Decimal `json:"salary" validate:"omitempty,gt=0,lt=10000000000,decimal_places=2"`
	IsActive     *bool            `json:"is_active"`
}

// Normalize обрезает пробелы; пустые необязательные строки становятся nil
func (r *EmployeeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = trimOptional(r.Email)
	r.Position = trimOptional(r.Position)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ListEmployeesQuery - параметры запроса списка сотрудников
type ListEmployeesQuery struct {
	Offset       int    `json:"offset" validate:"min=0"`
	Limit        int    `json:"limit" validate:"min=0,max=100"`
	DepartmentID *int64 `json:"department_id" validate:"omitempty,min=1"`
	IsActive     *bool  `json:"is_active"`
	Search       string `json:"search" validate:"max=100"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// EmployeeResponse - ответ с данными сотрудника
type EmployeeResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        *string   `json:"email"`
	DepartmentID *int64    `json:"department_id"`
	Position     *string   `json:"position"`
	Salary       *string   `json:"salary"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EmployeeListResponse - страница списка сотрудников
type EmployeeListResponse struct {
	Items  []EmployeeResponse `json:"items"`
	Total  int64              `json:"total"`
	Offset int                `json:"offset"`
	Limit  int                `json:"limit"`
}

// DepartmentResponse - ответ с данными подразделения
type DepartmentResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	Description   string `json:"description"`
	EmployeeCount int64  `json:"employee_count"`
}

// HealthResponse - ответ проверки состояния сервиса
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult - результат проверки одной зависимости
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
