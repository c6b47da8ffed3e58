package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department представляет подразделение организации
type Department struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Code        string `gorm:"type:varchar(10);not null;uniqueIndex"`
	Description string `gorm:"type:text;not null"`
}

// TableName задаёт имя таблицы для GORM
func (Department) TableName() string {
	return "departments"
}

// DepartmentSummary - подразделение вместе с числом сотрудников
type DepartmentSummary struct {
	ID            int64
	Name          string
	Code          string
	Description   string
	EmployeeCount int64
}

// Employee представляет сотрудника
type Employee struct {
	ID           int64            `gorm:"primaryKey;autoIncrement"`
	Name         string           `gorm:"type:varchar(200);not null"`
	Email        *string          `gorm:"type:varchar(255);uniqueIndex"`
	DepartmentID *int64           `gorm:"index"`
	Position     *string          `gorm:"type:varchar(200)"`
	Salary       *decimal.Decimal `gorm:"type:numeric(12,2)"`
	IsActive     bool             `gorm:"not null"`
	CreatedAt    time.Time        `gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return "employees"
}

// EmployeeFilter - параметры выборки списка сотрудников
type EmployeeFilter struct {
	Offset       int
	Limit        int
	DepartmentID *int64
	IsActive     *bool
	Search       string
}
