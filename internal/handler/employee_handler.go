package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/employee-api/internal/domain"
	"github.com/employee-api/internal/dto"
	"github.com/employee-api/internal/respond"
	"github.com/employee-api/internal/service"
	"github.com/employee-api/internal/validation"
)

type EmployeeHandler struct {
	empService service.EmployeeService
	validator  *validation.Validator
	logger     *slog.Logger
}

func NewEmployeeHandler(empService service.EmployeeService, validator *validation.Validator, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		empService: empService,
		validator:  validator,
		logger:     logger,
	}
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r.URL.Query())
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	if err := h.validator.Struct(&query); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	employees, total, err := h.empService.List(r.Context(), &query)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	items := make([]dto.EmployeeResponse, len(employees))
	for i := range employees {
		items[i] = toEmployeeResponse(&employees[i])
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.EmployeeListResponse{
		Items:  items,
		Total:  total,
		Offset: query.Offset,
		Limit:  query.Limit,
	})
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(w, r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	emp, err := h.empService.Create(r.Context(), req)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	h.logger.Info("employee created", slog.Int64("id", emp.ID))
	w.Header().Set("Location", "/api/v1/employees/"+strconv.FormatInt(emp.ID, 10))
	respond.JSON(w, h.logger, http.StatusCreated, toEmployeeResponse(emp))
}

func (h *EmployeeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	emp, err := h.empService.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, toEmployeeResponse(emp))
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	req, err := h.decodeRequest(w, r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	emp, err := h.empService.Update(r.Context(), id, req)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, toEmployeeResponse(emp))
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	if err := h.empService.Delete(r.Context(), id); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	h.logger.Info("employee deleted", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// decodeRequest разбирает, нормализует и проверяет тело запроса
func (h *EmployeeHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*dto.EmployeeRequest, error) {
	var req dto.EmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}

	req.Normalize()

	if err := h.validator.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func toEmployeeResponse(emp *domain.Employee) dto.EmployeeResponse {
	resp := dto.EmployeeResponse{
		ID:           emp.ID,
		Name:         emp.Name,
		Email:        emp.Email,
		DepartmentID: emp.DepartmentID,
		Position:     emp.Position,
		IsActive:     emp.IsActive,
		CreatedAt:    emp.CreatedAt,
		UpdatedAt:    emp.UpdatedAt,
	}

	if emp.Salary != nil {
		salary := emp.Salary.StringFixed(2)
		resp.Salary = &salary
	}

	return resp
}
