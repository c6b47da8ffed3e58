package handler

import (
	"log/slog"
	"net/http"

	"github.com/employee-api/internal/dto"
	"github.com/employee-api/internal/respond"
	"github.com/employee-api/internal/service"
)

type DepartmentHandler struct {
	deptService service.DepartmentService
	logger      *slog.Logger
}

func NewDepartmentHandler(deptService service.DepartmentService, logger *slog.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		deptService: deptService,
		logger:      logger,
	}
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	departments, err := h.deptService.List(r.Context())
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	resp := make([]dto.DepartmentResponse, len(departments))
	for i, dept := range departments {
		resp[i] = dto.DepartmentResponse{
			ID:            dept.ID,
			Name:          dept.Name,
			Code:          dept.Code,
			Description:   dept.Description,
			EmployeeCount: dept.EmployeeCount,
		}
	}

	respond.JSON(w, h.logger, http.StatusOK, resp)
}
