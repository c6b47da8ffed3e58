package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/employee-api/internal/dto"
	"github.com/employee-api/internal/respond"
	"github.com/employee-api/internal/store"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	checkPass = "pass"
	checkFail = "fail"

	pingTimeout = 2 * time.Second
)

// HealthHandler сообщает о состоянии сервиса; всегда отвечает 200
type HealthHandler struct {
	db      store.Pinger
	version string
	logger  *slog.Logger
}

func NewHealthHandler(db store.Pinger, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
		logger:  logger,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start)

	resp := dto.HealthResponse{
		Status:    StatusHealthy,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Checks: map[string]dto.CheckResult{
			"database": {Status: checkPass, LatencyMs: latency.Milliseconds()},
		},
	}

	if err != nil {
		h.logger.Warn("database health check failed", slog.Any("error", err))
		resp.Status = StatusDegraded
		resp.Checks["database"] = dto.CheckResult{
			Status:    checkFail,
			LatencyMs: latency.Milliseconds(),
			Message:   "database is unreachable",
		}
	}

	respond.JSON(w, h.logger, http.StatusOK, resp)
}
