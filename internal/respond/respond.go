// Package respond записывает JSON-ответы и переводит ошибки домена в HTTP-статусы.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/employee-api/internal/domain"
	"github.com/employee-api/internal/dto"
)

// StatusFor возвращает HTTP-статус для категории ошибки
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// JSON записывает тело ответа с указанным статусом
func JSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// Error записывает ошибку в формате {kind, message, fields}.
// Внутренние подробности сбоев 5xx клиенту не передаются.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	resp := dto.ErrorResponse{
		Kind:    string(domain.KindInternal),
		Message: "internal server error",
	}

	var de *domain.Error
	if errors.As(err, &de) {
		resp.Kind = string(de.Kind)
		resp.Message = de.Message
		resp.Fields = de.Fields
	}

	status := StatusFor(domain.Kind(resp.Kind))
	switch status {
	case http.StatusServiceUnavailable:
		logger.Error("store unavailable", slog.Any("error", err))
		resp.Message = "storage is temporarily unavailable"
	case http.StatusInternalServerError:
		logger.Error("internal error", slog.Any("error", err))
		resp.Message = "internal server error"
	case http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", `Bearer realm="employee-api"`)
	}

	JSON(w, logger, status, resp)
}
