package respond

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/employee-api/internal/domain"
	"github.com/employee-api/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantKind    string
		wantMessage string
		wantFields  map[string]string
	}{
		{
			name:        "validation",
			err:         domain.NewValidationError("request validation failed", map[string]string{"name": "is required"}),
			wantStatus:  http.StatusUnprocessableEntity,
			wantKind:    "ValidationError",
			wantMessage: "request validation failed",
			wantFields:  map[string]string{"name": "is required"},
		},
		{
			name:        "not found",
			err:         domain.NewNotFoundError(domain.ErrEmployeeNotFound, "employee %d not found", 3),
			wantStatus:  http.StatusNotFound,
			wantKind:    "NotFoundError",
			wantMessage: "employee 3 not found",
		},
		{
			name:        "conflict",
			err:         domain.NewConflictError(domain.ErrDuplicateEmail, "duplicate"),
			wantStatus:  http.StatusConflict,
			wantKind:    "ConflictError",
			wantMessage: "duplicate",
		},
		{
			name:        "auth",
			err:         domain.NewAuthError("missing bearer token", nil),
			wantStatus:  http.StatusUnauthorized,
			wantKind:    "AuthError",
			wantMessage: "missing bearer token",
		},
		{
			name:        "store hides cause",
			err:         domain.NewStoreError("list employees", errors.New("dial tcp: refused")),
			wantStatus:  http.StatusServiceUnavailable,
			wantKind:    "StoreError",
			wantMessage: "storage is temporarily unavailable",
		},
		{
			name:        "unknown error is internal",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantKind:    "InternalError",
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, logger, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantFields, body.Fields)

			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}
