package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/employee-api/internal/domain"
	"github.com/employee-api/internal/dto"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decodeJSON читает ровно один JSON-объект без неизвестных полей
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return bodyError(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.NewFieldError("body", "must contain a single JSON object", domain.ErrInvalidInput)
	}

	return nil
}

func bodyError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)

	switch {
	case errors.Is(err, io.EOF):
		return domain.NewFieldError("body", "is required", err)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.NewFieldError("body", "is not valid JSON", err)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return domain.NewFieldError(typeErr.Field, "must be a "+typeErr.Type.String(), err)
	case errors.As(err, &maxErr):
		return domain.NewFieldError("body", fmt.Sprintf("must not exceed %d bytes", maxErr.Limit), err)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return domain.NewFieldError(field, "is not a recognized field", err)
	default:
		return domain.NewFieldError("body", "is not valid: "+err.Error(), err)
	}
}

// parseID разбирает положительный идентификатор из пути
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewFieldError("id", "must be a positive integer", domain.ErrInvalidInput)
	}
	return id, nil
}

// parseListQuery разбирает параметры списка; все ошибки разбора собираются вместе
func parseListQuery(values url.Values) (dto.ListEmployeesQuery, error) {
	query := dto.ListEmployeesQuery{Limit: dto.DefaultLimit}
	fields := make(map[string]string)

	if raw := values.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fields["offset"] = "must be an integer"
		}
		query.Offset = v
	}

	if raw := values.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fields["limit"] = "must be an integer"
		}
		query.Limit = v
	}

	if raw := values.Get("department_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields["department_id"] = "must be an integer"
		}
		query.DepartmentID = &v
	}

	if raw := values.Get("is_active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fields["is_active"] = "must be a boolean"
		}
		query.IsActive = &v
	}

	query.Search = strings.TrimSpace(values.Get("search"))

	if len(fields) > 0 {
		return query, domain.NewValidationError("request validation failed", fields)
	}
	return query, nil
}
