package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/employee-api/internal/auth"
	"github.com/employee-api/internal/dto"
	"github.com/employee-api/internal/handler"
	"github.com/employee-api/internal/metrics"
	"github.com/employee-api/internal/repository"
	"github.com/employee-api/internal/service"
	"github.com/employee-api/internal/store/storetest"
	"github.com/employee-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testVersion = "1.0.0-test"

type testServer struct {
	server *httptest.Server
	db     *gorm.DB
	token  string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := storetest.New(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	deptRepo := repository.NewDepartmentRepository(db)
	empRepo := repository.NewEmployeeRepository(db)

	deptService := service.NewDepartmentService(deptRepo)
	empService := service.NewEmployeeService(empRepo, deptRepo)

	tokens := auth.NewTokenManager("test-secret", "employee-api", time.Hour)
	token, err := tokens.Generate("tester", "admin", 0)
	require.NoError(t, err)

	router := handler.NewRouter(handler.RouterDeps{
		Employees:   handler.NewEmployeeHandler(empService, validation.New(), logger),
		Departments: handler.NewDepartmentHandler(deptService, logger),
		Health:      handler.NewHealthHandler(sqlDB, testVersion, logger),
		Metrics:     metrics.New(testVersion),
		Tokens:      tokens,
		CORSOrigins: []string{"*"},
		Version:     testVersion,
	}, logger)

	ts := &testServer{
		server: httptest.NewServer(router.Setup()),
		db:     db,
		token:  token,
	}
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (ts *testServer) mustCreate(t *testing.T, body map[string]any) dto.EmployeeResponse {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/v1/employees", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.EmployeeResponse](t, resp)
}

func employeePath(id int64) string {
	return "/api/v1/employees/" + strconv.FormatInt(id, 10)
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(ts.server.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)

			health := decode[dto.HealthResponse](t, resp)
			assert.Equal(t, handler.StatusHealthy, health.Status)
			assert.Equal(t, testVersion, health.Version)
			assert.False(t, health.Timestamp.IsZero())
			assert.Equal(t, "pass", health.Checks["database"].Status)
		})
	}
}

func TestHealthCheck_DegradedWhenDatabaseClosed(t *testing.T) {
	ts := setupTestServer(t)

	sqlDB, err := ts.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp, err := http.Get(ts.server.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decode[dto.HealthResponse](t, resp)
	assert.Equal(t, handler.StatusDegraded, health.Status)
	assert.Equal(t, "fail", health.Checks["database"].Status)
	assert.NotEmpty(t, health.Checks["database"].Message)
}

func TestCreateEmployee_ThenGet(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.mustCreate(t, map[string]any{"name": "Ada", "department_id": 1})
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Ada", created.Name)
	require.NotNil(t, created.DepartmentID)
	assert.Equal(t, int64(1), *created.DepartmentID)
	assert.True(t, created.IsActive)
	assert.Nil(t, created.Email)
	assert.Nil(t, created.Salary)

	resp := ts.do(t, http.MethodGet, employeePath(created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[dto.EmployeeResponse](t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.DepartmentID, got.DepartmentID)
	assert.Equal(t, created.IsActive, got.IsActive)
}

func TestCreateEmployee_AllFields(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/employees", map[string]any{
		"name":          "  Grace Hopper  ",
		"email":         "grace@example.com",
		"department_id": 6,
		"position":      "Rear Admiral",
		"salary":        "12345.6",
		"is_active":     false,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[dto.EmployeeResponse](t, resp)
	assert.Equal(t, employeePath(created.ID), resp.Header.Get("Location"))
	assert.Equal(t, "Grace Hopper", created.Name)
	assert.Equal(t, "grace@example.com", *created.Email)
	assert.Equal(t, "Rear Admiral", *created.Position)
	assert.Equal(t, "12345.60", *created.Salary)
	assert.False(t, created.IsActive)
}

func TestCreateEmployee_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name       string
		body       any
		wantFields []string
	}{
		{name: "missing name", body: map[string]any{"email": "x@example.com"}, wantFields: []string{"name"}},
		{name: "blank name", body: map[string]any{"name": "   "}, wantFields: []string{"name"}},
		{
			name:       "several fields at once",
			body:       map[string]any{"name": "", "email": "not-an-email", "salary": -5, "department_id": 0},
			wantFields: []string{"name", "email", "salary", "department_id"},
		},
		{name: "zero salary", body: map[string]any{"name": "Zed", "salary": 0}, wantFields: []string{"salary"}},
		{name: "salary rounds to zero", body: map[string]any{"name": "Tiny", "salary": "0.001"}, wantFields: []string{"salary"}},
		{name: "salary with three decimals", body: map[string]any{"name": "Odd", "salary": "100.456"}, wantFields: []string{"salary"}},
		{name: "salary too large", body: map[string]any{"name": "Rich", "salary": 1e11}, wantFields: []string{"salary"}},
		{name: "name too long", body: map[string]any{"name": strings.Repeat("a", 201)}, wantFields: []string{"name"}},
		{name: "unknown department", body: map[string]any{"name": "Ada", "department_id": 999}, wantFields: []string{"department_id"}},
		{name: "unknown field", body: map[string]any{"name": "Ada", "nickname": "A"}, wantFields: []string{"nickname"}},
		{name: "wrong type", body: map[string]any{"name": "Ada", "department_id": "one"}, wantFields: []string{"department_id"}},
		{name: "malformed json", body: `{"name": "Ada"`, wantFields: []string{"body"}},
		{name: "trailing data", body: `{"name": "Ada"} {"name": "Bob"}`, wantFields: []string{"body"}},
		{name: "empty body", body: ``, wantFields: []string{"body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPost, "/api/v1/employees", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, "ValidationError", body.Kind)
			for _, f := range tt.wantFields {
				assert.Contains(t, body.Fields, f)
			}
		})
	}

	resp := ts.do(t, http.MethodGet, "/api/v1/employees", nil)
	list := decode[dto.EmployeeListResponse](t, resp)
	assert.Zero(t, list.Total, "invalid requests must not create records")
}

func TestCreateEmployee_SalaryPrecision(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/employees", map[string]any{"name": "Tiny", "salary": "0.001"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "ValidationError", body.Kind)
	assert.Equal(t, "must have at most 2 decimal places", body.Fields["salary"])

	resp = ts.do(t, http.MethodPost, "/api/v1/employees", map[string]any{"name": "Rich", "salary": "10000000000"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "must be less than 10000000000", decode[dto.ErrorResponse](t, resp).Fields["salary"])

	tests := []struct {
		salary any
		want   string
	}{
		{salary: "9999999999.99", want: "9999999999.99"},
		{salary: "100.450", want: "100.45"},
		{salary: 0.01, want: "0.01"},
	}
	for _, tt := range tests {
		created := ts.mustCreate(t, map[string]any{"name": "Exact", "salary": tt.salary})
		require.NotNil(t, created.Salary)
		assert.Equal(t, tt.want, *created.Salary)
	}
}

func TestCreateEmployee_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)

	ts.mustCreate(t, map[string]any{"name": "First", "email": "same@example.com"})

	resp := ts.do(t, http.MethodPost, "/api/v1/employees", map[string]any{"name": "Second", "email": "SAME@example.com"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "ConflictError", body.Kind)
}

func TestGetEmployee_Errors(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/v1/employees/12345", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NotFoundError", decode[dto.ErrorResponse](t, resp).Kind)

	for _, id := range []string{"abc", "0", "-1"} {
		resp := ts.do(t, http.MethodGet, "/api/v1/employees/"+id, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "id %s", id)
	}
}

func TestUpdateEmployee_FullReplace(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.mustCreate(t, map[string]any{
		"name":          "Linus",
		"email":         "linus@example.com",
		"department_id": 1,
		"position":      "Maintainer",
		"salary":        9000,
		"is_active":     false,
	})

	resp := ts.do(t, http.MethodPut, employeePath(created.ID), map[string]any{"name": "Linus T."})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decode[dto.EmployeeResponse](t, resp)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Linus T.", updated.Name)
	assert.Nil(t, updated.Email)
	assert.Nil(t, updated.DepartmentID)
	assert.Nil(t, updated.Position)
	assert.Nil(t, updated.Salary)
	assert.True(t, updated.IsActive)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	resp = ts.do(t, http.MethodGet, employeePath(created.ID), nil)
	got := decode[dto.EmployeeResponse](t, resp)
	assert.Equal(t, "Linus T.", got.Name)
	assert.Nil(t, got.Email)
}

func TestUpdateEmployee_KeepsOwnEmail(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.mustCreate(t, map[string]any{"name": "Ann", "email": "ann@example.com"})

	resp := ts.do(t, http.MethodPut, employeePath(created.ID), map[string]any{"name": "Ann B.", "email": "ann@example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateEmployee_Errors(t *testing.T) {
	ts := setupTestServer(t)

	ts.mustCreate(t, map[string]any{"name": "Taken", "email": "taken@example.com"})
	target := ts.mustCreate(t, map[string]any{"name": "Target"})

	t.Run("missing record is not created", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, "/api/v1/employees/9999", map[string]any{"name": "Ghost"})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = ts.do(t, http.MethodGet, "/api/v1/employees/9999", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = ts.do(t, http.MethodGet, "/api/v1/employees?search=ghost", nil)
		assert.Zero(t, decode[dto.EmployeeListResponse](t, resp).Total)
	})

	t.Run("invalid body checked before existence", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, "/api/v1/employees/9999", map[string]any{"name": ""})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unknown department", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, employeePath(target.ID), map[string]any{"name": "Target", "department_id": 77})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, decode[dto.ErrorResponse](t, resp).Fields, "department_id")
	})

	t.Run("email of another employee", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, employeePath(target.ID), map[string]any{"name": "Target", "email": "taken@example.com"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestDeleteEmployee(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.mustCreate(t, map[string]any{"name": "Temp"})

	resp := ts.do(t, http.MethodDelete, employeePath(created.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)

	resp = ts.do(t, http.MethodGet, employeePath(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, employeePath(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListEmployees(t *testing.T) {
	ts := setupTestServer(t)

	ts.mustCreate(t, map[string]any{"name": "Anna", "email": "anna@example.com", "department_id": 1})
	ts.mustCreate(t, map[string]any{"name": "Boris", "department_id": 2, "is_active": false})
	ts.mustCreate(t, map[string]any{"name": "Hanna", "department_id": 1})

	tests := []struct {
		name      string
		query     string
		wantNames []string
		wantTotal int64
		wantLimit int
	}{
		{name: "defaults", query: "", wantNames: []string{"Anna", "Boris", "Hanna"}, wantTotal: 3, wantLimit: 20},
		{name: "zero limit", query: "?limit=0", wantNames: []string{}, wantTotal: 3, wantLimit: 0},
		{name: "window", query: "?offset=1&limit=1", wantNames: []string{"Boris"}, wantTotal: 3, wantLimit: 1},
		{name: "offset past end", query: "?offset=50", wantNames: []string{}, wantTotal: 3, wantLimit: 20},
		{name: "department", query: "?department_id=1", wantNames: []string{"Anna", "Hanna"}, wantTotal: 2, wantLimit: 20},
		{name: "inactive", query: "?is_active=false", wantNames: []string{"Boris"}, wantTotal: 1, wantLimit: 20},
		{name: "search", query: "?search=ANN", wantNames: []string{"Anna", "Hanna"}, wantTotal: 2, wantLimit: 20},
		{name: "no match", query: "?search=zzz", wantNames: []string{}, wantTotal: 0, wantLimit: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodGet, "/api/v1/employees"+tt.query, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			list := decode[dto.EmployeeListResponse](t, resp)
			require.NotNil(t, list.Items)

			names := make([]string, 0, len(list.Items))
			for _, e := range list.Items {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantTotal, list.Total)
			assert.Equal(t, tt.wantLimit, list.Limit)
		})
	}
}

func TestListEmployees_InvalidQuery(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		query string
		field string
	}{
		{query: "?limit=101", field: "limit"},
		{query: "?limit=-1", field: "limit"},
		{query: "?offset=-3", field: "offset"},
		{query: "?offset=abc", field: "offset"},
		{query: "?department_id=0", field: "department_id"},
		{query: "?is_active=maybe", field: "is_active"},
		{query: "?search=" + strings.Repeat("x", 101), field: "search"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			resp := ts.do(t, http.MethodGet, "/api/v1/employees"+tt.query, nil)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Contains(t, decode[dto.ErrorResponse](t, resp).Fields, tt.field)
		})
	}
}

func TestListDepartments(t *testing.T) {
	ts := setupTestServer(t)

	ts.mustCreate(t, map[string]any{"name": "Dev", "department_id": 1})

	resp := ts.do(t, http.MethodGet, "/api/v1/departments", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	departments := decode[[]dto.DepartmentResponse](t, resp)
	require.Len(t, departments, 7)
	assert.Equal(t, "ENG", departments[0].Code)
	assert.Equal(t, int64(1), departments[0].EmployeeCount)
	assert.Equal(t, int64(0), departments[1].EmployeeCount)
}

func TestAuthRequired(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/employees"},
		{http.MethodPost, "/api/v1/employees"},
		{http.MethodGet, "/api/v1/employees/1"},
		{http.MethodPut, "/api/v1/employees/1"},
		{http.MethodDelete, "/api/v1/employees/1"},
		{http.MethodGet, "/api/v1/departments"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.server.URL+tt.path, strings.NewReader(`{"name":"x"}`))
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")
			assert.Equal(t, "AuthError", decode[dto.ErrorResponse](t, resp).Kind)
		})
	}

	var count int64
	require.NoError(t, ts.db.Table("employees").Count(&count).Error)
	assert.Zero(t, count)
}

func TestPublicEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/api/v1/swagger.json", "/metrics"} {
		resp, err := http.Get(ts.server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodPatch, "/api/v1/employees/1", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStoreUnavailable(t *testing.T) {
	ts := setupTestServer(t)

	sqlDB, err := ts.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp := ts.do(t, http.MethodGet, "/api/v1/employees", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "StoreError", decode[dto.ErrorResponse](t, resp).Kind)
}
