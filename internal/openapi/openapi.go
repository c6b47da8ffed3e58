// Package openapi описывает HTTP API в формате Swagger 2.0.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-openapi/spec"
	"sigs.k8s.io/yaml"
)

const BasePath = "/api/v1"

const bearerScheme = "Bearer"

func ref(name string) *spec.Schema {
	return spec.RefSchema("#/definitions/" + name)
}

func nullable(s *spec.Schema) *spec.Schema {
	s.AddExtension("x-nullable", true)
	return s
}

func withExample(s *spec.Schema, example any) *spec.Schema {
	s.Example = example
	return s
}

func response(description string, schema *spec.Schema) *spec.Response {
	resp := spec.NewResponse().WithDescription(description)
	if schema != nil {
		resp.WithSchema(schema)
	}
	return resp
}

func errorResponse(description string) *spec.Response {
	return response(description, ref("Error"))
}

func idParam() *spec.Parameter {
	return spec.PathParam("id").
		Typed("integer", "int64").
		WithDescription("Employee identifier").
		WithMinimum(1, false)
}

func employeeBody() *spec.Parameter {
	return spec.BodyParam("employee", ref("EmployeeInput")).AsRequired()
}

// protected помечает операцию как требующую токен
func protected(op *spec.Operation) *spec.Operation {
	return op.
		SecuredWith(bearerScheme).
		RespondsWith(http.StatusUnauthorized, errorResponse("Missing or invalid token"))
}

// New строит документ; host может быть пустым
func New(version, host string) *spec.Swagger {
	auth := spec.APIKeyAuth("Authorization", "header")
	auth.Description = `JWT access token: "Bearer <token>"`

	return &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger: "2.0",
			Info: &spec.Info{
				InfoProps: spec.InfoProps{
					Title:       "Employee Management API",
					Description: "CRUD operations for employees and read access to departments",
					Version:     version,
				},
			},
			Host:     host,
			BasePath: BasePath,
			Consumes: []string{"application/json"},
			Produces: []string{"application/json"},
			Tags: []spec.Tag{
				spec.NewTag("Employees", "Employee records", nil),
				spec.NewTag("Departments", "Reference list of departments", nil),
				spec.NewTag("Health", "Service status", nil),
			},
			SecurityDefinitions: spec.SecurityDefinitions{bearerScheme: auth},
			Paths:               paths(),
			Definitions:         definitions(),
		},
	}
}

func paths() *spec.Paths {
	listEmployees := protected(spec.NewOperation("listEmployees").
		WithSummary("List employees").
		WithTags("Employees").
		AddParam(spec.QueryParam("offset").Typed("integer", "").WithMinimum(0, false).WithDefault(0)).
		AddParam(spec.QueryParam("limit").Typed("integer", "").WithMinimum(0, false).WithMaximum(100, false).WithDefault(20)).
		AddParam(spec.QueryParam("department_id").Typed("integer", "int64").WithMinimum(1, false)).
		AddParam(spec.QueryParam("is_active").Typed("boolean", "")).
		AddParam(spec.QueryParam("search").Typed("string", "").WithDescription("Case-insensitive substring of name or email")).
		RespondsWith(http.StatusOK, response("Page of employees", ref("EmployeeList"))).
		RespondsWith(http.StatusUnprocessableEntity, errorResponse("Invalid query parameters")).
		RespondsWith(http.StatusServiceUnavailable, errorResponse("Storage unavailable")))

	createEmployee := protected(spec.NewOperation("createEmployee").
		WithSummary("Create an employee").
		WithTags("Employees").
		AddParam(employeeBody()).
		RespondsWith(http.StatusCreated, response("Created employee", ref("Employee"))).
		RespondsWith(http.StatusConflict, errorResponse("Email already in use")).
		RespondsWith(http.StatusUnprocessableEntity, errorResponse("Invalid payload")).
		RespondsWith(http.StatusServiceUnavailable, errorResponse("Storage unavailable")))

	getEmployee := protected(spec.NewOperation("getEmployee").
		WithSummary("Get an employee").
		WithTags("Employees").
		AddParam(idParam()).
		RespondsWith(http.StatusOK, response("Employee", ref("Employee"))).
		RespondsWith(http.StatusNotFound, errorResponse("Employee not found")).
		RespondsWith(http.StatusUnprocessableEntity, errorResponse("Invalid identifier")).
		RespondsWith(http.StatusServiceUnavailable, errorResponse("Storage unavailable")))

	updateEmployee := protected(spec.NewOperation("updateEmployee").
		WithSummary("Replace an employee").
		WithTags("Employees").
		AddParam(idParam()).
		AddParam(employeeBody()).
		RespondsWith(http.StatusOK, response("Updated employee", ref("Employee"))).
		RespondsWith(http.StatusNotFound, errorResponse("Employee not found")).
		RespondsWith(http.StatusConflict, errorResponse("Email already in use")).
		RespondsWith(http.StatusUnprocessableEntity, errorResponse("Invalid payload")).
		RespondsWith(http.StatusServiceUnavailable, errorResponse("Storage unavailable")))

	deleteEmployee := protected(spec.NewOperation("deleteEmployee").
		WithSummary("Delete an employee").
		WithTags("Employees").
		AddParam(idParam()).
		RespondsWith(http.StatusNoContent, response("Deleted", nil)).
		RespondsWith(http.StatusNotFound, errorResponse("Employee not found")).
		RespondsWith(http.StatusUnprocessableEntity, errorResponse("Invalid identifier")).
		RespondsWith(http.StatusServiceUnavailable, errorResponse("Storage unavailable")))

	listDepartments := protected(spec.NewOperation("listDepartments").
		WithSummary("List departments").
		WithTags("Departments").
		RespondsWith(http.StatusOK, response("All departments", spec.ArrayProperty(ref("Department")))).
		RespondsWith(http.StatusServiceUnavailable, errorResponse("Storage unavailable")))

	health := spec.NewOperation("health").
		WithSummary("Service health").
		WithTags("Health").
		RespondsWith(http.StatusOK, response("Health report", ref("Health")))

	swagger := spec.NewOperation("swagger").
		WithSummary("This document").
		WithTags("Health").
		RespondsWith(http.StatusOK, response("Swagger 2.0 document", nil))

	return &spec.Paths{
		Paths: map[string]spec.PathItem{
			"/employees": {PathItemProps: spec.PathItemProps{
				Get:  listEmployees,
				Post: createEmployee,
			}},
			"/employees/{id}": {PathItemProps: spec.PathItemProps{
				Get:    getEmployee,
				Put:    updateEmployee,
				Delete: deleteEmployee,
			}},
			"/departments":  {PathItemProps: spec.PathItemProps{Get: listDepartments}},
			"/health":       {PathItemProps: spec.PathItemProps{Get: health}},
			"/swagger.json": {PathItemProps: spec.PathItemProps{Get: swagger}},
		},
	}
}

func definitions() spec.Definitions {
	salary := func() *spec.Schema {
		return withExample(spec.StrFmtProperty("decimal"), "5000.00")
	}

	employeeInput := spec.Schema{}
	employeeInput.Typed("object", "").
		WithRequired("name").
		SetProperty("name", *withExample(spec.StringProperty().WithMinLength(1).WithMaxLength(200), "Ada Lovelace")).
		SetProperty("email", *nullable(spec.StrFmtProperty("email").WithMaxLength(255))).
		SetProperty("department_id", *nullable(spec.Int64Property().WithMinimum(1, false))).
		SetProperty("position", *nullable(spec.StringProperty().WithMaxLength(200))).
		SetProperty("salary", *nullable(salary().
			WithDescription("Positive amount below 10000000000 with at most 2 decimal places, number or string"))).
		SetProperty("is_active", *spec.BoolProperty().WithDescription("Defaults to true"))

	employee := spec.Schema{}
	employee.Typed("object", "").
		WithRequired("id", "name", "is_active", "created_at", "updated_at").
		SetProperty("id", *spec.Int64Property()).
		SetProperty("name", *spec.StringProperty()).
		SetProperty("email", *nullable(spec.StrFmtProperty("email"))).
		SetProperty("department_id", *nullable(spec.Int64Property())).
		SetProperty("position", *nullable(spec.StringProperty())).
		SetProperty("salary", *nullable(salary())).
		SetProperty("is_active", *spec.BoolProperty()).
		SetProperty("created_at", *spec.DateTimeProperty()).
		SetProperty("updated_at", *spec.DateTimeProperty())

	employeeList := spec.Schema{}
	employeeList.Typed("object", "").
		WithRequired("items", "total", "offset", "limit").
		SetProperty("items", *spec.ArrayProperty(ref("Employee"))).
		SetProperty("total", *spec.Int64Property()).
		SetProperty("offset", *spec.Int32Property()).
		SetProperty("limit", *spec.Int32Property())

	department := spec.Schema{}
	department.Typed("object", "").
		WithRequired("id", "name", "code", "employee_count").
		SetProperty("id", *spec.Int64Property()).
		SetProperty("name", *spec.StringProperty()).
		SetProperty("code", *spec.StringProperty()).
		SetProperty("description", *spec.StringProperty()).
		SetProperty("employee_count", *spec.Int64Property())

	check := spec.Schema{}
	check.Typed("object", "").
		SetProperty("status", *spec.StringProperty().WithEnum("pass", "fail")).
		SetProperty("latency_ms", *spec.Int64Property()).
		SetProperty("message", *spec.StringProperty())

	health := spec.Schema{}
	health.Typed("object", "").
		WithRequired("status", "version", "timestamp", "checks").
		SetProperty("status", *spec.StringProperty().WithEnum("healthy", "degraded")).
		SetProperty("version", *spec.StringProperty()).
		SetProperty("timestamp", *spec.DateTimeProperty()).
		SetProperty("checks", *spec.MapProperty(&check))

	apiError := spec.Schema{}
	apiError.Typed("object", "").
		WithRequired("kind", "message").
		SetProperty("kind", *spec.StringProperty().WithEnum(
			"ValidationError", "NotFoundError", "ConflictError", "AuthError", "StoreError", "InternalError",
		)).
		SetProperty("message", *spec.StringProperty()).
		SetProperty("fields", *spec.MapProperty(spec.StringProperty()))

	return spec.Definitions{
		"EmployeeInput": employeeInput,
		"Employee":      employee,
		"EmployeeList":  employeeList,
		"Department":    department,
		"Health":        health,
		"Error":         apiError,
	}
}

// Operations возвращает операции документа в виде "метод путь"
func Operations(doc *spec.Swagger) map[string]*spec.Operation {
	ops := make(map[string]*spec.Operation)
	if doc.Paths == nil {
		return ops
	}
	for path, item := range doc.Paths.Paths {
		for method, op := range map[string]*spec.Operation{
			"get":    item.Get,
			"put":    item.Put,
			"post":   item.Post,
			"delete": item.Delete,
			"patch":  item.Patch,
		} {
			if op != nil {
				ops[method+" "+path] = op
			}
		}
	}
	return ops
}

// Render кодирует документ в формате json или yaml
func Render(doc *spec.Swagger, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(doc, "", "  ")
	case "yaml", "yml":
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		return yaml.JSONToYAML(data)
	default:
		return nil, fmt.Errorf("unsupported format %q, use json or yaml", format)
	}
}

// Handler отдаёт документ; host берётся из запроса
func Handler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := Render(New(version, r.Host), "json")
		if err != nil {
			http.Error(w, `{"kind":"InternalError","message":"internal server error"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}
