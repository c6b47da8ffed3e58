package handler

import (
	"log/slog"
	"net/http"

	"github.com/employee-api/internal/auth"
	"github.com/employee-api/internal/dto"
	"github.com/employee-api/internal/metrics"
	"github.com/employee-api/internal/middleware"
	"github.com/employee-api/internal/openapi"
	"github.com/employee-api/internal/respond"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Router настраивает маршруты API
type Router struct {
	logger        *slog.Logger
	empHandler    *EmployeeHandler
	deptHandler   *DepartmentHandler
	healthHandler *HealthHandler
	metrics       *metrics.Metrics
	tokens        *auth.TokenManager
	corsOrigins   []string
	version       string
}

// RouterDeps - зависимости роутера; Tokens == nil отключает аутентификацию
type RouterDeps struct {
	Employees   *EmployeeHandler
	Departments *DepartmentHandler
	Health      *HealthHandler
	Metrics     *metrics.Metrics
	Tokens      *auth.TokenManager
	CORSOrigins []string
	Version     string
}

// NewRouter создаёт новый роутер
func NewRouter(deps RouterDeps, logger *slog.Logger) *Router {
	return &Router{
		logger:        logger,
		empHandler:    deps.Employees,
		deptHandler:   deps.Departments,
		healthHandler: deps.Health,
		metrics:       deps.Metrics,
		tokens:        deps.Tokens,
		corsOrigins:   deps.CORSOrigins,
		version:       deps.Version,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Logger(r.logger))
	if r.metrics != nil {
		mux.Use(middleware.Metrics(r.metrics))
	}
	mux.Use(middleware.Recoverer(r.logger))
	mux.Use(middleware.CORS(r.corsOrigins))
	mux.Use(chimw.StripSlashes)

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, r.logger, http.StatusNotFound, dto.ErrorResponse{
			Kind:    "NotFoundError",
			Message: "route not found",
		})
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, r.logger, http.StatusMethodNotAllowed, dto.ErrorResponse{
			Kind:    "MethodNotAllowed",
			Message: "method not allowed",
		})
	})

	mux.Get("/health", r.healthHandler.Check)
	if r.metrics != nil {
		mux.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}

	mux.Route(openapi.BasePath, func(api chi.Router) {
		api.Use(middleware.ContentType)

		api.Get("/health", r.healthHandler.Check)
		api.Get("/swagger.json", openapi.Handler(r.version))

		api.Group(func(protected chi.Router) {
			if r.tokens != nil {
				protected.Use(middleware.Auth(r.tokens, r.logger))
			}

			protected.Get("/departments", r.deptHandler.List)

			protected.Get("/employees", r.empHandler.List)
			protected.Post("/employees", r.empHandler.Create)
			protected.Get("/employees/{id}", r.empHandler.GetByID)
			protected.Put("/employees/{id}", r.empHandler.Update)
			protected.Delete("/employees/{id}", r.empHandler.Delete)
		})
	})

	return mux
}
