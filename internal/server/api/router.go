package api

import (
	"net/http"

	"github.com/Exidekat/mechgen-ui/internal/core/event"
	"github.com/Exidekat/mechgen-ui/internal/core/result"
	"github.com/Exidekat/mechgen-ui/internal/core/worker"
	"github.com/Exidekat/mechgen-ui/internal/server/api/handlers"
	"github.com/Exidekat/mechgen-ui/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type RouterConfig struct {
	Store  *store.Store
	Reader *result.Reader
	Pool   *worker.Pool
	Bus    event.Bus
}

func SetupRouter(e *echo.Echo, cfg RouterConfig) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST"},
	}))
	e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(50)))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/api/v1")
	config := huma.DefaultConfig("MechGen API", "1.0.0")
	config.Servers = []*huma.Server{{URL: "/api/v1"}}
	config.Info.Description = "Dataset compression job service"

	handlers.InitErrors()
	api := humaecho.NewWithGroup(e, v1, config)

	datasetsHandler := handlers.NewDatasetsHandler(cfg.Store, cfg.Pool, cfg.Bus)
	huma.Register(api, huma.Operation{
		OperationID:   "submit-dataset",
		Method:        http.MethodPost,
		Path:          "/datasets",
		Summary:       "Submit a dataset and start a compression job",
		Tags:          []string{"Datasets"},
		DefaultStatus: http.StatusCreated,
	}, datasetsHandler.Submit)

	huma.Register(api, huma.Operation{
		OperationID: "list-datasets",
		Method:      http.MethodGet,
		Path:        "/datasets",
		Summary:     "List datasets",
		Tags:        []string{"Datasets"},
	}, datasetsHandler.List)

	huma.Register(api, huma.Operation{
		OperationID: "list-dataset-jobs",
		Method:      http.MethodGet,
		Path:        "/datasets/{id}/jobs",
		Summary:     "List a dataset's jobs",
		Tags:        []string{"Datasets"},
	}, datasetsHandler.Jobs)

	jobsHandler := handlers.NewJobsHandler(cfg.Store, cfg.Reader, cfg.Pool)
	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/jobs",
		Summary:     "List jobs",
		Tags:        []string{"Jobs"},
	}, jobsHandler.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-job",
		Method:      http.MethodGet,
		Path:        "/jobs/{id}",
		Summary:     "Get job status",
		Description: "Safe to poll at short intervals; reads have no side effects.",
		Tags:        []string{"Jobs"},
	}, jobsHandler.Get)

	huma.Register(api, huma.Operation{
		OperationID:   "run-job",
		Method:        http.MethodPost,
		Path:          "/jobs/{id}/run",
		Summary:       "Trigger a job run (idempotent)",
		Tags:          []string{"Jobs"},
		DefaultStatus: http.StatusAccepted,
	}, jobsHandler.Run)

	huma.Register(api, huma.Operation{
		OperationID: "get-job-outputs",
		Method:      http.MethodGet,
		Path:        "/jobs/{id}/outputs",
		Summary:     "Get a job's frame outputs and aggregate stats",
		Tags:        []string{"Jobs"},
	}, jobsHandler.Outputs)
}
