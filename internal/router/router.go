package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/learnpath/api/handler"
)

type Handlers struct {
	Generate *apiHandler.GenerateHandler
	Task     *apiHandler.TaskHandler
	Health   *apiHandler.HealthHandler
	// Metrics is mounted only when set.
	Metrics fasthttp.RequestHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	api := r.Group("/api/v1")

	api.POST("/generate", authMiddleware(handlers.Generate.Generate))
	api.GET("/candidates", authMiddleware(handlers.Generate.GetCandidates))
	api.DELETE("/candidates", authMiddleware(handlers.Generate.DiscardCandidates))
	api.POST("/candidates/save", authMiddleware(handlers.Generate.SaveCandidates))

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTasks))
	api.POST("/tasks/reload", authMiddleware(handlers.Task.ReloadTasks))
	api.GET("/tasks/progress", authMiddleware(handlers.Task.GetProgress))
	api.POST("/tasks/{id}/toggle", authMiddleware(handlers.Task.ToggleTask))
	api.PUT("/tasks/{id}", authMiddleware(handlers.Task.RenameTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	return r
}
