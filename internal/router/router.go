package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/planner/api/handler"
	"github.com/fastygo/planner/internal/middleware"
)

type Handlers struct {
	Task     *apiHandler.TaskHandler
	Planning *apiHandler.PlanningHandler
	Health   *apiHandler.HealthHandler
}

// New registers every route. auth guards the /api routes; outer wraps the
// whole router (CORS, access log).
func New(handlers Handlers, auth middleware.Middleware, outer ...middleware.Middleware) fasthttp.RequestHandler {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/api/tasks", auth(handlers.Task.ListTasks))
	r.POST("/api/tasks", auth(handlers.Task.CreateTask))
	r.POST("/api/tasks/move", auth(handlers.Planning.MoveTask))
	r.POST("/api/tasks/rollover", auth(handlers.Planning.Rollover))
	r.PATCH("/api/tasks/{id}", auth(handlers.Task.UpdateTask))
	r.DELETE("/api/tasks/{id}", auth(handlers.Task.DeleteTask))
	r.DELETE("/api/tasks/{id}/future", auth(handlers.Task.DeleteTaskAndFuture))
	r.GET("/api/tasks/{id}/events", auth(handlers.Task.ListEvents))
	r.POST("/api/tasks/{id}/subtasks", auth(handlers.Task.AddSubtask))
	r.POST("/api/tasks/{id}/recurrence", auth(handlers.Planning.SetRecurrence))
	r.DELETE("/api/tasks/{id}/recurrence", auth(handlers.Planning.ClearRecurrence))

	r.PATCH("/api/subtasks/{id}", auth(handlers.Task.UpdateSubtask))
	r.DELETE("/api/subtasks/{id}", auth(handlers.Task.DeleteSubtask))

	h := r.Handler
	for i := len(outer) - 1; i >= 0; i-- {
		h = outer[i](h)
	}
	return h
}
