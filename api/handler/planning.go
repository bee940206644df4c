package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/planner/api/transport"
	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
	"github.com/fastygo/planner/pkg/httpcontext"
	"github.com/fastygo/planner/usecase/ordering"
	"github.com/fastygo/planner/usecase/recurrence"
	"github.com/fastygo/planner/usecase/rollover"
)

// PlanningHandler exposes the scheduling operations: moves, recurrence and rollover.
type PlanningHandler struct {
	baseHandler
	ordering   *ordering.UseCase
	recurrence *recurrence.UseCase
	rollover   *rollover.UseCase
}

func NewPlanningHandler(
	ord *ordering.UseCase,
	rec *recurrence.UseCase,
	roll *rollover.UseCase,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *PlanningHandler {
	return &PlanningHandler{
		baseHandler: newBaseHandler(adapter, logger),
		ordering:    ord,
		recurrence:  rec,
		rollover:    roll,
	}
}

// @Summary Move a task to a slot position
// @Tags planning
// @Router /api/tasks/move [post]
func (h *PlanningHandler) MoveTask(ctx *fasthttp.RequestCtx) {
	var req transport.MoveTaskRequest
	if !h.decode(ctx, &req, false) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	affected, err := h.ordering.Move(stdCtx, ordering.MoveCommand{
		TaskID:      req.TaskID,
		NewDate:     req.NewDate.Value,
		NewCategory: req.NewCategory,
		NewIndex:    req.NewIndex,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskListResponse(affected))
}

// @Summary Set a recurrence rule and generate instances
// @Tags planning
// @Router /api/tasks/{id}/recurrence [post]
func (h *PlanningHandler) SetRecurrence(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.RecurrenceRuleRequest
	if !h.decode(ctx, &req, false) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	parent, created, err := h.recurrence.Set(stdCtx, id, req.Rule())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	out := append([]domain.Task{*parent}, created...)
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskListResponse(out))
}

// @Summary Clear a recurrence rule and its pending instances
// @Tags planning
// @Router /api/tasks/{id}/recurrence [delete]
func (h *PlanningHandler) ClearRecurrence(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.recurrence.Clear(stdCtx, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Move stale tasks to today
// @Tags planning
// @Router /api/tasks/rollover [post]
func (h *PlanningHandler) Rollover(ctx *fasthttp.RequestCtx) {
	var req transport.RolloverRequest
	if !h.decode(ctx, &req, true) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	today := h.rollover.Today()
	if req.Today.Value != nil {
		today = *req.Today.Value
	}

	count, err := h.rollover.Run(stdCtx, today)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.RolloverResponse{
		RolledOver: count,
		Today:      calendar.Format(today),
	})
}
