package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/learnpath/api/transport"
	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/pkg/httpcontext"
	taskUC "github.com/fastygo/learnpath/usecase/task"
)

type TaskHandler struct {
	baseHandler
	sessions *taskUC.Service
}

func NewTaskHandler(sessions *taskUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		sessions:    sessions,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	filter, err := domain.ParseFilter(string(ctx.QueryArgs().Peek("filter")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	session, err := h.sessions.Session(stdCtx, httpcontext.UserID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskList(session.FilteredView(filter), session.Progress()))
}

// @Summary Reload tasks from the store
// @Tags tasks
// @Router /api/v1/tasks/reload [post]
func (h *TaskHandler) ReloadTasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.sessions.Session(stdCtx, httpcontext.UserID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	tasks, err := session.Load(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskList(tasks, session.Progress()))
}

// @Summary Progress over all tasks
// @Tags tasks
// @Router /api/v1/tasks/progress [get]
func (h *TaskHandler) GetProgress(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.sessions.Session(stdCtx, httpcontext.UserID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, session.Progress())
}

// @Summary Create tasks
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.CreateTasksRequest
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	session, err := h.sessions.Session(stdCtx, httpcontext.UserID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	created, err := session.Create(stdCtx, req.Titles, req.Category)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Toggle task completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := pathID(ctx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	session, err := h.sessions.Session(stdCtx, httpcontext.UserID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	task, err := session.ToggleCompletion(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Rename task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) RenameTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := pathID(ctx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	var req transport.RenameTaskRequest
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	session, err := h.sessions.Session(stdCtx, httpcontext.UserID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	task, err := session.Rename(stdCtx, id, req.Title)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := pathID(ctx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	session, err := h.sessions.Session(stdCtx, httpcontext.UserID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if err := session.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}
