package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/learnpath/api/transport"
	"github.com/fastygo/learnpath/pkg/httpcontext"
	"github.com/fastygo/learnpath/usecase/generate"
)

type GenerateHandler struct {
	baseHandler
	uc *generate.UseCase
}

func NewGenerateHandler(uc *generate.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Generate candidate tasks for a topic
// @Tags generate
// @Router /api/v1/generate [post]
func (h *GenerateHandler) Generate(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.GenerateRequest
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	list, err := h.uc.Generate(stdCtx, httpcontext.UserID(ctx), req.Topic)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, list)
}

// @Summary Pending candidate tasks
// @Tags generate
// @Router /api/v1/candidates [get]
func (h *GenerateHandler) GetCandidates(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	list, err := h.uc.Candidates(stdCtx, httpcontext.UserID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, list)
}

// @Summary Discard candidate tasks
// @Tags generate
// @Router /api/v1/candidates [delete]
func (h *GenerateHandler) DiscardCandidates(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Discard(stdCtx, httpcontext.UserID(ctx)); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary Save candidate tasks
// @Tags generate
// @Router /api/v1/candidates/save [post]
func (h *GenerateHandler) SaveCandidates(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.SaveCandidatesRequest
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	created, err := h.uc.Save(stdCtx, httpcontext.UserID(ctx), req.Titles, req.All)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}
