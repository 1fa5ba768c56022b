package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/learnpath/api/transport"
	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/pkg/httpcontext"
	appLogger "github.com/fastygo/learnpath/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	stdCtx, cancel := context.WithCancel(context.Background())
	if userID := httpcontext.UserID(ctx); userID != "" {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}
	return stdCtx, cancel
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data any) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondNoContent(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusNoContent)
}

// respondError writes the user-facing message of err; the full chain goes to the log.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	status, code := mapError(err)
	log := appLogger.WithRequestID(stdCtx, h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", string(ctx.Path())), zap.String("code", code), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("path", string(ctx.Path())), zap.String("code", code), zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, publicMessage(err), nil))
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound), errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	}
	switch code := domain.CodeOf(err); code {
	case domain.ErrCodeGeneration, domain.ErrCodeEmptyGeneration,
		domain.ErrCodeFetch, domain.ErrCodeSave, domain.ErrCodeUpdate, domain.ErrCodeDelete:
		return http.StatusBadGateway, string(code)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

func publicMessage(err error) string {
	if errors.Is(err, domain.ErrTaskNotFound) {
		return domain.ErrTaskNotFound.Message
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return "internal error"
}

func pathID(ctx *fasthttp.RequestCtx) (string, error) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		return "", domain.NewError(domain.ErrCodeInvalid, "missing task id")
	}
	return id, nil
}
