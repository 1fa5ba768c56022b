package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/learnpath/api/transport"
	"github.com/fastygo/learnpath/internal/infrastructure/monitor"
	"github.com/fastygo/learnpath/pkg/httpcontext"
)

// StatusSource reports dependency health.
type StatusSource interface {
	GetStatus() monitor.Status
}

// SessionCounter reports how many user sessions are loaded.
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	baseHandler
	monitor  StatusSource
	sessions SessionCounter
}

func NewHealthHandler(mon StatusSource, sessions SessionCounter, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		sessions:    sessions,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]any{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services":   status.Dependencies,
	}
	if h.sessions != nil {
		payload["sessions"] = h.sessions.Len()
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
