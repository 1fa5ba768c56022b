package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/learnpath/api/handler"
	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/internal/infrastructure/monitor"
	"github.com/fastygo/learnpath/internal/metrics"
	"github.com/fastygo/learnpath/internal/middleware"
	"github.com/fastygo/learnpath/internal/router"
	"github.com/fastygo/learnpath/pkg/httpcontext"
	boltRepo "github.com/fastygo/learnpath/repository/bolt"
	redisRepo "github.com/fastygo/learnpath/repository/redis"
	"github.com/fastygo/learnpath/usecase/generate"
	taskUC "github.com/fastygo/learnpath/usecase/task"
)

const secret = "handler-secret"

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	return s.text, s.err
}

type fixedStatus struct{ status monitor.Status }

func (f fixedStatus) GetStatus() monitor.Status { return f.status }

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

type server struct {
	handler fasthttp.RequestHandler
	store   *boltRepo.Store
	gen     *stubGenerator
}

func newServer(t *testing.T, status monitor.Status) *server {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	candidates := redisRepo.NewCandidateRepository(client, time.Hour)

	store, err := boltRepo.Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	sessions, err := taskUC.NewService(taskUC.Dependencies{Tasks: store, Recorder: recorder}, 16)
	require.NoError(t, err)
	gen := &stubGenerator{text: "1. Read the docs\n2. Write a program\n3. Ship it"}
	uc := generate.New(gen, candidates, sessions, recorder, nil)

	adapter := httpcontext.NewAdapter(5 * time.Second)
	r := router.New(router.Handlers{
		Generate: apiHandler.NewGenerateHandler(uc, adapter, nil),
		Task:     apiHandler.NewTaskHandler(sessions, adapter, nil),
		Health:   apiHandler.NewHealthHandler(fixedStatus{status}, sessions, adapter, nil),
		Metrics:  apiHandler.NewMetricsHandler(reg),
	}, middleware.JWTAuth(secret, "", nil))

	return &server{handler: r.Handler, store: store, gen: gen}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID}).
		SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (s *server) do(t *testing.T, method, uri, userID, body string) (int, envelope) {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	s.handler(&ctx)

	var env envelope
	if raw := ctx.Response.Body(); len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return ctx.Response.StatusCode(), env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type taskList struct {
	Tasks    []domain.Task   `json:"tasks"`
	Progress domain.Progress `json:"progress"`
}

func TestTaskRoutes(t *testing.T) {
	t.Run("Should require a signed-in user", func(t *testing.T) {
		s := newServer(t, monitor.Status{})
		status, env := s.do(t, http.MethodGet, "/api/v1/tasks", "", "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", env.Code)
	})

	t.Run("Should create, toggle, rename and delete tasks", func(t *testing.T) {
		s := newServer(t, monitor.Status{})

		status, env := s.do(t, http.MethodPost, "/api/v1/tasks", "u1", `{"titles":["Do A","Do B"],"category":"Go"}`)
		require.Equal(t, http.StatusCreated, status, env.Error)
		created := decode[[]domain.Task](t, env.Data)
		require.Len(t, created, 2)
		id := created[0].ID

		status, env = s.do(t, http.MethodPost, "/api/v1/tasks/"+id+"/toggle", "u1", "")
		require.Equal(t, http.StatusOK, status, env.Error)
		assert.True(t, decode[domain.Task](t, env.Data).Completed)

		status, env = s.do(t, http.MethodGet, "/api/v1/tasks?filter=completed", "u1", "")
		require.Equal(t, http.StatusOK, status)
		list := decode[taskList](t, env.Data)
		require.Len(t, list.Tasks, 1)
		assert.Equal(t, id, list.Tasks[0].ID)
		assert.Equal(t, domain.Progress{CompletedCount: 1, Total: 2, Percent: 50}, list.Progress)

		status, env = s.do(t, http.MethodPut, "/api/v1/tasks/"+id, "u1", `{"title":"Do A well"}`)
		require.Equal(t, http.StatusOK, status, env.Error)
		assert.Equal(t, "Do A well", decode[domain.Task](t, env.Data).Title)

		status, _ = s.do(t, http.MethodDelete, "/api/v1/tasks/"+id, "u1", "")
		assert.Equal(t, http.StatusNoContent, status)

		status, env = s.do(t, http.MethodGet, "/api/v1/tasks/progress", "u1", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, domain.Progress{CompletedCount: 0, Total: 1, Percent: 0}, decode[domain.Progress](t, env.Data))
	})

	t.Run("Should keep users apart", func(t *testing.T) {
		s := newServer(t, monitor.Status{})
		_, env := s.do(t, http.MethodPost, "/api/v1/tasks", "u1", `{"titles":["Mine"]}`)
		id := decode[[]domain.Task](t, env.Data)[0].ID

		status, env := s.do(t, http.MethodPost, "/api/v1/tasks/"+id+"/toggle", "u2", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", env.Code)

		status, env = s.do(t, http.MethodDelete, "/api/v1/tasks/"+id, "u2", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", env.Code)

		status, env = s.do(t, http.MethodDelete, "/api/v1/tasks/not-a-uuid", "u1", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", env.Code)

		status, env = s.do(t, http.MethodGet, "/api/v1/tasks", "u2", "")
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, decode[taskList](t, env.Data).Tasks)
	})

	t.Run("Should reject bad input", func(t *testing.T) {
		s := newServer(t, monitor.Status{})

		status, env := s.do(t, http.MethodGet, "/api/v1/tasks?filter=someday", "u1", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID", env.Code)

		status, env = s.do(t, http.MethodPut, "/api/v1/tasks/any", "u1", `{"title":""}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID", env.Code)

		status, _ = s.do(t, http.MethodPost, "/api/v1/tasks", "u1", `not json`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Should report store failures as bad gateway", func(t *testing.T) {
		s := newServer(t, monitor.Status{})
		_, env := s.do(t, http.MethodPost, "/api/v1/tasks", "u1", `{"titles":["Do A"]}`)
		id := decode[[]domain.Task](t, env.Data)[0].ID
		require.NoError(t, s.store.Close())

		status, env := s.do(t, http.MethodPost, "/api/v1/tasks/"+id+"/toggle", "u1", "")
		assert.Equal(t, http.StatusBadGateway, status)
		assert.Equal(t, "UPDATE_FAILED", env.Code)
		assert.Equal(t, domain.MsgUpdateFailed, env.Error)
	})
}

func TestGenerateRoutes(t *testing.T) {
	t.Run("Should generate, save a subset and keep the rest pending", func(t *testing.T) {
		s := newServer(t, monitor.Status{})

		status, env := s.do(t, http.MethodPost, "/api/v1/generate", "u1", `{"topic":"Go"}`)
		require.Equal(t, http.StatusCreated, status, env.Error)
		list := decode[domain.CandidateList](t, env.Data)
		require.Len(t, list.Tasks, 5)
		assert.Equal(t, "Read the docs", list.Tasks[0])

		status, env = s.do(t, http.MethodPost, "/api/v1/candidates/save", "u1", `{"titles":["Read the docs"]}`)
		require.Equal(t, http.StatusCreated, status, env.Error)
		saved := decode[[]domain.Task](t, env.Data)
		require.Len(t, saved, 1)
		assert.Equal(t, "Go", saved[0].Category)

		status, env = s.do(t, http.MethodGet, "/api/v1/candidates", "u1", "")
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, decode[domain.CandidateList](t, env.Data).Tasks, 4)

		status, _ = s.do(t, http.MethodDelete, "/api/v1/candidates", "u1", "")
		assert.Equal(t, http.StatusNoContent, status)

		status, env = s.do(t, http.MethodGet, "/api/v1/candidates", "u1", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", env.Code)
	})

	t.Run("Should ask for a topic", func(t *testing.T) {
		s := newServer(t, monitor.Status{})
		status, env := s.do(t, http.MethodPost, "/api/v1/generate", "u1", `{"topic":"   "}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "please enter a topic", env.Error)
	})

	t.Run("Should surface model failures with a retry message", func(t *testing.T) {
		s := newServer(t, monitor.Status{})
		s.gen.text = "   \n  "

		status, env := s.do(t, http.MethodPost, "/api/v1/generate", "u1", `{"topic":"Go"}`)
		assert.Equal(t, http.StatusBadGateway, status)
		assert.Equal(t, "GENERATION_FAILED", env.Code)
		assert.Equal(t, domain.MsgGenerationFailed, env.Error)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	t.Run("Should report healthy dependencies", func(t *testing.T) {
		s := newServer(t, monitor.Status{Dependencies: map[string]bool{"store": true, "redis": true}})
		status, env := s.do(t, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "success", env.Status)
	})

	t.Run("Should report degraded dependencies", func(t *testing.T) {
		s := newServer(t, monitor.Status{Dependencies: map[string]bool{"store": true, "redis": false}})
		status, env := s.do(t, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "DEGRADED", env.Code)
	})

	t.Run("Should expose store counters", func(t *testing.T) {
		s := newServer(t, monitor.Status{})
		s.do(t, http.MethodPost, "/api/v1/tasks", "u1", `{"titles":["Do A"]}`)

		var req fasthttp.Request
		req.SetRequestURI("/metrics")
		var ctx fasthttp.RequestCtx
		ctx.Init(&req, nil, nil)
		s.handler(&ctx)

		assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), `learnpath_store_operations_total{operation="create",outcome="ok"} 1`)
	})
}
