package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mlserved/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ServerInfo() types.InfoResponse
	List() []types.ServiceInfo
	Info(name string) (types.ServiceInfo, error)
	Create(ctx context.Context, name string, req types.ServiceCreateRequest) (types.ServiceInfo, error)
	Delete(name, clear string) error
	Train(ctx context.Context, req types.TrainRequest) (types.TrainResponse, error)
	TrainStatus(name, job string, history bool) (types.TrainResponse, error)
	TrainStop(ctx context.Context, name, job string) (types.TrainJobInfo, error)
	Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error)
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)
	if corsEnabled {
		origins, methods, headers := corsDefaults()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: methods,
			AllowedHeaders: headers,
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Get("/info", h.info)
	r.Route("/services", func(r chi.Router) {
		r.Get("/", h.listServices)
		r.Put("/{name}", h.createService)
		r.Get("/{name}", h.getService)
		r.Delete("/{name}", h.deleteService)
	})
	r.Post("/train", h.train)
	r.Get("/train", h.trainStatus)
	r.Delete("/train", h.trainStop)
	r.Post("/predict", h.predict)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("shutting down"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

type handlers struct{ svc Service }

// decodeJSON enforces the content type and body size and decodes into v.
// It writes the error response itself and reports whether decoding worked.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// info godoc
// @Summary      Server information
// @Description  Build id, registered backends and every service.
// @Tags         server
// @Produce      json
// @Success      200  {object}  types.InfoResponse
// @Router       /info [get]
func (h *handlers) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ServerInfo())
}

// listServices godoc
// @Summary  List services
// @Tags     services
// @Produce  json
// @Success  200  {object}  map[string][]types.ServiceInfo
// @Router   /services [get]
func (h *handlers) listServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"services": h.svc.List()})
}

// createService godoc
// @Summary      Create a service
// @Description  Builds the backend named by mllib on the given model repository and initializes it.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        name  path      string                      true  "Service name"
// @Param        body  body      types.ServiceCreateRequest  true  "Service definition"
// @Success      201   {object}  types.ServiceInfo
// @Failure      400   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Router       /services/{name} [put]
func (h *handlers) createService(w http.ResponseWriter, r *http.Request) {
	var req types.ServiceCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	info, err := h.svc.Create(ctx, chi.URLParam(r, "name"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// getService godoc
// @Summary  Describe a service
// @Tags     services
// @Produce  json
// @Param    name  path      string  true  "Service name"
// @Success  200   {object}  types.ServiceInfo
// @Failure  404   {object}  types.ErrorResponse
// @Router   /services/{name} [get]
func (h *handlers) getService(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Info(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// deleteService godoc
// @Summary      Delete a service
// @Description  clear=lib removes backend artifacts, clear=full wipes the model repository.
// @Tags         services
// @Produce      json
// @Param        name   path   string  true   "Service name"
// @Param        clear  query  string  false  "mem, lib or full"
// @Success      200    {object}  map[string]any
// @Failure      400    {object}  types.ErrorResponse
// @Failure      404    {object}  types.ErrorResponse
// @Router       /services/{name} [delete]
func (h *handlers) deleteService(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	clear := r.URL.Query().Get("clear")
	if err := h.svc.Delete(name, clear); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"service": name, "deleted": true, "clear": clear})
}

// train godoc
// @Summary      Start training
// @Description  Async requests (default) return 202 with a job id; sync requests return the backend output.
// @Tags         train
// @Accept       json
// @Produce      json
// @Param        body  body      types.TrainRequest  true  "Training request"
// @Success      200   {object}  types.TrainResponse
// @Success      202   {object}  types.TrainResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Router       /train [post]
func (h *handlers) train(w http.ResponseWriter, r *http.Request) {
	var req types.TrainRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Service) == "" {
		writeJSONError(w, http.StatusBadRequest, "service is required")
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := h.svc.Train(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if req.Async == nil || *req.Async {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}

// trainStatus godoc
// @Summary  Training job status
// @Tags     train
// @Produce  json
// @Param    service  query     string  true   "Service name"
// @Param    job      query     string  false  "Job id (latest when empty)"
// @Param    history  query     bool    false  "Include per-iteration measures"
// @Success  200      {object}  types.TrainResponse
// @Failure  404      {object}  types.ErrorResponse
// @Router   /train [get]
func (h *handlers) trainStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	service := q.Get("service")
	if service == "" {
		writeJSONError(w, http.StatusBadRequest, "service is required")
		return
	}
	history, _ := strconv.ParseBool(q.Get("history"))
	resp, err := h.svc.TrainStatus(service, q.Get("job"), history)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// trainStop godoc
// @Summary  Stop a training job
// @Tags     train
// @Produce  json
// @Param    service  query     string  true   "Service name"
// @Param    job      query     string  false  "Job id (running job when empty)"
// @Success  200      {object}  types.TrainJobInfo
// @Failure  404      {object}  types.ErrorResponse
// @Router   /train [delete]
func (h *handlers) trainStop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	service := q.Get("service")
	if service == "" {
		writeJSONError(w, http.StatusBadRequest, "service is required")
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	info, err := h.svc.TrainStop(ctx, service, q.Get("job"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// predict godoc
// @Summary      Predict
// @Description  Offline services answer 409 while they train.
// @Tags         predict
// @Accept       json
// @Produce      json
// @Param        body  body      types.PredictRequest  true  "Prediction request"
// @Success      200   {object}  types.PredictResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Router       /predict [post]
func (h *handlers) predict(w http.ResponseWriter, r *http.Request) {
	var req types.PredictRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Service) == "" {
		writeJSONError(w, http.StatusBadRequest, "service is required")
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := h.svc.Predict(ctx, req)
	if err != nil {
		// client went away or the server is shutting down
		if r.Context().Err() != nil {
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
