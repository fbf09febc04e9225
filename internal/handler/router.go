package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/efreitasn/apife/internal/domain"
	"github.com/efreitasn/apife/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// requestIDHeader carries the request ID in both directions.
const requestIDHeader = "X-Request-Id"

// NewRouter creates a chi router with all routes registered, request IDs,
// request logging, body limits and Content-Type validation middleware.
func NewRouter(
	deploymentSvc *service.DeploymentService,
	predictionSvc *service.PredictionService,
	logger *slog.Logger,
	maxBodyBytes int64,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestID)
	r.Use(requestLogging(logger))
	r.Use(limitBody(maxBodyBytes))
	r.Use(contentTypeJSON)

	// Create handlers.
	deploymentH := NewDeploymentHandler(deploymentSvc)
	predictionH := NewPredictionHandler(predictionSvc, logger)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Deployment routes.
	r.Post("/deployments", deploymentH.Register)
	r.Get("/deployments", deploymentH.List)
	r.Get("/deployments/{name}", deploymentH.Get)
	r.Delete("/deployments/{name}", deploymentH.Delete)
	r.Put("/deployments/{name}/status", deploymentH.SetStatus)
	r.Put("/deployments/{name}/lease", deploymentH.RenewLease)

	// Gateway routes.
	r.Route("/api/v0.1", func(r chi.Router) {
		r.Get("/errors", ListErrorCategories)
		r.Post("/deployments/{name}/predictions", predictionH.Predict)
		r.Post("/deployments/{name}/feedback", predictionH.Feedback)
	})

	return r
}

// requestID is middleware that reuses the caller's X-Request-Id or
// generates one, echoes it on the response and stores it in the context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(service.WithRequestID(r.Context(), id)))
	})
}

// requestLogging returns middleware that logs each request's method, path,
// status code, duration and request ID using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			id, _ := service.RequestIDFromContext(r.Context())
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", id),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// limitBody returns middleware that caps request bodies at maxBytes.
func limitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT, and
// PATCH requests. If the Content-Type header doesn't start with
// "application/json", it responds with an InvalidJSON error before the
// handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteAPIError(w, domain.WrapAPIError(domain.InvalidJSON,
					"Content-Type must be application/json", nil))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
