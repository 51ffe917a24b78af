// Package server exposes the intake engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/smart-intake/internal/intake"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Generator is the slice of *intake.Generator the handlers call.
type Generator interface {
	Generate(ctx context.Context, req intake.Request, opts intake.Options) (*intake.Response, error)
}

// Options configures the router.
type Options struct {
	// Enhanced is the default strategy; the "enhanced" query parameter
	// overrides it per request.
	Enhanced       bool
	AllowedOrigins []string
	// Version reports the loaded expectations version for /health. Optional.
	Version func() string
}

// New builds the HTTP handler.
func New(gen Generator, opts Options) http.Handler {
	h := &handler{gen: gen, opts: opts}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/intake/questions", h.questions)
	return r
}

type handler struct {
	gen  Generator
	opts Options
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]string{"status": "ok"}
	if h.opts.Version != nil {
		if v := h.opts.Version(); v != "" {
			body["expectations_version"] = v
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handler) questions(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("server: questions handler panic",
				zap.Any("panic", rec),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
			writeJSON(w, http.StatusInternalServerError, intake.FailureResponse())
		}
	}()

	opts := intake.Options{Enhanced: h.opts.Enhanced}
	if raw := r.URL.Query().Get("enhanced"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "enhanced must be a boolean")
			return
		}
		opts.Enhanced = v
	}

	var req intake.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.gen.Generate(r.Context(), req, opts)
	switch {
	case errors.Is(err, intake.ErrValidation):
		msg := err.Error()
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			msg = strings.Join(verr.Fields, "; ")
		}
		writeError(w, http.StatusBadRequest, msg)
	case err != nil:
		zap.L().Error("server: generate questions",
			zap.String("intelligence_id", req.IntelligenceID),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, intake.FailureResponse())
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	resp := intake.FailureResponse()
	resp.Error = msg
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
