// Package httpapi exposes the MinuteMinds JSON API over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/and161185/minuteminds/internal/capability"
	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/service"
)

// Version is reported by the root endpoint.
const Version = "2.0"

// Services bundles everything the handlers call.
type Services struct {
	Auth        service.AuthService
	Pipeline    service.PipelineService
	Enrich      service.EnrichService
	Transcripts service.TranscriptService
	Admin       service.AdminService
	Translate   service.TranslateService
}

type Router struct {
	svc            Services
	log            *zap.Logger
	maxUploadBytes int64
}

// NewRouter builds the HTTP handler. maxUploadBytes caps /transcribe bodies; zero disables the cap.
func NewRouter(svc Services, log *zap.Logger, maxUploadBytes int64) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	rt := &Router{svc: svc, log: log, maxUploadBytes: maxUploadBytes}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         600,
	}))
	mux.Use(middleware.RequestID)
	mux.Use(rt.logRequests)
	mux.Use(rt.recoverPanics)

	mux.Get("/", rt.handleHome)
	mux.Post("/register", rt.handleRegister)
	mux.Post("/login", rt.handleLogin)
	mux.Post("/verify-token", rt.handleVerifyToken)

	mux.Group(func(pr chi.Router) {
		pr.Use(rt.requireUser)
		pr.Post("/transcribe", rt.handleTranscribe)
		pr.Post("/translate", rt.handleTranslate)
		pr.Get("/transcriptions", rt.handleListTranscriptions)
		pr.Get("/transcriptions/search", rt.handleSearch)
		pr.Post("/transcriptions/{id}/summarize", rt.handleSummarize)
		pr.Post("/transcriptions/{id}/extract-items", rt.handleExtractItems)
		pr.Post("/transcriptions/{id}/key-items", rt.handleReplaceKeyItems)
		pr.Get("/transcriptions/{id}/export", rt.handleExport)
	})

	mux.Route("/admin", func(ar chi.Router) {
		ar.Use(rt.requireAdmin)
		ar.Get("/users", rt.handleListUsers)
		ar.Delete("/users/{id}", rt.handleDeleteUser)
		ar.Get("/logs", rt.handleListLogs)
		ar.Get("/analytics", rt.handleAnalytics)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{errs.ErrValidation, http.StatusBadRequest},
	{errs.ErrUnauthorized, http.StatusUnauthorized},
	{errs.ErrForbidden, http.StatusForbidden},
	{errs.ErrNotFound, http.StatusNotFound},
	{errs.ErrAlreadyExists, http.StatusConflict},
	{errs.ErrRateLimited, http.StatusTooManyRequests},
	{capability.ErrUnavailable, http.StatusServiceUnavailable},
}

// statusOf maps err to an HTTP status and the message shown to the client.
// Sentinel prefixes are stripped; unknown errors are 500 with their text verbatim.
func statusOf(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			msg := strings.TrimPrefix(err.Error(), e.err.Error()+": ")
			if errors.Is(err, errs.ErrRateLimited) {
				msg = "too many failed login attempts, try again later"
			}
			return e.status, msg
		}
	}
	return http.StatusInternalServerError, err.Error()
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		rt.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// notFoundAs names the missing entity when err is a bare not-found.
func notFoundAs(err error, what string) error {
	if err == errs.ErrNotFound {
		return fmt.Errorf("%w: %s not found", errs.ErrNotFound, what)
	}
	return err
}

// decodeJSON reads a JSON body into v; an empty or malformed body is a validation error.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json body", errs.ErrValidation)
	}
	return nil
}

func (rt *Router) handleHome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "MinuteMinds backend is running!",
		"features": []string{
			"User Registration & Login",
			"Audio Transcription with Noise Filtering",
			"Automatic Summarization",
			"Keyword Search",
			"PDF/DOCX Export",
			"Admin Dashboard",
			"System Logs",
			"Analytics",
		},
		"version": Version,
	})
}
