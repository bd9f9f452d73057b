// Package api exposes the debt and reminder operations over a local JSON
// HTTP interface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/julianstephens/finlit/internal/logger"
)

// NewRouter registers every route on a chi mux.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.handleHealth)

	r.Route("/debts", func(r chi.Router) {
		r.Post("/", h.handleAddDebt)
		r.Get("/", h.handleListDebts)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetDebt)
			r.Patch("/", h.handleUpdateDebt)
			r.Delete("/", h.handleDeleteDebt)
			r.Post("/schedule", h.handleGenerateSchedule)
			r.Get("/schedule", h.handleListSchedule)
		})
	})

	r.Post("/schedules/{id}/confirm", h.handleConfirm)

	r.Route("/reminders", func(r chi.Router) {
		r.Post("/", h.handleCreateReminder)
		r.Get("/", h.handleListReminders)
		r.Get("/due", h.handleDueReminders)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetReminder)
			r.Patch("/", h.handleUpdateReminder)
			r.Delete("/", h.handleDeleteReminder)
			r.Post("/snooze", h.handleSnooze)
			r.Post("/dismiss", h.handleDismiss)
			r.Post("/sent", h.handleMarkSent)
			r.Get("/logs", h.handleReminderLogs)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
