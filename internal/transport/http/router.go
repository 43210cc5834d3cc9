package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"machsafe/internal/platform/middleware"
)

// Handler is the thin HTTP layer. It delegates to the domain services and
// keeps transport concerns (decoding, status mapping) out of them.
type Handler struct {
	alerts        AlertsService
	auditQuery    AuditQueryService
	recorder      AuditRecorder
	notifications NotificationService
	health        []HealthCheck
	jwtValidator  middleware.JWTValidator
	logger        *slog.Logger
}

// HealthCheck reports the liveness of one dependency for /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func NewHandler(
	alerts AlertsService,
	auditQuery AuditQueryService,
	recorder AuditRecorder,
	notifications NotificationService,
	jwtValidator middleware.JWTValidator,
	logger *slog.Logger,
	health ...HealthCheck,
) *Handler {
	return &Handler{
		alerts:        alerts,
		auditQuery:    auditQuery,
		recorder:      recorder,
		notifications: notifications,
		health:        health,
		jwtValidator:  jwtValidator,
		logger:        logger,
	}
}

// NewRouter wires all endpoints. Everything under /api/v1 requires a valid
// bearer token; /healthz and /metrics stay open for probes and scrapers.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		api.Get("/alerts", h.handleGetAllAlerts)

		api.Route("/audit", func(audit chi.Router) {
			audit.Post("/events", h.handleRecordAction)
			audit.Get("/events", h.handleAuditList)
			audit.Get("/events/stats", h.handleAuditStats)
			audit.Get("/entities/{entityType}/{entityID}", h.handleAuditByEntity)
			audit.Get("/actors/{actorID}", h.handleAuditByActor)
		})

		api.Route("/notifications", func(notif chi.Router) {
			notif.Get("/", h.handleNotificationList)
			notif.Post("/", h.handleNotificationCreate)
			notif.Get("/unread", h.handleNotificationUnread)
			notif.Get("/unread/count", h.handleNotificationUnreadCount)
			notif.Get("/stats", h.handleNotificationStats)
			notif.Post("/read-all", h.handleNotificationMarkAllRead)
			notif.Delete("/read", h.handleNotificationDeleteAllRead)
			notif.Post("/{id}/read", h.handleNotificationMarkRead)
			notif.Delete("/{id}", h.handleNotificationDelete)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	checks := make(map[string]string, len(h.health))
	for _, hc := range h.health {
		if err := hc.Check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[hc.Name] = err.Error()
			continue
		}
		checks[hc.Name] = "ok"
	}
	writeJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": checks})
}
