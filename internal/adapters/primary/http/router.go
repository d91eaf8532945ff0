package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/helpdesk-portal/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-portal/internal/auth"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
)

// Handlers groups the primary adapters mounted by NewRouter.
type Handlers struct {
	Auth       *AuthHandler
	Me         *MeHandler
	Org        *OrgHandler
	Ticket     *TicketHandler
	Attachment *AttachmentHandler
	Inventory  *InventoryHandler
	Report     *ReportHandler
	Health     *HealthHandler
	WebSocket  http.Handler
}

// RouterConfig holds the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	Tokens         *auth.TokenManager
	AllowedOrigins []string
	// Rate limiters are optional; nil disables limiting.
	GeneralLimiter *mw.RateLimiter
	AuthLimiter    *mw.RateLimiter
	Logger         *slog.Logger
}

// NewRouter builds the chi router serving the REST API, the realtime
// endpoint and the health probes.
func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(cfg.Logger))
	r.Use(mw.RecoveryLogger(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	if cfg.GeneralLimiter != nil {
		r.Use(cfg.GeneralLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	if h.Health != nil {
		h.Health.RegisterRoutes(r)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Middleware)
			}
			r.Route("/auth", h.Auth.RegisterRoutes)
		})

		// Authentication is handled inside the handler.
		if h.WebSocket != nil {
			r.Get("/ws", h.WebSocket.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(cfg.Tokens))

			r.Route("/me", h.Me.RegisterRoutes)
			r.Route("/tickets", h.Ticket.RegisterRoutes)
			r.Route("/attachments", h.Attachment.RegisterRoutes)
			h.Org.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(domain.RoleSuperAdmin, domain.RoleDepartmentAdmin))
				r.Route("/assets", h.Inventory.RegisterRoutes)
				r.Route("/reports", h.Report.RegisterRoutes)
			})
		})
	})

	return r
}
