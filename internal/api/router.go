// Package api wires the HTTP surface: routing, middleware, request
// decoding, and the response envelopes.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foyerhq/foyer/internal/auth"
	"github.com/foyerhq/foyer/internal/greeting"
	"github.com/foyerhq/foyer/internal/identity"
	"github.com/foyerhq/foyer/internal/metrics"
	"github.com/foyerhq/foyer/internal/org"
	"github.com/foyerhq/foyer/internal/user"
)

// OrgStore is the organisation persistence surface the handlers need.
type OrgStore interface {
	CreateWithMember(ctx context.Context, in org.CreateOrganisationInput, creatorID string) (*org.Organisation, error)
	GetForMember(ctx context.Context, orgID, userID string) (*org.Organisation, error)
	ListByUser(ctx context.Context, userID string) ([]org.Organisation, error)
	IsMember(ctx context.Context, orgID, userID string) (bool, error)
	AddMember(ctx context.Context, orgID, userID string) error
	SharesOrganisation(ctx context.Context, userA, userB string) (bool, error)
}

// UserDirectory looks up users for the record endpoint and membership
// grants.
type UserDirectory interface {
	GetByUserID(ctx context.Context, userID string) (*user.User, error)
}

// Greeter produces the visitor greeting from a client IP.
type Greeter interface {
	Greet(ctx context.Context, ip, visitorName string) (*greeting.Greeting, error)
}

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Logger         *slog.Logger
	Identity       *identity.Service
	Users          UserDirectory
	Orgs           OrgStore
	Greeting       Greeter
	Metrics        *metrics.Metrics
	DB             *pgxpool.Pool
	AllowedOrigins []string
}

type handlers struct {
	logger   *slog.Logger
	identity *identity.Service
	users    UserDirectory
	orgs     OrgStore
	greeting Greeter
	metrics  *metrics.Metrics
	db       *pgxpool.Pool
}

// NewRouter builds the chi router with the full middleware stack and all
// routes mounted.
func NewRouter(deps RouterDeps) http.Handler {
	h := &handlers{
		logger:   deps.Logger,
		identity: deps.Identity,
		users:    deps.Users,
		orgs:     deps.Orgs,
		greeting: deps.Greeting,
		metrics:  deps.Metrics,
		db:       deps.DB,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))
	r.Use(slogRequestLogger(h.logger))
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	r.Get("/health", h.handleHealth)
	if deps.Metrics != nil {
		r.Get("/metrics", deps.Metrics.Handler())
	}

	r.Get("/hello", h.handleHello)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(deps.Identity))

		r.Route("/organisations", func(r chi.Router) {
			r.Get("/", h.handleListOrganisations)
			r.Post("/", h.handleCreateOrganisation)
			r.Get("/{orgId}", h.handleGetOrganisation)
			r.Post("/{orgId}/users", h.handleAddOrganisationUser)
		})

		r.Get("/users/{id}", h.handleGetUser)
	})

	return r
}

// handleHealth reports liveness plus database reachability.
func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "ok"
	code := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			dbStatus = "unreachable"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	} else {
		dbStatus = "not configured"
	}

	writeJSON(w, code, map[string]string{
		"status":   status,
		"database": dbStatus,
	})
}
