// Package service exposes the ROSCA operations over HTTP.
//
// The payout endpoint is permissionless; the enrollment surface (create,
// join, contribute) requires a bearer token. Handlers stay thin: decode,
// call into storage/executor, map domain errors to status codes.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osoko/rosca/internal/auth"
	"github.com/osoko/rosca/internal/events"
	"github.com/osoko/rosca/internal/executor"
	"github.com/osoko/rosca/internal/metrics"
	"github.com/osoko/rosca/internal/middleware"
	"github.com/osoko/rosca/internal/models"
	"github.com/osoko/rosca/internal/storage"
)

// Service wires storage, the payout executor and auth into HTTP handlers.
type Service struct {
	store         storage.Store
	executor      *executor.Executor
	clock         clockwork.Clock
	emitter       events.Emitter
	jwtManager    *auth.JWTManager
	authenticator *auth.PasswordAuthenticator
}

// Config carries the Service dependencies. Clock and Emitter are optional.
type Config struct {
	Store      storage.Store
	Executor   *executor.Executor
	JWTManager *auth.JWTManager
	Clock      clockwork.Clock
	Emitter    events.Emitter
}

// New creates a Service.
func New(cfg Config) *Service {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Emitter == nil {
		cfg.Emitter = events.Discard{}
	}
	return &Service{
		store:         cfg.Store,
		executor:      cfg.Executor,
		clock:         cfg.Clock,
		emitter:       cfg.Emitter,
		jwtManager:    cfg.JWTManager,
		authenticator: auth.NewPasswordAuthenticator(cfg.Store),
	}
}

// Router builds the HTTP routing table.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(middleware.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)

		r.Route("/groups", func(r chi.Router) {
			// Authenticated enrollment surface.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(s.jwtManager))
				r.Post("/", s.CreateGroup)
				r.Post("/{groupID}/join", s.JoinGroup)
				r.Post("/{groupID}/contributions", s.Contribute)
			})

			// Permissionless payout trigger and reads. A token is not
			// required but is honored so request logs carry the caller.
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(s.jwtManager))
				r.Post("/{groupID}/payout", s.ExecutePayout)
				r.Get("/{groupID}", s.GetGroup)
				r.Get("/{groupID}/pool", s.GetPool)
				r.Get("/{groupID}/payouts/{cycle}", s.GetPayout)
			})
		})

		r.Get("/accounts/{account}/balance", s.GetBalance)
	})

	return r
}

// errorKind maps a domain error to the machine-readable kind clients (and
// tests) match on.
func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrGroupNotFound):
		return "group_not_found"
	case errors.Is(err, models.ErrCycleNotComplete):
		return "cycle_not_complete"
	case errors.Is(err, models.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrNotMember):
		return "not_member"
	case errors.Is(err, models.ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, models.ErrPayoutFailed):
		return "payout_failed"
	case errors.Is(err, models.ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, models.ErrGroupFull):
		return "group_full"
	case errors.Is(err, models.ErrDuplicateContribution):
		return "duplicate_contribution"
	case errors.Is(err, models.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, models.ErrOverflow):
		return "overflow"
	default:
		return "internal"
	}
}

func statusForKind(kind string) int {
	switch kind {
	case "group_not_found", "not_member":
		return http.StatusNotFound
	case "invalid_state", "cycle_not_complete", "invalid_amount", "invalid_recipient",
		"payout_failed", "already_member", "group_full", "duplicate_contribution":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(w http.ResponseWriter, err error) {
	kind := errorKind(err)
	status := statusForKind(kind)
	if status >= 500 {
		slog.Error("request error", "kind", kind, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "bad_request"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
