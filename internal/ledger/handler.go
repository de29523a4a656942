// AngelaMos | 2026
// handler.go

package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/debtbook/internal/core"
	"github.com/carterperez-dev/debtbook/internal/identity"
	"github.com/carterperez-dev/debtbook/internal/middleware"
)

// RoleAuthority resolves the caller's current role on every request. The
// token carries a role claim too, but it can go stale between issue and
// use; the authority is the source of truth for write decisions.
type RoleAuthority interface {
	RoleOf(ctx context.Context, userID string) identity.Role
}

type Handler struct {
	service   *Service
	roles     RoleAuthority
	validator *validator.Validate
}

func NewHandler(service *Service, roles RoleAuthority) *Handler {
	return &Handler{
		service:   service,
		roles:     roles,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the debtor ledger under /debtors. Authorization is
// enforced in the service against the freshly resolved role, so only the
// authenticator runs here; extra middleware (per-role rate limiting) runs
// after it, once the caller identity is in the context.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	extra ...func(http.Handler) http.Handler,
) {
	r.Route("/debtors", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(extra...)

		r.Get("/", h.ListDebtors)
		r.Post("/", h.RegisterDebtor)
		r.Get("/search", h.SearchDebtor)

		r.Route("/{debtorID}", func(r chi.Router) {
			r.Get("/", h.GetDebtor)
			r.Put("/", h.UpdateDebtor)
			r.Delete("/", h.DeleteDebtor)
			r.Post("/debts", h.RecordDebt)
			r.Post("/payments", h.RecordPayment)
		})
	})
}

func (h *Handler) ListDebtors(w http.ResponseWriter, r *http.Request) {
	debtors, err := h.service.ListDebtors(r.Context(), h.actor(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, debtors)
}

func (h *Handler) SearchDebtor(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		core.BadRequest(w, "query parameter q must not be empty")
		return
	}

	result, err := h.service.SearchDebtor(r.Context(), h.actor(r), query)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, SearchResponse{
		Found:  result != nil,
		Result: result,
	})
}

func (h *Handler) GetDebtor(w http.ResponseWriter, r *http.Request) {
	debtorID := chi.URLParam(r, "debtorID")

	history, err := h.service.GetDebtor(r.Context(), h.actor(r), debtorID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "debtor")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, history)
}

func (h *Handler) RegisterDebtor(w http.ResponseWriter, r *http.Request) {
	var req RegisterDebtorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	debtor, err := h.service.RegisterDebtor(r.Context(), h.actor(r), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, debtor)
}

func (h *Handler) UpdateDebtor(w http.ResponseWriter, r *http.Request) {
	debtorID := chi.URLParam(r, "debtorID")

	var req UpdateDebtorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	debtor, err := h.service.UpdateDebtor(r.Context(), h.actor(r), debtorID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "debtor")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, debtor)
}

func (h *Handler) RecordDebt(w http.ResponseWriter, r *http.Request) {
	debtorID := chi.URLParam(r, "debtorID")

	var req RecordDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	debt, err := h.service.RecordDebt(r.Context(), h.actor(r), debtorID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, debt)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	debtorID := chi.URLParam(r, "debtorID")

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.RecordPayment(r.Context(), h.actor(r), debtorID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, result)
}

func (h *Handler) DeleteDebtor(w http.ResponseWriter, r *http.Request) {
	debtorID := chi.URLParam(r, "debtorID")

	err := h.service.DeleteDebtor(r.Context(), h.actor(r), debtorID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "debtor")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) actor(r *http.Request) Actor {
	userID := middleware.GetUserID(r.Context())
	return Actor{
		ID:   userID,
		Role: h.roles.RoleOf(r.Context(), userID),
	}
}
