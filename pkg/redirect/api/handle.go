package api

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/login-redirect/pkg/config"
	"github.com/tendant/login-redirect/pkg/errors"
	"github.com/tendant/login-redirect/pkg/redirect"
)

// Handle serves the redirect rule, decision, registration and marker endpoints
type Handle struct {
	rules   redirect.RuleRepository
	roles   redirect.RoleDirectory
	hooks   *redirect.Hooks
	markers *redirect.MarkerService
}

func NewHandle(rules redirect.RuleRepository, roles redirect.RoleDirectory, hooks *redirect.Hooks, markers *redirect.MarkerService) *Handle {
	return &Handle{
		rules:   rules,
		roles:   roles,
		hooks:   hooks,
		markers: markers,
	}
}

// RoleRules is one row of the settings listing
type RoleRules struct {
	Role             string `json:"role"`
	RedirectURL      string `json:"redirect_url"`
	FirstRedirectURL string `json:"first_redirect_url"`
}

type ListRulesResponse struct {
	Rules []RoleRules `json:"rules"`
}

type SetRuleRequest struct {
	URL string `json:"url"`
}

// RuleResponse describes a stored rule
type RuleResponse struct {
	Role       string        `json:"role"`
	Kind       redirect.Kind `json:"kind"`
	URL        string        `json:"url"`
	OptionName string        `json:"option_name"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type DecisionRequest struct {
	ProposedTarget string `json:"proposed_target"`
	RequestedURL   string `json:"requested_url"`
	UserID         string `json:"user_id"`
	AuthError      string `json:"auth_error"`
}

type DecisionResponse struct {
	RedirectURL string `json:"redirect_url"`
}

type RegistrationRequest struct {
	UserID string `json:"user_id"`
}

type MarkerResponse struct {
	UserID            string `json:"user_id"`
	FirstLoginPending bool   `json:"first_login_pending"`
}

// ListRules returns every role in directory order with both of its URLs
func (h *Handle) ListRules(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.ListRoles(r.Context())
	if err != nil {
		slog.Error("Failed to list roles", "error", err)
		renderError(w, r, errors.Wrap(err, errors.ErrCodeStoreFailed, "failed to list roles"))
		return
	}

	response := ListRulesResponse{Rules: make([]RoleRules, 0, len(roles))}
	for _, role := range roles {
		normal, err := h.rules.GetRedirectURL(r.Context(), role, redirect.KindNormal)
		if err != nil {
			slog.Error("Failed to read redirect rule", "role", role, "error", err)
			renderError(w, r, errors.Wrap(err, errors.ErrCodeStoreFailed, "failed to read redirect rules"))
			return
		}
		first, err := h.rules.GetRedirectURL(r.Context(), role, redirect.KindFirstLogin)
		if err != nil {
			slog.Error("Failed to read redirect rule", "role", role, "error", err)
			renderError(w, r, errors.Wrap(err, errors.ErrCodeStoreFailed, "failed to read redirect rules"))
			return
		}
		response.Rules = append(response.Rules, RoleRules{Role: role, RedirectURL: normal, FirstRedirectURL: first})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

// SetRule stores the URL for a role and kind. An empty URL clears the rule.
func (h *Handle) SetRule(w http.ResponseWriter, r *http.Request) {
	role, kind, err := h.ruleParams(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req SetRuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.InvalidInput("body", err.Error()))
		return
	}

	url := redirect.NormalizeURL(req.URL)
	if verr := config.RequireRedirectTarget("url", url); verr != nil {
		renderError(w, r, errors.New(errors.ErrCodeInvalidURL, verr.Error()).WithDetail("field", "url"))
		return
	}

	if err := h.rules.SetRedirectURL(r.Context(), role, kind, url); err != nil {
		slog.Error("Failed to save redirect rule", "role", role, "kind", kind, "error", err)
		renderError(w, r, errors.Wrap(err, errors.ErrCodeStoreFailed, "failed to save redirect rule"))
		return
	}

	slog.Info("Redirect rule updated", "role", role, "kind", kind, "cleared", url == "")

	var response RuleResponse
	copier.Copy(&response, redirect.Rule{Role: role, Kind: kind, URL: url, UpdatedAt: time.Now().UTC()})
	response.OptionName = kind.OptionName(role)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

// DeleteRule clears the URL for a role and kind
func (h *Handle) DeleteRule(w http.ResponseWriter, r *http.Request) {
	role, kind, err := h.ruleParams(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := h.rules.DeleteRedirectURL(r.Context(), role, kind); err != nil {
		slog.Error("Failed to delete redirect rule", "role", role, "kind", kind, "error", err)
		renderError(w, r, errors.Wrap(err, errors.ErrCodeStoreFailed, "failed to delete redirect rule"))
		return
	}

	slog.Info("Redirect rule cleared", "role", role, "kind", kind)
	w.WriteHeader(http.StatusNoContent)
}

// Decide answers the host's post-login redirect question
func (h *Handle) Decide(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.InvalidInput("body", err.Error()))
		return
	}

	var auth redirect.AuthResult
	if req.AuthError != "" {
		auth = redirect.Failed(stderrors.New(req.AuthError))
	} else {
		userID, err := uuid.Parse(req.UserID)
		if err != nil || userID == uuid.Nil {
			renderError(w, r, errors.InvalidInput("user_id", "must be a UUID when auth_error is empty"))
			return
		}
		auth = redirect.Authenticated(userID)
	}

	url := h.hooks.OnLoginRedirectDecision(r.Context(), req.ProposedTarget, req.RequestedURL, auth)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, DecisionResponse{RedirectURL: url})
}

// Register marks a newly created account for its first login
func (h *Handle) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.InvalidInput("body", err.Error()))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil || userID == uuid.Nil {
		renderError(w, r, errors.InvalidInput("user_id", "must be a UUID"))
		return
	}

	if err := h.hooks.OnUserRegistered(r.Context(), userID); err != nil {
		slog.Error("Failed to mark first login", "user_id", userID, "error", err)
		renderError(w, r, errors.Wrap(err, errors.ErrCodeStoreFailed, "failed to mark first login"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMarker reports whether a user's first login is still pending
func (h *Handle) GetMarker(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		renderError(w, r, errors.InvalidInput("userID", "must be a UUID"))
		return
	}

	pending, err := h.markers.IsMarked(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to read first login marker", "user_id", userID, "error", err)
		renderError(w, r, errors.Wrap(err, errors.ErrCodeStoreFailed, "failed to read first login marker"))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MarkerResponse{UserID: userID.String(), FirstLoginPending: pending})
}

func (h *Handle) ruleParams(r *http.Request) (string, redirect.Kind, error) {
	role := chi.URLParam(r, "role")
	kind, err := redirect.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", "", errors.New(errors.ErrCodeInvalidKind, "kind must be normal or first_login")
	}

	exists, err := h.roleExists(r.Context(), role)
	if err != nil {
		slog.Error("Failed to list roles", "error", err)
		return "", "", errors.Wrap(err, errors.ErrCodeStoreFailed, "failed to list roles")
	}
	if !exists {
		return "", "", errors.Newf(errors.ErrCodeRoleNotFound, "role not found: %s", role)
	}
	return role, kind, nil
}

func (h *Handle) roleExists(ctx context.Context, role string) (bool, error) {
	roles, err := h.roles.ListRoles(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range roles {
		if name == role {
			return true, nil
		}
	}
	return false, nil
}

// RulesHandler returns the admin rule routes
func RulesHandler(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListRules)
	r.Put("/{role}/{kind}", h.SetRule)
	r.Delete("/{role}/{kind}", h.DeleteRule)

	return r
}

// MarkersHandler returns the admin marker routes
func MarkersHandler(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Get("/{userID}", h.GetMarker)

	return r
}

// DecisionHandler returns the login pipeline route
func DecisionHandler(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.Decide)

	return r
}

// RegistrationsHandler returns the registration pipeline route
func RegistrationsHandler(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.Register)

	return r
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, response := errors.ToResponse(err)
	render.Status(r, status)
	render.JSON(w, r, response)
}
