package redirect

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Outcome names the rule that produced a decision.
type Outcome string

const (
	OutcomeExplicitRequest Outcome = "explicit_request"
	OutcomeAuthFailed      Outcome = "auth_failed"
	OutcomeNoRoles         Outcome = "no_roles"
	OutcomeFirstLogin      Outcome = "first_login"
	OutcomeNormal          Outcome = "normal"
	OutcomeDefault         Outcome = "default"
	OutcomeRecovered       Outcome = "recovered"
)

// Decision is the resolver's answer for one authentication event.
type Decision struct {
	URL     string
	Outcome Outcome
	// Role is the role whose rule matched, empty for fallbacks.
	Role string
	// FirstLogin is true when this evaluation consumed the user's first-login marker.
	FirstLogin bool
}

// Resolver decides where to send a user after login.
//
// Precedence: an explicit requested URL (other than the admin base URL) always
// wins, then a first-login rule, then a normal rule, then the proposed target.
// When a user holds several roles with rules, the role listed first by the
// RoleDirectory wins; the order in which roles were assigned to the user is
// ignored.
type Resolver struct {
	store        *Store
	roles        RoleDirectory
	markers      *MarkerService
	adminURL     string
	atomicMarker bool
	logger       *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithAdminURL sets the administrative base URL. A requested URL equal to it
// is treated as "no explicit request".
func WithAdminURL(adminURL string) Option {
	return func(r *Resolver) {
		r.adminURL = adminURL
	}
}

// WithLogger sets the logger used for recovered collaborator failures
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAtomicMarker selects between an atomic test-and-delete of the first-login
// marker (the default) and a separate check followed by a clear.
func WithAtomicMarker(atomic bool) Option {
	return func(r *Resolver) {
		r.atomicMarker = atomic
	}
}

// NewResolver creates a resolver over the given store, role directory and marker service.
func NewResolver(store *Store, roles RoleDirectory, markers *MarkerService, opts ...Option) *Resolver {
	r := &Resolver{
		store:        store,
		roles:        roles,
		markers:      markers,
		atomicMarker: true,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the URL the user should land on. It never fails: on any
// collaborator error it falls back to proposedTarget.
func (r *Resolver) Resolve(ctx context.Context, proposedTarget, requestedURL string, auth AuthResult) string {
	return r.Decide(ctx, proposedTarget, requestedURL, auth).URL
}

// Decide is Resolve with the reason for the outcome attached.
func (r *Resolver) Decide(ctx context.Context, proposedTarget, requestedURL string, auth AuthResult) (decision Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Redirect resolution panicked, using proposed target", "panic", rec)
			recoveredFailuresTotal.WithLabelValues("panic").Inc()
			decision = Decision{URL: proposedTarget, Outcome: OutcomeRecovered}
		}
		decisionsTotal.WithLabelValues(string(decision.Outcome)).Inc()
	}()
	return r.decide(ctx, proposedTarget, requestedURL, auth)
}

func (r *Resolver) decide(ctx context.Context, proposedTarget, requestedURL string, auth AuthResult) Decision {
	fallback := func(outcome Outcome) Decision {
		return Decision{URL: proposedTarget, Outcome: outcome}
	}

	if requestedURL != "" && requestedURL != r.adminURL {
		return fallback(OutcomeExplicitRequest)
	}
	if auth.IsError() {
		return fallback(OutcomeAuthFailed)
	}

	userRoles, err := r.roles.GetUserRoles(ctx, auth.UserID)
	if err != nil {
		recoveredFailuresTotal.WithLabelValues("user_roles").Inc()
		r.logger.Warn("Failed to load user roles, using proposed target", "user_id", auth.UserID, "error", err)
		return fallback(OutcomeNoRoles)
	}
	if len(userRoles) == 0 {
		return fallback(OutcomeNoRoles)
	}

	scope := r.store.Scope()
	firstLogin := r.consumeMarker(ctx, auth.UserID)
	if firstLogin {
		if role, url, ok := r.match(ctx, scope, KindFirstLogin, userRoles); ok {
			return Decision{URL: url, Outcome: OutcomeFirstLogin, Role: role, FirstLogin: true}
		}
	}

	if role, url, ok := r.match(ctx, scope, KindNormal, userRoles); ok {
		return Decision{URL: url, Outcome: OutcomeNormal, Role: role, FirstLogin: firstLogin}
	}

	decision := fallback(OutcomeDefault)
	decision.FirstLogin = firstLogin
	return decision
}

// consumeMarker reports whether the user was marked, clearing the marker before
// any rule is evaluated. Marker store failures count as "not marked".
func (r *Resolver) consumeMarker(ctx context.Context, userID uuid.UUID) bool {
	if r.markers == nil {
		return false
	}

	if r.atomicMarker {
		marked, err := r.markers.Consume(ctx, userID)
		if err != nil {
			recoveredFailuresTotal.WithLabelValues("marker").Inc()
			r.logger.Warn("Failed to consume first login marker", "user_id", userID, "error", err)
			return false
		}
		return marked
	}

	marked, err := r.markers.IsMarked(ctx, userID)
	if err != nil {
		recoveredFailuresTotal.WithLabelValues("marker").Inc()
		r.logger.Warn("Failed to read first login marker", "user_id", userID, "error", err)
		return false
	}
	if !marked {
		return false
	}
	if err := r.markers.Clear(ctx, userID); err != nil {
		recoveredFailuresTotal.WithLabelValues("marker").Inc()
		r.logger.Warn("Failed to clear first login marker", "user_id", userID, "error", err)
		return false
	}
	return true
}

func (r *Resolver) match(ctx context.Context, scope *StoreScope, kind Kind, userRoles []string) (string, string, bool) {
	redirects, err := scope.GetRedirects(ctx, kind)
	if err != nil {
		recoveredFailuresTotal.WithLabelValues("role_listing").Inc()
		r.logger.Warn("Failed to build redirect mapping", "kind", kind, "error", err)
		return "", "", false
	}
	return redirects.Match(userRoles)
}
