package redirect

import (
	"context"
	"fmt"
	"log/slog"
)

// Store builds the ordered role -> URL mapping for a redirect kind from the
// role directory and the rule repository.
type Store struct {
	roles  RoleDirectory
	rules  RuleRepository
	logger *slog.Logger
}

// NewStore creates a store reading roles from roles and URLs from rules.
func NewStore(roles RoleDirectory, rules RuleRepository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{roles: roles, rules: rules, logger: logger}
}

// GetRedirects returns, in role directory order, every role with a non-empty URL for kind.
// A failed read for a single role skips that role; only a failed role listing is returned.
func (s *Store) GetRedirects(ctx context.Context, kind Kind) (Redirects, error) {
	if !kind.Valid() {
		return Redirects{}, ErrInvalidKind
	}

	roles, err := s.roles.ListRoles(ctx)
	if err != nil {
		return Redirects{}, fmt.Errorf("failed to list roles: %w", err)
	}

	redirects := NewRedirects()
	for _, role := range roles {
		url, err := s.rules.GetRedirectURL(ctx, role, kind)
		if err != nil {
			recoveredFailuresTotal.WithLabelValues("rule_read").Inc()
			s.logger.Warn("Skipping role with unreadable redirect", "role", role, "kind", kind, "error", err)
			continue
		}
		redirects.Add(role, url)
	}
	return redirects, nil
}

// Scope returns a per-evaluation view that builds each kind's mapping at most once.
func (s *Store) Scope() *StoreScope {
	return &StoreScope{store: s, built: make(map[Kind]scopedRedirects, len(Kinds))}
}

type scopedRedirects struct {
	redirects Redirects
	err       error
}

// StoreScope memoizes mappings for the lifetime of one resolution. Not safe for concurrent use.
type StoreScope struct {
	store *Store
	built map[Kind]scopedRedirects
}

func (s *StoreScope) GetRedirects(ctx context.Context, kind Kind) (Redirects, error) {
	if cached, ok := s.built[kind]; ok {
		return cached.redirects, cached.err
	}
	redirects, err := s.store.GetRedirects(ctx, kind)
	s.built[kind] = scopedRedirects{redirects: redirects, err: err}
	return redirects, err
}
