package redirect

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RuleRepository is the configuration store holding redirect URLs per role and kind.
type RuleRepository interface {
	// GetRedirectURL returns the configured URL, or "" when none is set.
	GetRedirectURL(ctx context.Context, role string, kind Kind) (string, error)
	// SetRedirectURL stores url for (role, kind). An empty url removes the rule.
	SetRedirectURL(ctx context.Context, role string, kind Kind, url string) error
	DeleteRedirectURL(ctx context.Context, role string, kind Kind) error
	FindRules(ctx context.Context) ([]Rule, error)
}

// MarkerRepository persists the per-user first-login marker.
type MarkerRepository interface {
	SetMarker(ctx context.Context, userID uuid.UUID, value string) error
	// GetMarker returns the stored value, "" when absent.
	GetMarker(ctx context.Context, userID uuid.UUID) (string, error)
	DeleteMarker(ctx context.Context, userID uuid.UUID) error
	// TakeMarker atomically reads and deletes the marker, returning the value it held.
	TakeMarker(ctx context.Context, userID uuid.UUID) (string, error)
}

// RoleDirectory is the host role system as seen by the redirect engine.
type RoleDirectory interface {
	// ListRoles returns every known role in a stable order.
	ListRoles(ctx context.Context) ([]string, error)
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}
