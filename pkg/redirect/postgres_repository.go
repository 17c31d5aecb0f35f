package redirect

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresRuleRepository implements RuleRepository using PostgreSQL
type PostgresRuleRepository struct {
	db DBTX
}

// NewPostgresRuleRepository creates a new PostgreSQL rule repository
func NewPostgresRuleRepository(db DBTX) *PostgresRuleRepository {
	return &PostgresRuleRepository{db: db}
}

func (r *PostgresRuleRepository) GetRedirectURL(ctx context.Context, role string, kind Kind) (string, error) {
	var url string
	err := r.db.QueryRow(ctx, `
		SELECT url FROM redirect_rule WHERE role = $1 AND kind = $2
	`, role, string(kind)).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get redirect url for role %s: %w", role, err)
	}
	return url, nil
}

func (r *PostgresRuleRepository) SetRedirectURL(ctx context.Context, role string, kind Kind, url string) error {
	if role == "" {
		return ErrEmptyRole
	}
	if !kind.Valid() {
		return ErrInvalidKind
	}
	url = NormalizeURL(url)
	if url == "" {
		return r.DeleteRedirectURL(ctx, role, kind)
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO redirect_rule (role, kind, url, updated_at)
		VALUES ($1, $2, $3, NOW() AT TIME ZONE 'UTC')
		ON CONFLICT (role, kind) DO UPDATE SET
			url = EXCLUDED.url,
			updated_at = EXCLUDED.updated_at
	`, role, string(kind), url)
	if err != nil {
		return fmt.Errorf("failed to upsert redirect rule: %w", err)
	}
	return nil
}

func (r *PostgresRuleRepository) DeleteRedirectURL(ctx context.Context, role string, kind Kind) error {
	_, err := r.db.Exec(ctx, `DELETE FROM redirect_rule WHERE role = $1 AND kind = $2`, role, string(kind))
	if err != nil {
		return fmt.Errorf("failed to delete redirect rule: %w", err)
	}
	return nil
}

func (r *PostgresRuleRepository) FindRules(ctx context.Context) ([]Rule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT role, kind, url, updated_at
		FROM redirect_rule
		ORDER BY role, kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query redirect rules: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var rule Rule
		var kind string
		if err := rows.Scan(&rule.Role, &kind, &rule.URL, &rule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan redirect rule: %w", err)
		}
		rule.Kind = Kind(kind)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate redirect rules: %w", err)
	}
	return rules, nil
}

// PostgresMarkerRepository implements MarkerRepository using PostgreSQL
type PostgresMarkerRepository struct {
	db DBTX
}

// NewPostgresMarkerRepository creates a new PostgreSQL marker repository
func NewPostgresMarkerRepository(db DBTX) *PostgresMarkerRepository {
	return &PostgresMarkerRepository{db: db}
}

func (r *PostgresMarkerRepository) SetMarker(ctx context.Context, userID uuid.UUID, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO first_login_marker (user_id, value, created_at)
		VALUES ($1, $2, NOW() AT TIME ZONE 'UTC')
		ON CONFLICT (user_id) DO UPDATE SET value = EXCLUDED.value
	`, userID, value)
	if err != nil {
		return fmt.Errorf("failed to set first login marker: %w", err)
	}
	return nil
}

func (r *PostgresMarkerRepository) GetMarker(ctx context.Context, userID uuid.UUID) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM first_login_marker WHERE user_id = $1`, userID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get first login marker: %w", err)
	}
	return value, nil
}

func (r *PostgresMarkerRepository) DeleteMarker(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM first_login_marker WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete first login marker: %w", err)
	}
	return nil
}

// TakeMarker deletes the marker and returns its value in one statement, so two
// concurrent logins cannot both observe it.
func (r *PostgresMarkerRepository) TakeMarker(ctx context.Context, userID uuid.UUID) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `
		DELETE FROM first_login_marker WHERE user_id = $1 RETURNING value
	`, userID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to take first login marker: %w", err)
	}
	return value, nil
}
