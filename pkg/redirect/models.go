package redirect

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidKind = errors.New("invalid redirect kind")
	ErrEmptyRole   = errors.New("role cannot be empty")
)

// Kind selects which redirect a rule configures.
type Kind string

const (
	KindNormal     Kind = "normal"
	KindFirstLogin Kind = "first_login"
)

// Kinds lists every redirect kind in evaluation order.
var Kinds = []Kind{KindFirstLogin, KindNormal}

// ParseKind accepts the kind names plus the legacy option suffixes.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindNormal), "redirect_url", "redirect":
		return KindNormal, nil
	case string(KindFirstLogin), "first_redirect_url", "first", "first-login":
		return KindFirstLogin, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) Valid() bool {
	return k == KindNormal || k == KindFirstLogin
}

// OptionName returns the legacy settings name of a rule,
// e.g. "subscriber_redirect_url" or "subscriber_first_redirect_url".
// Names can collide across roles ("editor" first login and "editor_first"
// normal), so it is a label only. Storage is keyed by (role, kind).
func (k Kind) OptionName(role string) string {
	if k == KindFirstLogin {
		return role + "_first_redirect_url"
	}
	return role + "_redirect_url"
}

// Rule is a single configured redirect. At most one rule exists per (Role, Kind).
type Rule struct {
	Role      string    `json:"role"`
	Kind      Kind      `json:"kind"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeURL trims a configured URL. An empty result means "no override".
func NormalizeURL(url string) string {
	return strings.TrimSpace(url)
}

// AuthResult is what the host authentication pipeline hands to the resolver:
// either an authenticated user or the error that made the login fail.
type AuthResult struct {
	UserID uuid.UUID
	Err    error
}

// Authenticated builds a successful AuthResult.
func Authenticated(userID uuid.UUID) AuthResult {
	return AuthResult{UserID: userID}
}

// Failed builds an AuthResult for a failed login. A nil err is replaced by ErrAuthenticationFailed.
func Failed(err error) AuthResult {
	if err == nil {
		err = ErrAuthenticationFailed
	}
	return AuthResult{Err: err}
}

// IsError reports whether the login attempt failed.
func (a AuthResult) IsError() bool {
	return a.Err != nil
}

var ErrAuthenticationFailed = errors.New("authentication failed")

// Redirects is an ordered role -> URL mapping. Order follows the role directory
// listing and is the tie-break order used by the resolver.
type Redirects struct {
	roles []string
	urls  map[string]string
}

// NewRedirects returns an empty mapping.
func NewRedirects() Redirects {
	return Redirects{urls: make(map[string]string)}
}

// Add appends role with url. Empty URLs and repeated roles are ignored.
func (r *Redirects) Add(role, url string) {
	url = NormalizeURL(url)
	if url == "" {
		return
	}
	if r.urls == nil {
		r.urls = make(map[string]string)
	}
	if _, ok := r.urls[role]; ok {
		return
	}
	r.roles = append(r.roles, role)
	r.urls[role] = url
}

// Roles returns the roles with a redirect in store order.
func (r Redirects) Roles() []string {
	out := make([]string, len(r.roles))
	copy(out, r.roles)
	return out
}

func (r Redirects) Get(role string) (string, bool) {
	url, ok := r.urls[role]
	return url, ok
}

func (r Redirects) Len() int {
	return len(r.roles)
}

// Match walks the mapping in store order and returns the first role the user holds.
// The user's own role order never affects the outcome.
func (r Redirects) Match(userRoles []string) (role string, url string, ok bool) {
	if len(r.roles) == 0 || len(userRoles) == 0 {
		return "", "", false
	}
	for _, candidate := range r.roles {
		for _, held := range userRoles {
			if held == candidate {
				return candidate, r.urls[candidate], true
			}
		}
	}
	return "", "", false
}
