// Package redirect decides where a user lands right after logging in.
//
// The decision is driven by the roles a user holds, a configured URL per role
// for normal logins and for the very first login, and a per-user first-login
// marker that is set at registration and consumed by the first successful login.
//
// # Overview
//
// The redirect package provides:
//   - RuleRepository implementations (in-memory, file, PostgreSQL) for per-role URLs
//   - MarkerRepository implementations for the first-login marker
//   - Store, which builds the ordered role -> URL mapping for a redirect kind
//   - Resolver, which applies the precedence rules
//   - Hooks, the integration points for a host login and registration pipeline
//
// # Basic Usage
//
//	rules := redirect.NewInMemoryRuleRepository()
//	markers := redirect.NewMarkerService(redirect.NewInMemoryMarkerRepository())
//	store := redirect.NewStore(roleService, rules, nil)
//	resolver := redirect.NewResolver(store, roleService, markers,
//		redirect.WithAdminURL("https://example.com/admin/"),
//	)
//	hooks := redirect.NewHooks(resolver, markers)
//
//	// registration pipeline
//	_ = hooks.OnUserRegistered(ctx, userID)
//
//	// login pipeline
//	target := hooks.OnLoginRedirectDecision(ctx, "/home", requestedURL, redirect.Authenticated(userID))
//
// # Precedence
//
// The proposed target is returned untouched when the login form asked for an
// explicit URL other than the admin base URL, when authentication failed, or
// when the user has no roles. Otherwise the first-login marker is consumed and,
// if it was present, the first-login rules are tried; the normal rules are tried
// next, and the proposed target is the final fallback.
//
// # Tie-break
//
// Rules are scanned in the order the RoleDirectory lists roles. A user holding
// both "author" and "editor" is sent to the URL of whichever of the two the
// directory lists first, regardless of the order the roles were granted.
//
// # Failure handling
//
// Resolution never returns an error. A rule that cannot be read is skipped, a
// marker store failure is treated as "not a first login", and any other failure
// falls back to the proposed target.
package redirect
