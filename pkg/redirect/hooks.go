package redirect

import (
	"context"

	"github.com/google/uuid"
)

// Hooks are the two entry points a host authentication system calls.
type Hooks struct {
	resolver *Resolver
	markers  *MarkerService
}

func NewHooks(resolver *Resolver, markers *MarkerService) *Hooks {
	return &Hooks{resolver: resolver, markers: markers}
}

// OnLoginRedirectDecision overrides the host's default post-login destination.
func (h *Hooks) OnLoginRedirectDecision(ctx context.Context, proposedTarget, requestedURL string, auth AuthResult) string {
	return h.resolver.Resolve(ctx, proposedTarget, requestedURL, auth)
}

// OnUserRegistered marks a newly created account so its first login can be redirected.
func (h *Hooks) OnUserRegistered(ctx context.Context, userID uuid.UUID) error {
	return h.markers.Mark(ctx, userID)
}
