package redirect

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// MarkerValue is stored for newly registered users.
const MarkerValue = "1"

var ErrNilUserID = errors.New("user id cannot be nil")

// MarkerService manages the first-login marker lifecycle.
type MarkerService struct {
	repo MarkerRepository
}

func NewMarkerService(repo MarkerRepository) *MarkerService {
	return &MarkerService{repo: repo}
}

// Mark flags a newly registered user. Called from the registration pipeline only.
func (s *MarkerService) Mark(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrNilUserID
	}
	return s.repo.SetMarker(ctx, userID, MarkerValue)
}

// IsMarked reports whether a non-empty marker is stored for the user.
func (s *MarkerService) IsMarked(ctx context.Context, userID uuid.UUID) (bool, error) {
	value, err := s.repo.GetMarker(ctx, userID)
	if err != nil {
		return false, err
	}
	return isPresent(value), nil
}

// Clear removes the marker.
func (s *MarkerService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteMarker(ctx, userID)
}

// Consume checks and clears the marker in a single atomic step and reports
// whether it was present. At most one caller observes true per marking.
func (s *MarkerService) Consume(ctx context.Context, userID uuid.UUID) (bool, error) {
	value, err := s.repo.TakeMarker(ctx, userID)
	if err != nil {
		return false, err
	}
	return isPresent(value), nil
}

func isPresent(value string) bool {
	return value != ""
}
