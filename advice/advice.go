// Package advice defines the boundary to an external connection advisor.
// The advisor is an optional collaborator; its failures never surface to
// callers and never block the session machinery.
package advice

import (
	"context"
	"sync"

	"github.com/yllada/remote-manager/profile"
)

// FallbackMessage is returned whenever the advisor is unavailable or a
// request fails.
const FallbackMessage = "No advice available for this connection."

// Advisor produces a short human-readable recommendation for a profile.
type Advisor interface {
	Advise(ctx context.Context, p profile.Profile) (string, error)
}

// Service wraps an Advisor with a per-profile concurrency gate and failure
// degradation. At most one request per profile is in flight; additional
// callers receive the fallback immediately.
type Service struct {
	advisor Advisor

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewService wraps the given advisor. A nil advisor yields a service that
// always answers with the fallback.
func NewService(advisor Advisor) *Service {
	return &Service{
		advisor:  advisor,
		inFlight: make(map[string]bool),
	}
}

// Advise requests advice for the profile. It degrades to FallbackMessage
// when the advisor is absent, busy for this profile, or fails.
func (s *Service) Advise(ctx context.Context, p profile.Profile) string {
	if s.advisor == nil {
		return FallbackMessage
	}

	s.mu.Lock()
	if s.inFlight[p.ID] {
		s.mu.Unlock()
		return FallbackMessage
	}
	s.inFlight[p.ID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, p.ID)
		s.mu.Unlock()
	}()

	text, err := s.advisor.Advise(ctx, p)
	if err != nil || text == "" {
		return FallbackMessage
	}
	return text
}
