package domain

import "context"

// RateLimitPolicy declares the sliding-window budget for one protected
// operation. ByIP and ByEmail select the identity dimensions: with both set
// and an email present on the request, the window is counted per
// (key, ip, email); a missing email falls back to per (key, ip).
type RateLimitPolicy struct {
	Key           string
	WindowSeconds int
	MaxCount      int
	ByIP          bool
	ByEmail       bool
}

// RateGovernor decides allow/deny before a request reaches business logic.
// Implementations fail open: an unreachable backend allows the request.
type RateGovernor interface {
	Check(ctx context.Context, policy RateLimitPolicy, ip, email string) (bool, error)
}
