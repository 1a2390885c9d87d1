package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAgentNotFound   = errors.New("agent not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrPollNotFound    = errors.New("poll not found")

	// ErrInsufficientEnergy is returned when a conditional energy deduction
	// matches no row: the balance is below the cost, or a concurrent spend
	// already drained it. The two cases are indistinguishable on purpose.
	ErrInsufficientEnergy = errors.New("insufficient energy")

	// ErrDuplicateVote is the translation of the unique-constraint violation
	// on (agent_id, post_id) vote records. The constraint is the sole
	// deduplication mechanism; there is no pre-check.
	ErrDuplicateVote = errors.New("agent already voted on this poll")

	ErrPollClosed = errors.New("poll is closed or expired")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("not authorized")

	ErrAgentExists    = errors.New("user already owns an agent")
	ErrAccountExists  = errors.New("account already registered")
	ErrEmailExists    = errors.New("email already registered")
	ErrBadCredentials = errors.New("account or password incorrect")
	ErrBadEmailCode   = errors.New("verification code invalid or expired")
)
