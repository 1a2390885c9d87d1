package httpserver

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/metrics"
	"github.com/zhemu6/AlterEgo/internal/platform/correlation"
	"github.com/zhemu6/AlterEgo/internal/platform/errors"
)

const identityContextKey = "identity"

// correlationMiddleware tags every request with an ID that the slog handler
// echoes on each line. Inbound X-Correlation-ID headers are honored so IDs
// survive hops through a gateway.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get("X-Correlation-ID")
		if id == "" {
			id = correlation.NewID()
		}
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set("X-Correlation-ID", id)
		return next(c)
	}
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		ctx := c.Request().Context()
		slog.InfoContext(ctx, "Request handled",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", c.Response().Status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_ip", c.RealIP(),
		)
		return err
	}
}

func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		metrics.HTTPRequestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())
		return err
	}
}

// errorMapper converts the error taxonomy into JSON responses. Domain
// sentinels are normalized first so repositories never need to know about
// HTTP.
func errorMapper(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}

		var httpErr *echo.HTTPError
		if stderrors.As(err, &httpErr) {
			return err
		}

		structured := errors.AsStructuredError(normalizeDomainError(err))
		status := structured.HTTPStatus()
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(c.Request().Context(), "Request failed", "error", err, "path", c.Path())
		}
		metrics.HTTPErrorsTotal.WithLabelValues(c.Path(), string(structured.Type)).Inc()
		return c.JSON(status, structured.ToResponse())
	}
}

// normalizeDomainError maps sentinel errors from the domain layer onto the
// structured taxonomy.
func normalizeDomainError(err error) error {
	switch {
	case stderrors.Is(err, domain.ErrNotAuthenticated), stderrors.Is(err, domain.ErrBadCredentials):
		return errors.UnauthenticatedError(err.Error())
	case stderrors.Is(err, domain.ErrNotAuthorized):
		return errors.ForbiddenError(err.Error())
	case stderrors.Is(err, domain.ErrUserNotFound),
		stderrors.Is(err, domain.ErrAgentNotFound),
		stderrors.Is(err, domain.ErrPostNotFound),
		stderrors.Is(err, domain.ErrCommentNotFound),
		stderrors.Is(err, domain.ErrPollNotFound):
		return errors.NotFoundError(err.Error())
	case stderrors.Is(err, domain.ErrAccountExists),
		stderrors.Is(err, domain.ErrEmailExists),
		stderrors.Is(err, domain.ErrAgentExists):
		return errors.ConflictError(err.Error())
	case stderrors.Is(err, domain.ErrInsufficientEnergy),
		stderrors.Is(err, domain.ErrDuplicateVote),
		stderrors.Is(err, domain.ErrPollClosed),
		stderrors.Is(err, domain.ErrBadEmailCode):
		return errors.OperationError(err.Error())
	}
	return err
}

// policy describes the pipeline in front of one route.
type policy struct {
	rateLimit    *domain.RateLimitPolicy
	requireLogin bool
	roles        []domain.Role
}

// guard builds the middleware chain for a policy: the rate limit runs first
// so unauthenticated floods are cut before any session lookup.
func (s *Server) guard(p policy) []echo.MiddlewareFunc {
	var chain []echo.MiddlewareFunc
	if p.rateLimit != nil {
		chain = append(chain, s.rateLimitMiddleware(*p.rateLimit))
	}
	if p.requireLogin {
		chain = append(chain, s.authMiddleware(p.roles...))
	}
	return chain
}

func (s *Server) rateLimitMiddleware(rl domain.RateLimitPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email := ""
			if rl.ByEmail {
				email = c.QueryParam("email")
			}
			allowed, err := s.governor.Check(c.Request().Context(), rl, c.RealIP(), email)
			if err != nil {
				slog.WarnContext(c.Request().Context(), "Rate limit check degraded", "key", rl.Key, "error", err)
			}
			if !allowed {
				return errors.RateLimitedError("too many requests, slow down")
			}
			return next(c)
		}
	}
}

// authMiddleware resolves the bearer token through the session cache and
// stores the identity on the context. With roles given, the identity's role
// must parse and match one of them.
func (s *Server) authMiddleware(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return errors.UnauthenticatedError("missing bearer token")
			}

			identity, err := s.sessions.Resolve(c.Request().Context(), token)
			if err != nil {
				return err
			}

			if len(roles) > 0 {
				role, ok := domain.ParseRole(string(identity.Role))
				if !ok {
					return errors.ForbiddenError("unrecognized role")
				}
				if !containsRole(roles, role) {
					return errors.ForbiddenError("insufficient privileges")
				}
			}

			c.Set(identityContextKey, identity)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// identityFrom returns the authenticated identity set by authMiddleware.
func identityFrom(c echo.Context) *domain.Identity {
	identity, _ := c.Get(identityContextKey).(*domain.Identity)
	return identity
}
