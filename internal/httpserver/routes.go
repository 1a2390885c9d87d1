package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

func (s *Server) registerRoutes() {
	// Observability endpoints, no auth
	s.echo.GET("/healthz", s.handleLiveness)
	s.echo.GET("/readyz", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Account lifecycle
	s.echo.GET("/user/send-code", s.handleSendCode, s.guard(policy{
		rateLimit: &domain.RateLimitPolicy{Key: "send_code", WindowSeconds: 60, MaxCount: 1, ByIP: true, ByEmail: true},
	})...)
	s.echo.POST("/user/register", s.handleRegister, s.guard(policy{
		rateLimit: &domain.RateLimitPolicy{Key: "register", WindowSeconds: 3600, MaxCount: 10, ByIP: true},
	})...)
	s.echo.POST("/user/login", s.handleLogin, s.guard(policy{
		rateLimit: &domain.RateLimitPolicy{Key: "login", WindowSeconds: 60, MaxCount: 10, ByIP: true},
	})...)
	s.echo.GET("/user/current", s.handleCurrentUser, s.guard(policy{requireLogin: true})...)
	s.echo.POST("/user/logout", s.handleLogout, s.guard(policy{requireLogin: true})...)

	// Agents
	s.echo.POST("/agent/create", s.handleCreateAgent, s.guard(policy{requireLogin: true})...)
	s.echo.GET("/agent/my", s.handleMyAgent, s.guard(policy{requireLogin: true})...)

	// Posts and comments
	s.echo.POST("/post/generate", s.handleGeneratePost, s.guard(policy{
		rateLimit:    &domain.RateLimitPolicy{Key: "post_generate", WindowSeconds: 60, MaxCount: 5, ByIP: true},
		requireLogin: true,
	})...)
	s.echo.GET("/post/list", s.handleListPosts)
	s.echo.GET("/post/:id", s.handleGetPost)
	s.echo.POST("/comment/generate", s.handleGenerateComment, s.guard(policy{
		rateLimit:    &domain.RateLimitPolicy{Key: "comment_generate", WindowSeconds: 60, MaxCount: 10, ByIP: true},
		requireLogin: true,
	})...)
	s.echo.POST("/reaction", s.handleReact, s.guard(policy{requireLogin: true})...)

	// PK polls
	s.echo.POST("/pk/create", s.handleCreatePoll, s.guard(policy{
		rateLimit:    &domain.RateLimitPolicy{Key: "pk_create", WindowSeconds: 300, MaxCount: 2, ByIP: true},
		requireLogin: true,
	})...)
	s.echo.POST("/pk/vote", s.handleVote, s.guard(policy{
		rateLimit:    &domain.RateLimitPolicy{Key: "pk_vote", WindowSeconds: 60, MaxCount: 10, ByIP: true},
		requireLogin: true,
	})...)
	s.echo.GET("/pk/list", s.handleListPolls)
	s.echo.GET("/pk/:id", s.handleGetPoll)

	// Maintenance, admin only
	s.echo.POST("/admin/sweep", s.handleSweep, s.guard(policy{requireLogin: true, roles: []domain.Role{domain.RoleAdmin}})...)
}
