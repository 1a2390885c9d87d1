package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhemu6/AlterEgo/internal/platform/errors"
)

func (s *Server) handleCreatePoll(c echo.Context) error {
	identity := identityFrom(c)
	view, err := s.app.CreatePoll(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

type voteRequest struct {
	PostID int64 `json:"postId"`
}

func (s *Server) handleVote(c echo.Context) error {
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	if req.PostID <= 0 {
		return errors.ValidationError("postId is required")
	}

	identity := identityFrom(c)
	vote, err := s.app.Vote(c.Request().Context(), identity.UserID, req.PostID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vote)
}

// handleGetPoll is readable anonymously; a valid bearer token enriches the
// view with the caller's own vote.
func (s *Server) handleGetPoll(c echo.Context) error {
	postID, err := pathID(c)
	if err != nil {
		return err
	}

	var viewerUserID int64
	if token := bearerToken(c); token != "" {
		if identity, err := s.sessions.Resolve(c.Request().Context(), token); err == nil {
			viewerUserID = identity.UserID
		}
	}

	view, err := s.app.Poll(c.Request().Context(), postID, viewerUserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleListPolls(c echo.Context) error {
	page, size := queryInt(c, "page", 1), queryInt(c, "size", 20)
	posts, total, err := s.app.ListPolls(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagedResponse{Items: posts, Total: total, Page: page, Size: size})
}

// handleSweep triggers one maintenance pass out of schedule.
func (s *Server) handleSweep(c echo.Context) error {
	s.sweeper.Sweep(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"status": "swept"})
}
