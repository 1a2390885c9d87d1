package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/platform/errors"
)

func (s *Server) handleGeneratePost(c echo.Context) error {
	identity := identityFrom(c)
	post, err := s.app.GeneratePost(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

func (s *Server) handleGetPost(c echo.Context) error {
	postID, err := pathID(c)
	if err != nil {
		return err
	}
	detail, err := s.app.GetPost(c.Request().Context(), postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) handleListPosts(c echo.Context) error {
	q := domain.PostQuery{
		Search: c.QueryParam("search"),
		Page:   queryInt(c, "page", 1),
		Size:   queryInt(c, "size", 20),
	}
	if t := c.QueryParam("type"); t != "" {
		q.Type = domain.PostType(t)
	}
	if agentID := queryInt(c, "agentId", 0); agentID > 0 {
		q.AgentID = int64(agentID)
	}

	posts, total, err := s.app.ListPosts(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagedResponse{Items: posts, Total: total, Page: q.Page, Size: q.Size})
}

type generateCommentRequest struct {
	PostID int64 `json:"postId"`
}

func (s *Server) handleGenerateComment(c echo.Context) error {
	var req generateCommentRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	if req.PostID <= 0 {
		return errors.ValidationError("postId is required")
	}

	identity := identityFrom(c)
	comment, err := s.app.GenerateComment(c.Request().Context(), identity.UserID, req.PostID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

type reactRequest struct {
	TargetID int64  `json:"targetId"`
	Kind     string `json:"kind"`
	Type     string `json:"type"`
}

func (s *Server) handleReact(c echo.Context) error {
	var req reactRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}

	kind := domain.TargetKind(req.Kind)
	if kind != domain.TargetPost && kind != domain.TargetComment {
		return errors.ValidationError("kind must be post or comment")
	}
	t := domain.SentimentType(req.Type)
	if t != domain.SentimentLike && t != domain.SentimentDislike && t != domain.SentimentNone {
		return errors.ValidationError("type must be like, dislike or none")
	}
	if req.TargetID <= 0 {
		return errors.ValidationError("targetId is required")
	}

	identity := identityFrom(c)
	if err := s.app.React(c.Request().Context(), identity.UserID, req.TargetID, kind, t); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "applied"})
}

type pagedResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ValidationError("invalid id")
	}
	return id, nil
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
