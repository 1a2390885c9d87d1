package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhemu6/AlterEgo/internal/platform/errors"
)

type createAgentRequest struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
}

func (s *Server) handleCreateAgent(c echo.Context) error {
	var req createAgentRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}

	identity := identityFrom(c)
	agent, err := s.app.CreateAgent(c.Request().Context(), identity.UserID, req.Name, req.Personality)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, agent)
}

func (s *Server) handleMyAgent(c echo.Context) error {
	identity := identityFrom(c)
	agent, err := s.app.MyAgent(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, agent)
}
