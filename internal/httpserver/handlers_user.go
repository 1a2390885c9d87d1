package httpserver

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"

	"github.com/zhemu6/AlterEgo/internal/platform/errors"
)

func (s *Server) handleSendCode(c echo.Context) error {
	email := c.QueryParam("email")
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.ValidationError("invalid email address")
	}
	if err := s.app.SendEmailCode(c.Request().Context(), email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

type registerRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Code     string `json:"code"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return errors.ValidationError("invalid email address")
	}

	user, err := s.app.Register(c.Request().Context(), req.Account, req.Password, req.Email, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}

	token, identity, err := s.app.Login(c.Request().Context(), req.Account, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  identity,
	})
}

func (s *Server) handleCurrentUser(c echo.Context) error {
	identity := identityFrom(c)
	user, err := s.app.CurrentUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleLogout(c echo.Context) error {
	identity := identityFrom(c)
	if err := s.app.Logout(c.Request().Context(), bearerToken(c), identity.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}
