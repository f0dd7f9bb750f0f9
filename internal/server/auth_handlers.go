package server

import (
	"errors"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupForm handles GET /blog/signup
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return s.render(c, "signup", fiber.Map{
		"Username": "",
		"Email":    "",
		"Errors":   map[string]string{},
	})
}

// Signup handles POST /blog/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	in := service.RegisterInput{
		Username:     c.FormValue("username"),
		Password:     c.FormValue("password"),
		Confirmation: c.FormValue("confirmation"),
		Email:        c.FormValue("email"),
	}

	user, err := s.userService.Register(c.UserContext(), in)
	if err != nil {
		if !models.IsValidation(err) {
			return err
		}
		fields := map[string]string{}
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Fields != nil {
			fields = appErr.Fields
		}
		return s.render(c, "signup", fiber.Map{
			"Username": in.Username,
			"Email":    in.Email,
			"Errors":   fields,
		})
	}

	s.session.Login(c, user, false)
	return c.Redirect("/blog")
}

// LoginForm handles GET /blog/login
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.render(c, "login", fiber.Map{"Username": "", "Error": ""})
}

// Login handles POST /blog/login
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	user, err := s.userService.Login(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		if !models.IsUnauthorized(err) {
			return err
		}
		return s.render(c, "login", fiber.Map{
			"Username": username,
			"Error":    service.MsgInvalidLogin,
		})
	}

	s.session.Login(c, user, c.FormValue("remember") != "")
	return c.Redirect("/blog")
}

// Logout handles GET and POST /blog/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if middleware.CurrentUser(c) != nil {
		observability.RecordEvent(observability.EventLogout)
	}
	s.session.Logout(c)
	return c.Redirect("/blog")
}
