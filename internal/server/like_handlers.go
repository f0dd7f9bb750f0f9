package server

import (
	"inkpost/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /blog/like/:id
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Redirect("/blog")
	}
	if err := s.likeService.Like(c.UserContext(), middleware.CurrentUserID(c), id); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect(postURL(id))
}

// UnlikePost handles POST /blog/unlike/:id
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Redirect("/blog")
	}
	if err := s.likeService.Unlike(c.UserContext(), middleware.CurrentUserID(c), id); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect(postURL(id))
}
