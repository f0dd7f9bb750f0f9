package server

import (
	"fmt"
	"strconv"

	"inkpost/internal/middleware"
	"inkpost/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a positive route parameter.
func parseID(c *fiber.Ctx, param string) (uint, bool) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// parsePage reads ?page=, defaulting to 1 when absent or not an integer.
// Out-of-range values pass through unchanged.
func parsePage(c *fiber.Ctx) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return page
}

func postURL(id uint) string {
	return fmt.Sprintf("/blog/%d", id)
}

// handleServiceError turns authorization failures into silent redirects.
// Anything else goes to the error handler.
func handleServiceError(c *fiber.Ctx, err error) error {
	switch models.ErrorCode(err) {
	case models.CodeUnauthorized:
		return c.Redirect("/blog/login")
	case models.CodeNotFound, models.CodeForbidden:
		return c.Redirect("/blog")
	default:
		return err
	}
}

// render executes a page with the session user added to data.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["CurrentUser"] = middleware.CurrentUser(c)
	return c.Render(name, data)
}
