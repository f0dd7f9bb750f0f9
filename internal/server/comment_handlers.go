package server

import (
	"fmt"
	"strconv"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /blog/new_comment
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := strconv.ParseUint(c.FormValue("post_id"), 10, 64)
	if err != nil || postID == 0 {
		return c.Redirect("/blog")
	}

	content := c.FormValue("content")
	_, err = s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  middleware.CurrentUserID(c),
		PostID:  uint(postID),
		Content: content,
	})
	if err != nil {
		if models.IsValidation(err) {
			return s.renderPermalink(c, uint(postID), content, service.MsgCommentRequired)
		}
		return handleServiceError(c, err)
	}
	return c.Redirect(postURL(uint(postID)))
}

// UpdateComment handles POST /blog/edit_comment/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Redirect("/blog")
	}

	// The permalink page names each comment's textarea content-<id>.
	content := c.FormValue(fmt.Sprintf("content-%d", id))
	if content == "" {
		content = c.FormValue("content")
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    middleware.CurrentUserID(c),
		CommentID: id,
		Content:   content,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect(postURL(comment.PostID))
}

// DeleteComment handles POST /blog/delete_comment/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Redirect("/blog")
	}

	comment, err := s.commentService.DeleteComment(c.UserContext(), id, middleware.CurrentUserID(c))
	if err != nil {
		if models.IsForbidden(err) && comment != nil {
			return c.Redirect(postURL(comment.PostID))
		}
		return handleServiceError(c, err)
	}
	return c.Redirect(postURL(comment.PostID))
}
