package server

import (
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) renderPostList(c *fiber.Ctx, heading, baseURL string, page *service.PostPage) error {
	return s.render(c, "main", fiber.Map{
		"Heading": heading,
		"Posts":   page.Posts,
		"Page":    page.Page,
		"BaseURL": baseURL,
	})
}

// MainPage handles GET /blog
func (s *Server) MainPage(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return s.renderPostList(c, "Recent posts", "/blog", page)
}

// MyPostsPage handles GET /blog/my_posts
func (s *Server) MyPostsPage(c *fiber.Ctx) error {
	page, err := s.postService.ListUserPosts(c.UserContext(), middleware.CurrentUserID(c), parsePage(c))
	if err != nil {
		return err
	}
	return s.renderPostList(c, "My posts", "/blog/my_posts", page)
}

// LikedPostsPage handles GET /blog/liked_posts
func (s *Server) LikedPostsPage(c *fiber.Ctx) error {
	page, err := s.postService.ListLikedPosts(c.UserContext(), middleware.CurrentUserID(c), parsePage(c))
	if err != nil {
		return err
	}
	return s.render(c, "likeposts", fiber.Map{
		"Posts": page.Posts,
		"Page":  page.Page,
	})
}

// AboutPage handles GET /blog/about
func (s *Server) AboutPage(c *fiber.Ctx) error {
	return s.render(c, "about", nil)
}

// PostPage handles GET /blog/:id
func (s *Server) PostPage(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Redirect("/blog")
	}
	return s.renderPermalink(c, id, "", "")
}

// renderPermalink shows a post with its comments. content and errMsg refill
// the comment form after a rejected submission.
func (s *Server) renderPermalink(c *fiber.Ctx, postID uint, content, errMsg string) error {
	detail, err := s.postService.GetPostDetail(c.UserContext(), postID, middleware.CurrentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return s.render(c, "permalink", fiber.Map{
		"Post":     detail.Post,
		"Comments": detail.Comments,
		"Liked":    detail.Liked,
		"Content":  content,
		"Error":    errMsg,
	})
}

// NewPostForm handles GET /blog/new_post
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	return s.render(c, "newpost", fiber.Map{"Subject": "", "Content": "", "Error": ""})
}

// CreatePost handles POST /blog/new_post
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in := service.CreatePostInput{
		UserID:  middleware.CurrentUserID(c),
		Subject: c.FormValue("subject"),
		Content: c.FormValue("content"),
	}
	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		if models.IsValidation(err) {
			return s.render(c, "newpost", fiber.Map{
				"Subject": in.Subject,
				"Content": in.Content,
				"Error":   service.MsgPostFieldsRequired,
			})
		}
		return handleServiceError(c, err)
	}
	return c.Redirect(postURL(post.ID))
}

// EditPostForm handles GET /blog/edit_post/:id
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Redirect("/blog")
	}
	post, err := s.postService.GetOwnedPost(c.UserContext(), id, middleware.CurrentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return s.render(c, "editpost", fiber.Map{
		"PostID":  post.ID,
		"Subject": post.Subject,
		"Content": post.Content,
		"Error":   "",
	})
}

// UpdatePost handles POST /blog/edit_post/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Redirect("/blog")
	}
	in := service.UpdatePostInput{
		UserID:  middleware.CurrentUserID(c),
		PostID:  id,
		Subject: c.FormValue("subject"),
		Content: c.FormValue("content"),
	}
	post, err := s.postService.UpdatePost(c.UserContext(), in)
	if err != nil {
		if models.IsValidation(err) {
			return s.render(c, "editpost", fiber.Map{
				"PostID":  id,
				"Subject": in.Subject,
				"Content": in.Content,
				"Error":   service.MsgPostFieldsRequired,
			})
		}
		return handleServiceError(c, err)
	}
	return c.Redirect(postURL(post.ID))
}

// DeletePost handles POST /blog/delete_post/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Redirect("/blog")
	}
	if err := s.postService.DeletePost(c.UserContext(), id, middleware.CurrentUserID(c)); err != nil {
		return handleServiceError(c, err)
	}
	return c.Redirect("/blog")
}
