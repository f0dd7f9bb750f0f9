package service

import (
	"context"
	"log/slog"
	"strings"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// MsgPostFieldsRequired is shown when a post form lacks subject or content.
const MsgPostFieldsRequired = "Subject and Content are needed"

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likes       *LikeService
}

type CreatePostInput struct {
	UserID  uint
	Subject string
	Content string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Subject string
	Content string
}

// PostDetail is everything the permalink page shows.
type PostDetail struct {
	Post     *models.Post
	Comments []*models.Comment
	Liked    bool
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likes:       NewLikeService(likeRepo, postRepo),
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError(MsgPostFieldsRequired)
	}

	post := &models.Post{
		UserID:  in.UserID,
		Subject: in.Subject,
		Content: in.Content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	observability.RecordEvent(observability.EventPostCreated)
	middleware.Logger.InfoContext(ctx, "post created", slog.Uint64("post_id", uint64(post.ID)))
	return post, nil
}

// GetPostDetail loads the post, its comments and whether viewerID liked it.
func (s *PostService) GetPostDetail(ctx context.Context, id, viewerID uint) (_ *PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "PostService.GetPostDetail", attribute.Int64("post_id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &PostDetail{Post: post, Comments: comments}
	if !post.OwnedBy(viewerID) {
		liked, err := s.likes.IsLiked(ctx, viewerID, id)
		if err != nil {
			return nil, err
		}
		detail.Liked = liked
	}
	return detail, nil
}

// GetOwnedPost returns the post only when userID owns it.
func (s *PostService) GetOwnedPost(ctx context.Context, id, userID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.OwnedBy(userID) {
		return nil, models.NewForbiddenError("Not the post owner")
	}
	return post, nil
}

// UpdatePost checks ownership before validating the form.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.GetOwnedPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError(MsgPostFieldsRequired)
	}

	post.Subject = in.Subject
	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	observability.RecordEvent(observability.EventPostUpdated)
	return post, nil
}

// DeletePost removes an owned post together with its likes.
func (s *PostService) DeletePost(ctx context.Context, id, userID uint) error {
	if _, err := s.GetOwnedPost(ctx, id, userID); err != nil {
		return err
	}
	if err := s.postRepo.DeleteWithLikes(ctx, id); err != nil {
		return err
	}

	observability.RecordEvent(observability.EventPostDeleted)
	middleware.Logger.InfoContext(ctx, "post deleted", slog.Uint64("post_id", uint64(id)))
	return nil
}

func (s *PostService) ListPosts(ctx context.Context, page int) (*PostPage, error) {
	return s.listPage(ctx, page, s.postRepo.Count, s.postRepo.List)
}

func (s *PostService) ListUserPosts(ctx context.Context, userID uint, page int) (*PostPage, error) {
	return s.listPage(ctx, page,
		func(ctx context.Context) (int64, error) { return s.postRepo.CountByUser(ctx, userID) },
		func(ctx context.Context, limit, offset int) ([]*models.Post, error) {
			return s.postRepo.ListByUser(ctx, userID, limit, offset)
		},
	)
}

func (s *PostService) ListLikedPosts(ctx context.Context, userID uint, page int) (*PostPage, error) {
	return s.listPage(ctx, page,
		func(ctx context.Context) (int64, error) { return s.postRepo.CountLikedBy(ctx, userID) },
		func(ctx context.Context, limit, offset int) ([]*models.Post, error) {
			return s.postRepo.ListLikedBy(ctx, userID, limit, offset)
		},
	)
}

func (s *PostService) listPage(
	ctx context.Context,
	number int,
	count func(context.Context) (int64, error),
	list func(ctx context.Context, limit, offset int) ([]*models.Post, error),
) (*PostPage, error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}

	result := &PostPage{Page: Paginate(total, PostsPerPage, number)}
	if result.Empty() {
		return result, nil
	}

	posts, err := list(ctx, result.Limit(), result.Offset)
	if err != nil {
		return nil, err
	}
	result.Posts = posts
	return result, nil
}
