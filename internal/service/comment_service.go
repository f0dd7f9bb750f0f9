package service

import (
	"context"
	"strings"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"
)

// MsgCommentRequired is shown on the post page when a comment is empty.
const MsgCommentRequired = "Comment is needed"

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// CreateComment requires the post to exist before the content is validated.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError(MsgCommentRequired)
	}

	comment := &models.Comment{
		UserID:  in.UserID,
		PostID:  in.PostID,
		Content: in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	observability.RecordEvent(observability.EventCommentCreated)
	return comment, nil
}

func (s *CommentService) getOwned(ctx context.Context, id, userID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !comment.OwnedBy(userID) {
		return comment, models.NewForbiddenError("Not the comment owner")
	}
	return comment, nil
}

// UpdateComment leaves the comment untouched when the new content is empty.
// On a forbidden error the comment is still returned so callers can find its post.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.getOwned(ctx, in.CommentID, in.UserID)
	if err != nil {
		return comment, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return comment, nil
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	observability.RecordEvent(observability.EventCommentUpdated)
	return comment, nil
}

// DeleteComment removes an owned comment. The comment is returned in both
// the success and forbidden cases.
func (s *CommentService) DeleteComment(ctx context.Context, id, userID uint) (*models.Comment, error) {
	comment, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return comment, err
	}
	if err := s.commentRepo.Delete(ctx, comment); err != nil {
		return nil, err
	}

	observability.RecordEvent(observability.EventCommentDeleted)
	return comment, nil
}
