package service

import (
	"context"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"
)

type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo}
}

func (s *LikeService) likeablePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.OwnedBy(userID) {
		return nil, models.NewForbiddenError("Cannot like your own post")
	}
	return post, nil
}

// Like is idempotent: liking an already liked post succeeds without a second row.
func (s *LikeService) Like(ctx context.Context, userID, postID uint) error {
	if _, err := s.likeablePost(ctx, userID, postID); err != nil {
		return err
	}

	exists, err := s.likeRepo.Exists(ctx, userID, postID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	created, err := s.likeRepo.Create(ctx, &models.Like{UserID: userID, PostID: postID})
	if err != nil {
		return err
	}
	if created {
		observability.RecordEvent(observability.EventLike)
	}
	return nil
}

// Unlike removes the like if present.
func (s *LikeService) Unlike(ctx context.Context, userID, postID uint) error {
	if _, err := s.likeablePost(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.likeRepo.Delete(ctx, userID, postID); err != nil {
		return err
	}
	observability.RecordEvent(observability.EventUnlike)
	return nil
}

func (s *LikeService) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.likeRepo.Exists(ctx, userID, postID)
}
