package repository

import (
	"context"

	"inkpost/internal/cache"
	"inkpost/internal/models"

	"gorm.io/gorm"
)

// LikeRepository stores (user, post) like pairs.
type LikeRepository interface {
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	// Create reports false when the pair already existed.
	Create(ctx context.Context, like *models.Like) (bool, error)
	Delete(ctx context.Context, userID, postID uint) error
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) (bool, error) {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, like.PostID)
	return true, nil
}

// Delete is a no-op when the pair does not exist.
func (r *likeRepository) Delete(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
