package service

import (
	"context"

	"inkpost/internal/models"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	getByIDFn         func(context.Context, uint) (*models.Post, error)
	updateFn          func(context.Context, *models.Post) error
	deleteWithLikesFn func(context.Context, uint) error
	countFn           func(context.Context) (int64, error)
	listFn            func(context.Context, int, int) ([]*models.Post, error)
	countByUserFn     func(context.Context, uint) (int64, error)
	listByUserFn      func(context.Context, uint, int, int) ([]*models.Post, error)
	countLikedByFn    func(context.Context, uint) (int64, error)
	listLikedByFn     func(context.Context, uint, int, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) DeleteWithLikes(ctx context.Context, id uint) error {
	return s.deleteWithLikesFn(ctx, id)
}
func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countByUserFn(ctx, userID)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) CountLikedBy(ctx context.Context, userID uint) (int64, error) {
	return s.countLikedByFn(ctx, userID)
}
func (s *postRepoStub) ListLikedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listLikedByFn(ctx, userID, limit, offset)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:          func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:         func(_ context.Context, id uint) (*models.Post, error) { return nil, models.NewNotFoundError("Post", id) },
		updateFn:          func(_ context.Context, _ *models.Post) error { return nil },
		deleteWithLikesFn: func(_ context.Context, _ uint) error { return nil },
		countFn:           func(_ context.Context) (int64, error) { return 0, nil },
		listFn:            func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		countByUserFn:     func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listByUserFn:      func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		countLikedByFn:    func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listLikedByFn:     func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
	}
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, *models.Comment) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, comment *models.Comment) error {
	return s.deleteFn(ctx, comment)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return nil, models.NewNotFoundError("Comment", id) },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:     func(_ context.Context, _ *models.Comment) error { return nil },
	}
}

// likeRepoStub keeps likes in memory keyed by (user, post).
type likeRepoStub struct {
	likes     map[[2]uint]bool
	creates   int
	existsErr error
}

func newLikeRepoStub() *likeRepoStub {
	return &likeRepoStub{likes: make(map[[2]uint]bool)}
}

func (s *likeRepoStub) Exists(_ context.Context, userID, postID uint) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.likes[[2]uint{userID, postID}], nil
}
func (s *likeRepoStub) Create(_ context.Context, like *models.Like) (bool, error) {
	s.creates++
	key := [2]uint{like.UserID, like.PostID}
	if s.likes[key] {
		return false, nil
	}
	s.likes[key] = true
	return true, nil
}
func (s *likeRepoStub) Delete(_ context.Context, userID, postID uint) error {
	delete(s.likes, [2]uint{userID, postID})
	return nil
}
func (s *likeRepoStub) CountByPost(_ context.Context, postID uint) (int64, error) {
	var n int64
	for key := range s.likes {
		if key[1] == postID {
			n++
		}
	}
	return n, nil
}
