package service

import (
	"context"
	"testing"

	"inkpost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownedPostRepo(ownerID uint) *postRepoStub {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		if id != 10 {
			return nil, models.NewNotFoundError("Post", id)
		}
		return &models.Post{ID: 10, UserID: ownerID, Subject: "s", Content: "c"}, nil
	}
	return repo
}

func TestPostService_CreatePost(t *testing.T) {
	repo := noopPostRepo()
	var stored *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 42
		stored = p
		return nil
	}
	svc := NewPostService(repo, noopCommentRepo(), newLikeRepoStub())
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Subject: "", Content: "body"})
	assertValidationError(t, err)
	_, err = svc.CreatePost(ctx, CreatePostInput{UserID: 1, Subject: "title", Content: "   "})
	assertValidationError(t, err)
	assert.Nil(t, stored)

	_, err = svc.CreatePost(ctx, CreatePostInput{Subject: "title", Content: "body"})
	appErrorOf(t, err, models.CodeUnauthorized)

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Subject: "title", Content: "body"})
	require.NoError(t, err)
	assert.EqualValues(t, 42, post.ID)
	assert.EqualValues(t, 1, stored.UserID)
}

func TestPostService_UpdatePostOwnership(t *testing.T) {
	repo := ownedPostRepo(1)
	updates := 0
	repo.updateFn = func(_ context.Context, _ *models.Post) error {
		updates++
		return nil
	}
	svc := NewPostService(repo, noopCommentRepo(), newLikeRepoStub())
	ctx := context.Background()

	_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: 2, PostID: 10, Subject: "x", Content: "y"})
	appErrorOf(t, err, models.CodeForbidden)

	_, err = svc.UpdatePost(ctx, UpdatePostInput{UserID: 2, PostID: 10})
	appErrorOf(t, err, models.CodeForbidden)

	_, err = svc.UpdatePost(ctx, UpdatePostInput{UserID: 1, PostID: 11, Subject: "x", Content: "y"})
	appErrorOf(t, err, models.CodeNotFound)

	_, err = svc.UpdatePost(ctx, UpdatePostInput{UserID: 1, PostID: 10, Subject: "", Content: "y"})
	assertValidationError(t, err)
	assert.Zero(t, updates)

	post, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: 1, PostID: 10, Subject: "new", Content: "text"})
	require.NoError(t, err)
	assert.Equal(t, "new", post.Subject)
	assert.Equal(t, 1, updates)
}

func TestPostService_DeletePost(t *testing.T) {
	repo := ownedPostRepo(1)
	var deleted []uint
	repo.deleteWithLikesFn = func(_ context.Context, id uint) error {
		deleted = append(deleted, id)
		return nil
	}
	svc := NewPostService(repo, noopCommentRepo(), newLikeRepoStub())
	ctx := context.Background()

	appErrorOf(t, svc.DeletePost(ctx, 10, 2), models.CodeForbidden)
	appErrorOf(t, svc.DeletePost(ctx, 10, 0), models.CodeForbidden)
	appErrorOf(t, svc.DeletePost(ctx, 99, 1), models.CodeNotFound)
	assert.Empty(t, deleted)

	require.NoError(t, svc.DeletePost(ctx, 10, 1))
	assert.Equal(t, []uint{10}, deleted)
}

func TestPostService_ListPostsPaging(t *testing.T) {
	repo := noopPostRepo()
	repo.countFn = func(_ context.Context) (int64, error) { return 12, nil }
	var calls [][2]int
	repo.listFn = func(_ context.Context, limit, offset int) ([]*models.Post, error) {
		calls = append(calls, [2]int{limit, offset})
		n := 12 - offset
		if n > limit {
			n = limit
		}
		posts := make([]*models.Post, n)
		for i := range posts {
			posts[i] = &models.Post{ID: uint(12 - offset - i)}
		}
		return posts, nil
	}
	svc := NewPostService(repo, noopCommentRepo(), newLikeRepoStub())
	ctx := context.Background()

	sizes := []int{5, 5, 2}
	for i, want := range sizes {
		page, err := svc.ListPosts(ctx, i+1)
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalPages)
		assert.Len(t, page.Posts, want)
	}
	assert.Equal(t, [][2]int{{5, 0}, {5, 5}, {5, 10}}, calls)

	for _, n := range []int{4, 0, -1} {
		page, err := svc.ListPosts(ctx, n)
		require.NoError(t, err)
		assert.Empty(t, page.Posts, "page %d", n)
	}
	assert.Len(t, calls, 3, "out-of-range pages skip the list query")
}

func TestPostService_UserAndLikedLists(t *testing.T) {
	repo := noopPostRepo()
	repo.countByUserFn = func(_ context.Context, userID uint) (int64, error) { return int64(userID), nil }
	repo.listByUserFn = func(_ context.Context, userID uint, _, _ int) ([]*models.Post, error) {
		return []*models.Post{{UserID: userID}}, nil
	}
	repo.countLikedByFn = func(_ context.Context, _ uint) (int64, error) { return 6, nil }
	repo.listLikedByFn = func(_ context.Context, _ uint, limit, offset int) ([]*models.Post, error) {
		assert.Equal(t, 5, limit)
		assert.Equal(t, 5, offset)
		return []*models.Post{{ID: 1}}, nil
	}
	svc := NewPostService(repo, noopCommentRepo(), newLikeRepoStub())
	ctx := context.Background()

	mine, err := svc.ListUserPosts(ctx, 3, 1)
	require.NoError(t, err)
	require.Len(t, mine.Posts, 1)
	assert.EqualValues(t, 3, mine.Posts[0].UserID)

	liked, err := svc.ListLikedPosts(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, liked.TotalPages)
	assert.Len(t, liked.Posts, 1)
}

func TestPostService_GetPostDetail(t *testing.T) {
	repo := ownedPostRepo(1)
	comments := noopCommentRepo()
	comments.listByPostFn = func(_ context.Context, postID uint) ([]*models.Comment, error) {
		return []*models.Comment{{ID: 1, PostID: postID, Content: "hi"}}, nil
	}
	likes := newLikeRepoStub()
	likes.likes[[2]uint{2, 10}] = true
	svc := NewPostService(repo, comments, likes)
	ctx := context.Background()

	detail, err := svc.GetPostDetail(ctx, 10, 2)
	require.NoError(t, err)
	assert.True(t, detail.Liked)
	assert.Len(t, detail.Comments, 1)

	detail, err = svc.GetPostDetail(ctx, 10, 0)
	require.NoError(t, err)
	assert.False(t, detail.Liked)

	// A stray self-like row never shows as liked to the owner.
	likes.likes[[2]uint{1, 10}] = true
	detail, err = svc.GetPostDetail(ctx, 10, 1)
	require.NoError(t, err)
	assert.False(t, detail.Liked)

	_, err = svc.GetPostDetail(ctx, 5, 2)
	appErrorOf(t, err, models.CodeNotFound)
}
