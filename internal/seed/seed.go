package seed

import (
	"context"
	"fmt"
	"log/slog"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/security"

	"gorm.io/gorm"
)

// Summary counts what a seeding run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Seeder populates a database from presets.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder whose users are hashed with hasher.
func NewSeeder(db *gorm.DB, hasher security.PasswordHasher, seed int64) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, hasher, seed)}
}

// ClearAll removes every row from the blog tables, soft-deleted rows included.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// ApplyPreset loads the named embedded preset and runs it.
func (s *Seeder) ApplyPreset(ctx context.Context, name string) (*Summary, error) {
	p, err := LoadPreset(name)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, p)
}

// Run creates the preset's accounts and generated users, then posts, comments
// and likes spread across them.
func (s *Seeder) Run(ctx context.Context, p *Preset) (*Summary, error) {
	sum := &Summary{}
	f := s.factory
	f.db = s.db.WithContext(ctx)

	users := make([]*models.User, 0, len(p.Accounts)+p.Users)
	for _, a := range p.Accounts {
		user, err := f.CreateUser(func(u *models.User) {
			u.Username = a.Username
			u.Email = a.Email
			if a.Password != "" {
				u.Password = a.Password
			}
		})
		if err != nil {
			return sum, fmt.Errorf("create account %s: %w", a.Username, err)
		}
		users = append(users, user)
	}
	for i := 0; i < p.Users; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	sum.Users = len(users)

	posts := make([]*models.Post, 0, len(users)*p.PostsPerUser)
	for _, user := range users {
		for i := 0; i < p.PostsPerUser; i++ {
			post, err := f.CreatePost(user)
			if err != nil {
				return sum, fmt.Errorf("create post: %w", err)
			}
			posts = append(posts, post)
		}
	}
	sum.Posts = len(posts)

	for _, post := range posts {
		for i := 0; i < p.CommentsPerPost && len(users) > 0; i++ {
			author := users[f.faker.Number(0, len(users)-1)]
			if _, err := f.CreateComment(author, post); err != nil {
				return sum, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}

		for _, user := range users {
			if post.OwnedBy(user.ID) || !f.chance(p.LikeRatio) {
				continue
			}
			if _, err := f.CreateLike(user, post); err != nil {
				return sum, fmt.Errorf("create like: %w", err)
			}
			sum.Likes++
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding complete",
		slog.String("preset", p.Name),
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("likes", sum.Likes),
	)
	return sum, nil
}
