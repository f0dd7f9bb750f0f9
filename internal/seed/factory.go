// Package seed creates demo data for development databases.
package seed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"inkpost/internal/models"
	"inkpost/internal/security"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "password"

// Same rule the signup form enforces.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z ]{3,20}$`)

func validUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	hasher security.PasswordHasher
	faker  *gofakeit.Faker
	// MaxDays bounds how far back generated timestamps reach.
	MaxDays int
	used    map[string]bool
}

// NewFactory creates a Factory. A seed of 0 picks a time-based seed.
func NewFactory(db *gorm.DB, hasher security.PasswordHasher, seed int64) *Factory {
	if hasher == nil {
		hasher = security.SaltedSHA256{}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:      db,
		hasher:  hasher,
		faker:   gofakeit.New(seed),
		MaxDays: 90,
		used:    make(map[string]bool),
	}
}

// Username generates a unique username that passes signup validation.
func (f *Factory) Username() string {
	for {
		name := lettersOnly(f.faker.FirstName() + f.faker.LastName())
		if len(name) > 17 {
			name = name[:17]
		}
		for len(name) < 3 || f.used[strings.ToLower(name)] {
			if len(name) >= 20 {
				name = name[:17]
			}
			name += f.faker.Letter()
		}
		if validUsername(name) {
			f.used[strings.ToLower(name)] = true
			return name
		}
	}
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// pastTime returns a random moment within the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	maxDays := f.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

// CreateUser persists a user with a generated username and DefaultPassword.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: f.Username(),
		Email:    f.faker.Email(),
		Password: DefaultPassword,
	}
	for _, override := range overrides {
		override(user)
	}
	f.used[strings.ToLower(user.Username)] = true

	hashed, err := f.hasher.Hash(user.Username, user.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", user.Username, err)
	}
	user.Password = hashed

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post by user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Subject:   strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content:   f.faker.Paragraph(2, 3, 12, "\n"),
		UserID:    user.ID,
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Omit("User").Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by user on post, dated after the post.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	created := post.CreatedAt.Add(time.Duration(f.faker.Number(1, 48*60)) * time.Minute)
	if created.After(time.Now()) {
		created = time.Now()
	}
	comment := &models.Comment{
		Content:   f.faker.Sentence(10),
		UserID:    user.ID,
		PostID:    post.ID,
		CreatedAt: created,
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.Omit("User").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like. Authors never like their own posts.
func (f *Factory) CreateLike(user *models.User, post *models.Post) (*models.Like, error) {
	if post.OwnedBy(user.ID) {
		return nil, fmt.Errorf("user %d cannot like own post %d", user.ID, post.ID)
	}
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	if err := f.db.Create(like).Error; err != nil {
		return nil, err
	}
	return like, nil
}

// chance reports true with probability p.
func (f *Factory) chance(p float64) bool {
	return f.faker.Float64() < p
}
