package service

import (
	"context"
	"log/slog"
	"regexp"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"
	"inkpost/internal/security"

	"go.opentelemetry.io/otel/attribute"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z ]{3,20}$`)
	passwordPattern = regexp.MustCompile(`^.{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[\S]+@[\S]+\.[\S]+$`)
)

// Form error messages shown on the signup and login pages.
const (
	MsgInvalidUsername  = "That's not a valid username."
	MsgUsernameTaken    = "That username already exists."
	MsgInvalidEmail     = "That's not a valid email."
	MsgInvalidPassword  = "That's not a valid password"
	MsgPasswordMismatch = "Your password didn't match."
	MsgInvalidLogin     = "Invalid username or password"
)

type UserService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
}

type RegisterInput struct {
	Username     string
	Password     string
	Confirmation string
	Email        string
}

func NewUserService(userRepo repository.UserRepository, hasher security.PasswordHasher) *UserService {
	if hasher == nil {
		hasher = security.SaltedSHA256{}
	}
	return &UserService{userRepo: userRepo, hasher: hasher}
}

// Register validates the signup form and creates the account. Validation
// failures are reported per field ("username", "email", "password", "confirmation").
func (s *UserService) Register(ctx context.Context, in RegisterInput) (_ *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "UserService.Register")
	defer func() { observability.EndSpan(span, err) }()

	fields := make(map[string]string)

	if !usernamePattern.MatchString(in.Username) {
		fields["username"] = MsgInvalidUsername
	} else {
		existing, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fields["username"] = MsgUsernameTaken
		}
	}

	if in.Email != "" && !emailPattern.MatchString(in.Email) {
		fields["email"] = MsgInvalidEmail
	}

	if !passwordPattern.MatchString(in.Password) {
		fields["password"] = MsgInvalidPassword
	} else if in.Password != in.Confirmation {
		fields["confirmation"] = MsgPasswordMismatch
	}

	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	hashed, err := s.hasher.Hash(in.Username, in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if models.IsConflict(err) {
			return nil, models.NewFieldValidationError(map[string]string{"username": MsgUsernameTaken})
		}
		return nil, err
	}

	observability.RecordEvent(observability.EventSignup)
	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("new_user_id", uint64(user.ID)))
	return user, nil
}

// Login checks the credentials against the stored hash of either scheme.
func (s *UserService) Login(ctx context.Context, username, password string) (_ *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "UserService.Login", attribute.String("username", username))
	defer func() { observability.EndSpan(span, err) }()

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(username, password, user.Password) {
		observability.RecordEvent(observability.EventLoginFailed)
		return nil, models.NewUnauthorizedError(MsgInvalidLogin)
	}

	observability.RecordEvent(observability.EventLogin)
	return user, nil
}

// GetUser resolves a session's user id.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
