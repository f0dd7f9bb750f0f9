package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"inkpost/internal/models"
	"inkpost/internal/security"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the signed user id.
const SessionCookieName = "user_id"

// rememberExpiry keeps "remember me" sessions alive indefinitely.
var rememberExpiry = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// UserLookup resolves a user id to a user.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// Session resolves the signed session cookie to a user on every request and
// issues or clears that cookie on login and logout.
type Session struct {
	codec  *security.CookieCodec
	users  UserLookup
	secure bool
}

// NewSession creates a Session. secure marks issued cookies HTTPS-only.
func NewSession(codec *security.CookieCodec, users UserLookup, secure bool) *Session {
	return &Session{codec: codec, users: users, secure: secure}
}

// Middleware stores the session user in locals ("user", "userID") and in the
// request context. Any failure leaves the request anonymous.
func (s *Session) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user := s.resolve(c); user != nil {
			c.Locals("user", user)
			c.Locals("userID", user.ID)
			c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))
		}
		return c.Next()
	}
}

func (s *Session) resolve(c *fiber.Ctx) *models.User {
	raw := c.Cookies(SessionCookieName)
	if raw == "" {
		return nil
	}
	value, ok := s.codec.Verify(raw)
	if !ok {
		return nil
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	user, err := s.users.GetUser(c.UserContext(), uint(id))
	if err != nil {
		if !models.IsNotFound(err) {
			Logger.WarnContext(c.UserContext(), "session user lookup failed",
				slog.Uint64("session_user_id", id), slog.String("error", err.Error()))
		}
		return nil
	}
	return user
}

// Login issues a signed cookie for user. remember sets a far-future expiry;
// otherwise the cookie lasts for the browser session.
func (s *Session) Login(c *fiber.Ctx, user *models.User, remember bool) {
	cookie := &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    s.codec.Sign(strconv.FormatUint(uint64(user.ID), 10)),
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if remember {
		cookie.Expires = rememberExpiry
	}
	c.Cookie(cookie)
	c.Locals("user", user)
	c.Locals("userID", user.ID)
}

// Logout overwrites the session cookie with an empty, already expired value.
func (s *Session) Logout(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals("user", nil)
	c.Locals("userID", nil)
}

// CurrentUser returns the session user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// CurrentUserID returns the session user id, or 0 for anonymous requests.
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}
