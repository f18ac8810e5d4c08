package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"courseportal/internal/model"
)

const (
	// SessionCookie carries the opaque session token.
	SessionCookie = "sessionid"

	sessionLocalKey      = "session"
	sessionTokenLocalKey = "session_token"
)

// SessionResolver turns a token into a live session, or nil when there is none.
type SessionResolver interface {
	Current(ctx context.Context, token string) (*model.Session, error)
}

// Session resolves the caller's session from the sessionid cookie, falling back to
// an "Authorization: Bearer" header, and stores it in locals. Requests without a
// session continue anonymously; the services decide what that caller may do.
func Session(r SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if token == "" {
			return c.Next()
		}

		c.Locals(sessionTokenLocalKey, token)
		sess, err := r.Current(c.UserContext(), token)
		if err != nil {
			return err
		}
		if sess != nil {
			c.Locals(sessionLocalKey, sess)
		}
		return c.Next()
	}
}

// CurrentSession returns the session resolved for this request, or nil.
func CurrentSession(c *fiber.Ctx) *model.Session {
	sess, _ := c.Locals(sessionLocalKey).(*model.Session)
	return sess
}

// SessionToken returns the raw token presented by the caller, even when it no longer resolves.
func SessionToken(c *fiber.Ctx) string {
	token, _ := c.Locals(sessionTokenLocalKey).(string)
	return token
}
