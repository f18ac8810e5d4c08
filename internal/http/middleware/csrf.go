package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

const (
	CSRFHeader     = "X-CSRFToken"
	CSRFCookie     = "csrftoken"
	CSRFContextKey = "csrf"
	// CSRFFormField carries the token in plain HTML form posts, which cannot set headers.
	CSRFFormField = "csrfmiddlewaretoken"
)

// CSRF protects state-changing requests with a double-submit token: the csrftoken
// cookie must be echoed in the X-CSRFToken header or the csrfmiddlewaretoken form
// field. Safe methods mint the token.
// When disabled it passes every request through.
func CSRF(enabled, secure bool, onError fiber.ErrorHandler) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return csrf.New(csrf.Config{
		Extractor:      csrfFromHeaderOrForm,
		CookieName:     CSRFCookie,
		CookieSameSite: "Lax",
		CookieSecure:   secure,
		Expiration:     12 * time.Hour,
		ContextKey:     CSRFContextKey,
		ErrorHandler:   onError,
	})
}

var (
	csrfFromHeader = csrf.CsrfFromHeader(CSRFHeader)
	csrfFromForm   = csrf.CsrfFromForm(CSRFFormField)
)

func csrfFromHeaderOrForm(c *fiber.Ctx) (string, error) {
	if token, err := csrfFromHeader(c); err == nil {
		return token, nil
	}
	return csrfFromForm(c)
}

// CSRFToken returns the token minted for this request, or "" when CSRF is off.
func CSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CSRFContextKey).(string)
	return token
}
