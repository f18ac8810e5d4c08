package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS lets the listed browser origins call the API with cookies.
// The session and CSRF headers are allowed so a separately hosted frontend can use both.
func CORS(origins string) fiber.Handler {
	list := make([]string, 0)
	for _, o := range strings.Split(origins, ",") {
		// A wildcard cannot be combined with credentials.
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			list = append(list, o)
		}
	}
	if len(list) == 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(list, ","),
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization," + CSRFHeader + "," + RequestIDHeader,
		ExposeHeaders:    RequestIDHeader,
		AllowCredentials: true,
	})
}
