package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/booknest/booknest/internal/apperr"
)

// AdminOnly runs after Auth and rejects non-admin users.
func AdminOnly(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return reject(c, apperr.Unauthenticated("missing token"))
	}
	if !user.IsAdmin {
		return reject(c, apperr.Forbidden("access denied, admins only"))
	}
	return c.Next()
}
