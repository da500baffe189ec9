package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/booknest/booknest/internal/apperr"
)

// respondError maps a service error to its HTTP status. Anything that
// is not an apperr is logged and surfaced as a bare 500; causes never
// reach the client.
func respondError(c *fiber.Ctx, err error) error {
	if ae := apperr.As(err); ae != nil {
		if ae.Cause != nil {
			log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), ae.Cause)
		}
		return c.Status(ae.Status).JSON(fiber.Map{
			"message": ae.Message,
			"status":  ae.Status,
			"code":    ae.Code,
		})
	}
	log.Printf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
		"status":  fiber.StatusInternalServerError,
	})
}
