package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// New returns a middleware that assigns every request a unique ray id,
// stored in locals for log correlation and echoed in the X-Ray-ID header.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := uuid.NewString()
		c.Locals("ray_id", rid)
		c.Set("X-Ray-ID", rid)
		return c.Next()
	}
}
