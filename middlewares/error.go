package middlewares

import (
	"errors"

	"github.com/i4rcu/magazam-inventory-system/ledger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
// Ledger errors map onto status codes here so controllers can return them
// as-is.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (400 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Domain errors from the ledger
	var notFound *ledger.NotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": notFound.Error()})
	}
	var conflict *ledger.ConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": conflict.Error()})
	}
	var short *ledger.InsufficientStockError
	if errors.As(err, &short) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":   short.Error(),
			"item_id":   short.ItemID,
			"available": short.Available,
			"required":  short.Required,
		})
	}
	var badQty *ledger.InvalidQuantityError
	if errors.As(err, &badQty) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": badQty.Error()})
	}
	var invalid *ledger.ValidationError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": invalid.Error()})
	}

	// 4) Unknown errors (500)
	zap.S().Errorw("internal error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
