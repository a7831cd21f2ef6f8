package middlewares

import (
	"strings"

	"github.com/i4rcu/magazam-inventory-system/database"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Tx opens a per-request DB transaction for authenticated routes, so a
// ledger operation's load and save observe and leave one consistent
// aggregate. Run AFTER IsAuthenticatedHeader() (so userID is present)
// and AFTER Idempotency() (so idempotency records aren't tied to the
// handler TX).
func Tx() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		userID, _ := c.Locals("userID").(string)
		if strings.TrimSpace(userID) == "" {
			// Public endpoints (e.g., /login) won't have a user; just proceed.
			return c.Next()
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		// Ensure we always cleanup.
		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r) // re-panic after rollback so Fiber's handler can catch
			}
			if err != nil {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				zap.S().Errorw("tx commit failed", "error", e)
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
			}
		}()

		// Make the TX available to handlers via database.FromCtx(c).
		c.Locals("tx", tx)

		err = c.Next()
		return err
	}
}
