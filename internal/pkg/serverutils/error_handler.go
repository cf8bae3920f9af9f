package serverutils

import (
	"errors"

	"notebot-be/internal/entity"

	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorHandlerMiddleware maps errors escaping the controllers onto a
// uniform JSON envelope. Domain not-found becomes 404, fiber errors keep
// their status, everything else is a 500 with a generic message.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fe *fiber.Error
		switch {
		case errors.Is(err, entity.ErrNoteNotFound):
			status = fiber.StatusNotFound
			message = err.Error()
		case errors.As(err, &fe):
			status = fe.Code
			message = fe.Message
		}

		return ctx.Status(status).JSON(errorBody{Success: false, Message: message})
	}
}
