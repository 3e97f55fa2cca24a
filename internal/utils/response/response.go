package response

import (
	"github.com/gofiber/fiber/v2"
)

// Response statuses
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	body := fiber.Map{
		"status": StatusSuccess,
		"data":   data,
	}
	if message != "" {
		body["message"] = message
	}
	return c.JSON(body)
}

// List always renders data as a JSON array, even when nothing matched.
func List[T any](c *fiber.Ctx, items []T) error {
	if items == nil {
		items = []T{}
	}
	body := fiber.Map{
		"status": StatusSuccess,
		"data":   items,
	}
	if len(items) == 0 {
		body["message"] = "No records found"
	}
	return c.JSON(body)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  StatusError,
		"message": message,
	})
}

func ErrorWithData(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  StatusError,
		"message": message,
		"error":   data,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func NotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  StatusNotFound,
		"message": message,
	})
}

// ValidationError renders field failures with 422.
func ValidationError(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fields)
}
