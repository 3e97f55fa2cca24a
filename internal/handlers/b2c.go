package handlers

import (
	"mpesagw/internal/services/b2c"
	"mpesagw/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type B2CHandler struct {
	b2cService b2c.Service
	log        *zap.Logger
}

func NewB2CHandler(b2cSvc b2c.Service, log *zap.Logger) *B2CHandler {
	return &B2CHandler{b2cService: b2cSvc, log: log}
}

// Initiate sends a business payment to a customer.
func (h *B2CHandler) Initiate(c *fiber.Ctx) error {
	var req b2c.InitiateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	resp, err := h.b2cService.Initiate(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Transaction request has been initiated successfully.", resp)
}
