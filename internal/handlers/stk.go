package handlers

import (
	"errors"

	"mpesagw/internal/services/stk"
	"mpesagw/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type STKHandler struct {
	stkService stk.Service
	log        *zap.Logger
}

func NewSTKHandler(stkSvc stk.Service, log *zap.Logger) *STKHandler {
	return &STKHandler{stkService: stkSvc, log: log}
}

// Initiate raises an STK push prompt on the customer's phone.
func (h *STKHandler) Initiate(c *fiber.Ctx) error {
	var req stk.InitiateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	result, err := h.stkService.Initiate(c.UserContext(), req)
	if errors.Is(err, stk.ErrRejected) && result != nil {
		return response.ErrorWithData(c, fiber.StatusBadRequest, result.Response.ResponseDescription, result.Response)
	}
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"status":            response.StatusSuccess,
		"message":           result.Response.ResponseDescription,
		"data":              result.Response,
		"account_reference": result.AccountReference,
	})
}
