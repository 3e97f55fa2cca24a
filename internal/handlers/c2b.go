package handlers

import (
	"mpesagw/internal/services/c2b"
	"mpesagw/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type C2BHandler struct {
	c2bService c2b.Service
	log        *zap.Logger
}

func NewC2BHandler(c2bSvc c2b.Service, log *zap.Logger) *C2BHandler {
	return &C2BHandler{c2bService: c2bSvc, log: log}
}

// RegisterURLs registers confirmation and validation URLs for a shortcode.
func (h *C2BHandler) RegisterURLs(c *fiber.Ctx) error {
	var req c2b.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	resp, err := h.c2bService.RegisterURLs(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Callback URL registered successfully", resp)
}
