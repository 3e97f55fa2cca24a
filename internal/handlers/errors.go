package handlers

import (
	"errors"

	apperrors "mpesagw/internal/errors"
	"mpesagw/internal/services/mpesa"
	"mpesagw/internal/utils/response"
	"mpesagw/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps a service error onto the merchant-facing error shape.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return response.ValidationError(c, verrs)
	}

	var apiErr *mpesa.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message()
		if msg == "" {
			msg = apperrors.ErrProviderRejected.Message
		}
		if apiErr.Retryable() {
			return response.ErrorWithData(c, fiber.StatusInternalServerError, msg, apiErr.Body)
		}
		return response.ErrorWithData(c, apperrors.ErrProviderRejected.Status, msg, apiErr.Body)
	}

	if errors.Is(err, mpesa.ErrInvalidCredentials) {
		log.Warn("consumer credentials rejected", zap.String("path", c.Path()), zap.Error(err))
		return response.BadRequest(c, "Invalid M-PESA consumer credentials")
	}

	if errors.Is(err, mpesa.ErrProviderUnavailable) {
		return response.Error(c, fiber.StatusServiceUnavailable, "M-PESA is temporarily unavailable")
	}

	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Status == fiber.StatusNotFound {
			return response.NotFound(c, domainErr.Message)
		}
		return response.Error(c, domainErr.Status, domainErr.Message)
	}

	log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return response.ServerError(c, "Internal server error")
}
