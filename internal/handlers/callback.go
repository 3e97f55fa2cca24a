package handlers

import (
	"errors"

	"mpesagw/internal/services/mpesa"
	"mpesagw/internal/services/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Acknowledgement bodies expected by Daraja.
type resultAck struct {
	ResultCode string `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

type responseAck struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
}

var (
	ackAccepted = resultAck{ResultCode: "0", ResultDesc: "Accepted"}
	ackRetry    = resultAck{ResultCode: "1", ResultDesc: "Failed to process callback"}

	ackB2CSuccess  = responseAck{ResponseCode: "0", ResponseDescription: "Success"}
	ackB2CAccepted = responseAck{ResponseCode: "0", ResponseDescription: "Accepted"}
	ackB2CFailure  = responseAck{ResponseCode: "1", ResponseDescription: "Failure"}
	ackB2CRetry    = responseAck{ResponseCode: "1", ResponseDescription: "Failed to process callback"}
	ackB2CTimeout = responseAck{ResponseCode: "0", ResponseDescription: "Timeout received"}
)

// CallbackHandler receives provider callbacks. Every endpoint answers 200 with
// an acknowledgement body; failures are only logged.
type CallbackHandler struct {
	reconcileService reconcile.Service
	log              *zap.Logger
}

func NewCallbackHandler(reconcileSvc reconcile.Service, log *zap.Logger) *CallbackHandler {
	return &CallbackHandler{reconcileService: reconcileSvc, log: log}
}

func (h *CallbackHandler) STKCallback(c *fiber.Ctx) error {
	payload := body(c)
	h.log.Info("received stk callback", zap.ByteString("payload", payload))

	outcome, err := h.reconcileService.HandleSTKCallback(c.UserContext(), payload)
	if err != nil {
		return c.JSON(h.resultAckFor("stk callback", err))
	}

	h.log.Info("stk callback handled", zap.String("status", outcome.Status), zap.String("reference", outcome.Reference))
	return c.JSON(ackAccepted)
}

func (h *CallbackHandler) B2CResult(c *fiber.Ctx) error {
	payload := body(c)
	h.log.Info("received b2c result", zap.ByteString("payload", payload))

	outcome, err := h.reconcileService.HandleB2CResult(c.UserContext(), payload)
	if err != nil {
		if h.resultAckFor("b2c result", err) == ackAccepted {
			return c.JSON(ackB2CAccepted)
		}
		return c.JSON(ackB2CRetry)
	}

	if outcome.Status == reconcile.StatusFailed {
		return c.JSON(ackB2CFailure)
	}
	return c.JSON(ackB2CSuccess)
}

func (h *CallbackHandler) B2CTimeout(c *fiber.Ctx) error {
	if _, err := h.reconcileService.HandleB2CTimeout(c.UserContext(), body(c)); err != nil {
		h.log.Warn("b2c timeout not processed", zap.Error(err))
	}
	return c.JSON(ackB2CTimeout)
}

func (h *CallbackHandler) C2BConfirmation(c *fiber.Ctx) error {
	payload := body(c)
	h.log.Info("received c2b confirmation", zap.ByteString("payload", payload))

	outcome, err := h.reconcileService.HandleC2BConfirmation(c.UserContext(), payload)
	if err != nil {
		return c.JSON(h.resultAckFor("c2b confirmation", err))
	}

	h.log.Info("c2b confirmation handled", zap.String("status", outcome.Status), zap.String("reference", outcome.Reference))
	return c.JSON(ackAccepted)
}

// C2BValidation accepts every payment. Reject with ResultCode "C2B00011".
func (h *CallbackHandler) C2BValidation(c *fiber.Ctx) error {
	h.log.Info("received c2b validation", zap.ByteString("payload", c.Body()))
	return c.JSON(ackAccepted)
}

// resultAckFor asks Daraja to retry only when the payload was understood but
// could not be stored.
func (h *CallbackHandler) resultAckFor(kind string, err error) resultAck {
	if errors.Is(err, mpesa.ErrMalformedCallback) {
		h.log.Warn("malformed "+kind, zap.Error(err))
		return ackAccepted
	}
	h.log.Error(kind+" not processed", zap.Error(err))
	return ackRetry
}

// body copies the request body, which fasthttp reuses after the handler returns.
func body(c *fiber.Ctx) []byte {
	return append([]byte(nil), c.Body()...)
}
