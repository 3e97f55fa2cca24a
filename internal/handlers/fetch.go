package handlers

import (
	"mpesagw/internal/services/fetch"
	"mpesagw/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FetchHandler struct {
	fetchService fetch.Service
	log          *zap.Logger
}

func NewFetchHandler(fetchSvc fetch.Service, log *zap.Logger) *FetchHandler {
	return &FetchHandler{fetchService: fetchSvc, log: log}
}

func (h *FetchHandler) STKPayments(c *fiber.Ctx) error {
	payments, err := h.fetchService.STKPayments(c.UserContext(), c.Query("shortcode"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.List(c, payments)
}

// C2BPayments returns confirmations not yet handed out for the shortcode.
func (h *FetchHandler) C2BPayments(c *fiber.Ctx) error {
	records, err := h.fetchService.C2BPayments(c.UserContext(), c.Query("shortcode"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.List(c, records)
}

func (h *FetchHandler) CustomerTransactions(c *fiber.Ctx) error {
	var input struct {
		BillRefNo string `json:"billref_no"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	records, err := h.fetchService.CustomerTransactions(c.UserContext(), input.BillRefNo)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.List(c, records)
}

func (h *FetchHandler) AllTransactions(c *fiber.Ctx) error {
	records, err := h.fetchService.AllTransactions(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.List(c, records)
}

// ConfirmTransaction looks up the STK payment raised for an account reference.
func (h *FetchHandler) ConfirmTransaction(c *fiber.Ctx) error {
	var input struct {
		AccountReference string `json:"account_reference"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	payment, err := h.fetchService.ConfirmSTKPayment(c.UserContext(), input.AccountReference)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, "", payment)
}

func (h *FetchHandler) B2CStatus(c *fiber.Ctx) error {
	var input struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	tx, err := h.fetchService.B2CTransaction(c.UserContext(), input.ConversationID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"status":           response.StatusSuccess,
		"transaction_id":   tx.TransactionID,
		"result_code":      tx.ResultCode,
		"result_desc":      tx.ResultDesc,
		"amount":           tx.Amount,
		"receiver_phone":   tx.ReceiverPhone,
		"receiver_name":    tx.ReceiverName,
		"transaction_date": tx.TransactionDate,
	})
}
