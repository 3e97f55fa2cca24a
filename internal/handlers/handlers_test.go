package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "mpesagw/internal/errors"
	"mpesagw/internal/models"
	"mpesagw/internal/services/b2c"
	"mpesagw/internal/services/fetch"
	"mpesagw/internal/services/mpesa"
	"mpesagw/internal/services/reconcile"
	"mpesagw/internal/services/stk"
	"mpesagw/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSTKService struct {
	mock.Mock
}

func (m *MockSTKService) Initiate(ctx context.Context, req stk.InitiateRequest) (*stk.InitiateResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*stk.InitiateResult)
	return res, args.Error(1)
}

type MockB2CService struct {
	mock.Mock
}

func (m *MockB2CService) Initiate(ctx context.Context, req b2c.InitiateRequest) (*mpesa.B2CResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*mpesa.B2CResponse)
	return res, args.Error(1)
}

type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) HandleSTKCallback(ctx context.Context, payload []byte) (*reconcile.Outcome, error) {
	args := m.Called(ctx, payload)
	out, _ := args.Get(0).(*reconcile.Outcome)
	return out, args.Error(1)
}

func (m *MockReconcileService) HandleB2CResult(ctx context.Context, payload []byte) (*reconcile.Outcome, error) {
	args := m.Called(ctx, payload)
	out, _ := args.Get(0).(*reconcile.Outcome)
	return out, args.Error(1)
}

func (m *MockReconcileService) HandleB2CTimeout(ctx context.Context, payload []byte) (*reconcile.Outcome, error) {
	args := m.Called(ctx, payload)
	out, _ := args.Get(0).(*reconcile.Outcome)
	return out, args.Error(1)
}

func (m *MockReconcileService) HandleC2BConfirmation(ctx context.Context, payload []byte) (*reconcile.Outcome, error) {
	args := m.Called(ctx, payload)
	out, _ := args.Get(0).(*reconcile.Outcome)
	return out, args.Error(1)
}

type MockFetchService struct {
	mock.Mock
}

func (m *MockFetchService) STKPayments(ctx context.Context, shortcode string) ([]models.STKPayment, error) {
	args := m.Called(ctx, shortcode)
	out, _ := args.Get(0).([]models.STKPayment)
	return out, args.Error(1)
}

func (m *MockFetchService) C2BPayments(ctx context.Context, shortcode string) ([]models.C2BSummary, error) {
	args := m.Called(ctx, shortcode)
	out, _ := args.Get(0).([]models.C2BSummary)
	return out, args.Error(1)
}

func (m *MockFetchService) CustomerTransactions(ctx context.Context, billRef string) ([]models.C2BConfirmation, error) {
	args := m.Called(ctx, billRef)
	out, _ := args.Get(0).([]models.C2BConfirmation)
	return out, args.Error(1)
}

func (m *MockFetchService) AllTransactions(ctx context.Context) ([]models.C2BConfirmation, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.C2BConfirmation)
	return out, args.Error(1)
}

func (m *MockFetchService) ConfirmSTKPayment(ctx context.Context, ref string) (*models.STKPayment, error) {
	args := m.Called(ctx, ref)
	out, _ := args.Get(0).(*models.STKPayment)
	return out, args.Error(1)
}

func (m *MockFetchService) B2CTransaction(ctx context.Context, id string) (*models.B2CTransaction, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.B2CTransaction)
	return out, args.Error(1)
}

var (
	_ stk.Service       = (*MockSTKService)(nil)
	_ b2c.Service       = (*MockB2CService)(nil)
	_ reconcile.Service = (*MockReconcileService)(nil)
	_ fetch.Service     = (*MockFetchService)(nil)
)

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestCallbackHandler_AlwaysAcknowledges(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		setupMock func(*MockReconcileService)
		wantBody  map[string]interface{}
	}{
		{
			name: "stk recorded",
			path: "/stk",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleSTKCallback", mock.Anything, mock.Anything).
					Return(&reconcile.Outcome{Status: reconcile.StatusRecorded}, nil)
			},
			wantBody: map[string]interface{}{"ResultCode": "0", "ResultDesc": "Accepted"},
		},
		{
			name: "stk malformed",
			path: "/stk",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleSTKCallback", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: bad json", mpesa.ErrMalformedCallback))
			},
			wantBody: map[string]interface{}{"ResultCode": "0", "ResultDesc": "Accepted"},
		},
		{
			name: "stk store failure asks for retry",
			path: "/stk",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleSTKCallback", mock.Anything, mock.Anything).
					Return(nil, reconcile.ErrStore)
			},
			wantBody: map[string]interface{}{"ResultCode": "1", "ResultDesc": "Failed to process callback"},
		},
		{
			name: "b2c recorded",
			path: "/b2c/results",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleB2CResult", mock.Anything, mock.Anything).
					Return(&reconcile.Outcome{Status: reconcile.StatusRecorded}, nil)
			},
			wantBody: map[string]interface{}{"ResponseCode": "0", "ResponseDescription": "Success"},
		},
		{
			name: "b2c duplicate",
			path: "/b2c/results",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleB2CResult", mock.Anything, mock.Anything).
					Return(&reconcile.Outcome{Status: reconcile.StatusDuplicate}, nil)
			},
			wantBody: map[string]interface{}{"ResponseCode": "0", "ResponseDescription": "Success"},
		},
		{
			name: "b2c provider failure",
			path: "/b2c/results",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleB2CResult", mock.Anything, mock.Anything).
					Return(&reconcile.Outcome{Status: reconcile.StatusFailed}, nil)
			},
			wantBody: map[string]interface{}{"ResponseCode": "1", "ResponseDescription": "Failure"},
		},
		{
			name: "b2c malformed is accepted",
			path: "/b2c/results",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleB2CResult", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: bad json", mpesa.ErrMalformedCallback))
			},
			wantBody: map[string]interface{}{"ResponseCode": "0", "ResponseDescription": "Accepted"},
		},
		{
			name: "b2c store failure asks for retry",
			path: "/b2c/results",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleB2CResult", mock.Anything, mock.Anything).
					Return(nil, reconcile.ErrStore)
			},
			wantBody: map[string]interface{}{"ResponseCode": "1", "ResponseDescription": "Failed to process callback"},
		},
		{
			name: "b2c timeout",
			path: "/b2c/timeout",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleB2CTimeout", mock.Anything, mock.Anything).
					Return(nil, mpesa.ErrMalformedCallback)
			},
			wantBody: map[string]interface{}{"ResponseCode": "0", "ResponseDescription": "Timeout received"},
		},
		{
			name: "c2b confirmation",
			path: "/c2b/confirmation",
			setupMock: func(m *MockReconcileService) {
				m.On("HandleC2BConfirmation", mock.Anything, mock.Anything).
					Return(&reconcile.Outcome{Status: reconcile.StatusDuplicate}, nil)
			},
			wantBody: map[string]interface{}{"ResultCode": "0", "ResultDesc": "Accepted"},
		},
		{
			name:     "c2b validation",
			path:     "/c2b/validation",
			wantBody: map[string]interface{}{"ResultCode": "0", "ResultDesc": "Accepted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReconcileService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			h := NewCallbackHandler(svc, zap.NewNop())

			app := fiber.New()
			app.Post("/stk", h.STKCallback)
			app.Post("/b2c/results", h.B2CResult)
			app.Post("/b2c/timeout", h.B2CTimeout)
			app.Post("/c2b/confirmation", h.C2BConfirmation)
			app.Post("/c2b/validation", h.C2BValidation)

			status, body := do(t, app, http.MethodPost, tt.path, `{"not":"relevant"`)

			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.wantBody, body)
			svc.AssertExpectations(t)
		})
	}
}

func TestSTKHandler_Initiate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockSTKService)
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "accepted",
			body: `{"amount":10,"msisdn":"0712345678","userId":"u-1"}`,
			setupMock: func(m *MockSTKService) {
				m.On("Initiate", mock.Anything, stk.InitiateRequest{Amount: 10, MSISDN: "0712345678", UserID: "u-1"}).
					Return(&stk.InitiateResult{
						Response:         &mpesa.STKPushResponse{CheckoutRequestID: "ws_CO_1", ResponseCode: "0", ResponseDescription: "Success"},
						AccountReference: "AbCdEf1234",
					}, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "success", body["status"])
				assert.Equal(t, "AbCdEf1234", body["account_reference"])
				assert.Equal(t, "ws_CO_1", body["data"].(map[string]interface{})["CheckoutRequestID"])
			},
		},
		{
			name: "validation failure",
			body: `{"amount":10}`,
			setupMock: func(m *MockSTKService) {
				m.On("Initiate", mock.Anything, mock.Anything).
					Return(nil, validation.Errors{"msisdn": "is required", "userId": "is required"})
			},
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "is required", body["msisdn"])
			},
		},
		{
			name: "not accepted",
			body: `{"amount":10,"msisdn":"0712345678","userId":"u-1"}`,
			setupMock: func(m *MockSTKService) {
				m.On("Initiate", mock.Anything, mock.Anything).
					Return(&stk.InitiateResult{Response: &mpesa.STKPushResponse{ResponseCode: "1", ResponseDescription: "Rejected"}},
						stk.ErrRejected)
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Rejected", body["message"])
			},
		},
		{
			name: "provider error is relayed",
			body: `{"amount":10,"msisdn":"0712345678","userId":"u-1"}`,
			setupMock: func(m *MockSTKService) {
				m.On("Initiate", mock.Anything, mock.Anything).
					Return(nil, &mpesa.APIError{StatusCode: 400, Body: map[string]interface{}{"errorMessage": "Invalid PhoneNumber"}})
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Invalid PhoneNumber", body["message"])
				assert.NotNil(t, body["error"])
			},
		},
		{
			name:       "bad body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSTKService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			app := fiber.New()
			app.Post("/initiate", NewSTKHandler(svc, zap.NewNop()).Initiate)

			status, body := do(t, app, http.MethodPost, "/initiate", tt.body)

			assert.Equal(t, tt.wantStatus, status)
			if tt.check != nil {
				tt.check(t, body)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestB2CHandler_Initiate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockB2CService)
		svc.On("Initiate", mock.Anything, b2c.InitiateRequest{Amount: 100, PartyB: "254712345678"}).
			Return(&mpesa.B2CResponse{ConversationID: "AG_1", ResponseCode: "0"}, nil)
		app := fiber.New()
		app.Post("/b2c", NewB2CHandler(svc, zap.NewNop()).Initiate)

		status, body := do(t, app, http.MethodPost, "/b2c", `{"amount":100,"party_b":"254712345678"}`)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Transaction request has been initiated successfully.", body["message"])
	})

	t.Run("transport failure is a server error", func(t *testing.T) {
		svc := new(MockB2CService)
		svc.On("Initiate", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: timeout"))
		app := fiber.New()
		app.Post("/b2c", NewB2CHandler(svc, zap.NewNop()).Initiate)

		status, body := do(t, app, http.MethodPost, "/b2c", `{"amount":100,"party_b":"254712345678"}`)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, "Internal server error", body["message"])
		assert.NotContains(t, fmt.Sprint(body), "dial tcp")
	})

	t.Run("rejected consumer credentials", func(t *testing.T) {
		svc := new(MockB2CService)
		svc.On("Initiate", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: %w: status 400", mpesa.ErrAccessToken, mpesa.ErrInvalidCredentials))
		app := fiber.New()
		app.Post("/b2c", NewB2CHandler(svc, zap.NewNop()).Initiate)

		status, body := do(t, app, http.MethodPost, "/b2c", `{"amount":100,"party_b":"254712345678"}`)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid M-PESA consumer credentials", body["message"])
	})
}

func TestFetchHandler(t *testing.T) {
	svc := new(MockFetchService)
	svc.On("STKPayments", mock.Anything, "999999").Return([]models.STKPayment{}, nil)
	svc.On("C2BPayments", mock.Anything, "abc").Return(nil, validation.Errors{"shortcode": "must be numeric"})
	svc.On("B2CTransaction", mock.Anything, "AG_404").Return(nil, apperrors.ErrNotFound)
	svc.On("B2CTransaction", mock.Anything, "AG_1").
		Return(&models.B2CTransaction{ConversationID: "AG_1", TransactionID: "TX1"}, nil)

	h := NewFetchHandler(svc, zap.NewNop())
	app := fiber.New()
	app.Get("/stk", h.STKPayments)
	app.Get("/c2b", h.C2BPayments)
	app.Post("/b2c/status", h.B2CStatus)

	t.Run("unmatched filter is an empty success", func(t *testing.T) {
		status, body := do(t, app, http.MethodGet, "/stk?shortcode=999999", "")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, []interface{}{}, body["data"])
	})

	t.Run("invalid shortcode", func(t *testing.T) {
		status, body := do(t, app, http.MethodGet, "/c2b?shortcode=abc", "")
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "must be numeric", body["shortcode"])
	})

	t.Run("b2c status not found", func(t *testing.T) {
		status, body := do(t, app, http.MethodPost, "/b2c/status", `{"conversation_id":"AG_404"}`)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "not_found", body["status"])
	})

	t.Run("b2c status found", func(t *testing.T) {
		status, body := do(t, app, http.MethodPost, "/b2c/status", `{"conversation_id":"AG_1"}`)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "TX1", body["transaction_id"])
	})

	svc.AssertExpectations(t)
}

func TestHealthHandler(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	app := fiber.New()
	app.Get("/ok", NewHealthHandler(map[string]Pinger{"database": up, "redis": up}).HealthCheck)
	app.Get("/degraded", NewHealthHandler(map[string]Pinger{"database": up, "redis": down}).HealthCheck)

	status, body := do(t, app, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = do(t, app, http.MethodGet, "/degraded", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body["services"].(map[string]interface{})["redis"])
}
