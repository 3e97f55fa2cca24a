// Package mpesa is the Safaricom Daraja transport: request and callback wire
// types, OAuth token handling and a circuit-broken JSON client.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Daraja endpoints
const (
	PathSTKPush     = "/mpesa/stkpush/v1/processrequest"
	PathB2CPayment  = "/mpesa/b2c/v3/paymentrequest"
	PathRegisterURL = "/mpesa/c2b/v1/registerurl"
)

// Provider is the subset of Daraja used by the initiators.
type Provider interface {
	STKPush(ctx context.Context, creds Credentials, req STKPushRequest) (*STKPushResponse, error)
	B2CPayment(ctx context.Context, creds Credentials, req B2CRequest) (*B2CResponse, error)
	RegisterURL(ctx context.Context, creds Credentials, req RegisterURLRequest) (*RegisterURLResponse, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	breaker    *gobreaker.CircuitBreaker
	log        *zap.Logger
}

// NewClient builds a client. Five consecutive transport or 5xx failures open
// the breaker for 30 seconds. Rejected consumer credentials and 4xx answers
// are the caller's fault and do not count.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenProvider, log *zap.Logger) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		tokens:     tokens,
		log:        log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mpesa",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, ErrInvalidCredentials) {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && !apiErr.Retryable()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

func (c *Client) STKPush(ctx context.Context, creds Credentials, req STKPushRequest) (*STKPushResponse, error) {
	var out STKPushResponse
	if err := c.post(ctx, creds, PathSTKPush, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) B2CPayment(ctx context.Context, creds Credentials, req B2CRequest) (*B2CResponse, error) {
	var out B2CResponse
	if err := c.post(ctx, creds, PathB2CPayment, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterURL(ctx context.Context, creds Credentials, req RegisterURLRequest) (*RegisterURLResponse, error) {
	var out RegisterURLResponse
	if err := c.post(ctx, creds, PathRegisterURL, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, creds Credentials, path string, payload, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, creds, path, payload, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, creds Credentials, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	status, respBody, err := c.send(ctx, creds, path, body)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		// a cached token can be revoked before it expires; retry once with a fresh one
		c.log.Warn("daraja rejected access token, refreshing", zap.String("path", path))
		c.tokens.Invalidate(ctx, creds)
		if status, respBody, err = c.send(ctx, creds, path, body); err != nil {
			return err
		}
	}

	if status < 200 || status > 299 {
		apiErr := &APIError{StatusCode: status}
		_ = json.Unmarshal(respBody, &apiErr.Body)
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, creds Credentials, path string, body []byte) (int, []byte, error) {
	token, err := c.tokens.Token(ctx, creds)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Info("daraja response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", respBody))
	return resp.StatusCode, respBody, nil
}

// Timestamp formats t the way Daraja expects in password generation.
func Timestamp(t time.Time) string {
	return t.In(Nairobi).Format(LayoutCompact)
}

// STKPassword is base64(shortcode + passkey + timestamp).
func STKPassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}
