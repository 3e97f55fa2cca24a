package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// tokenSafetyMargin is subtracted from expires_in so a cached token is never
// presented right as it lapses.
const tokenSafetyMargin = 60 * time.Second

// TokenProvider hands out bearer tokens for a consumer key pair.
// Invalidate drops a token Daraja no longer accepts.
type TokenProvider interface {
	Token(ctx context.Context, creds Credentials) (string, error)
	Invalidate(ctx context.Context, creds Credentials)
}

// TokenCache persists tokens between requests and processes.
type TokenCache interface {
	GetToken(ctx context.Context, key string) (string, bool, error)
	SetToken(ctx context.Context, key, token string, ttl time.Duration) error
	InvalidateToken(ctx context.Context, key string) error
}

// TokenSource fetches OAuth client-credential tokens and caches them.
type TokenSource struct {
	baseURL    string
	httpClient *http.Client
	cache      TokenCache
	log        *zap.Logger
}

func NewTokenSource(baseURL string, httpClient *http.Client, cache TokenCache, log *zap.Logger) *TokenSource {
	return &TokenSource{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      cache,
		log:        log,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func tokenKey(creds Credentials) string {
	return "mpesa:token:" + creds.ConsumerKey
}

func (s *TokenSource) Token(ctx context.Context, creds Credentials) (string, error) {
	key := tokenKey(creds)

	if s.cache != nil {
		token, found, err := s.cache.GetToken(ctx, key)
		if err != nil {
			s.log.Warn("token cache read failed", zap.Error(err))
		} else if found {
			return token, nil
		}
	}

	url := s.baseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAccessToken, err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(creds.ConsumerKey + ":" + creds.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAccessToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			// the key pair is wrong, not the provider
			return "", fmt.Errorf("%w: %w: status %d: %s", ErrAccessToken, ErrInvalidCredentials, resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrAccessToken, resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrAccessToken, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrAccessToken)
	}

	if s.cache != nil {
		ttl := tokenTTL(tr.ExpiresIn)
		if ttl > 0 {
			if err := s.cache.SetToken(ctx, key, tr.AccessToken, ttl); err != nil {
				s.log.Warn("token cache write failed", zap.Error(err))
			}
		}
	}

	return tr.AccessToken, nil
}

func (s *TokenSource) Invalidate(ctx context.Context, creds Credentials) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateToken(ctx, tokenKey(creds)); err != nil {
		s.log.Warn("token cache delete failed", zap.Error(err))
	}
}

func tokenTTL(expiresIn string) time.Duration {
	secs, err := strconv.Atoi(expiresIn)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs)*time.Second - tokenSafetyMargin
}
