package c2b

import (
	"context"
	"testing"

	"mpesagw/internal/services/mpesa"
	"mpesagw/internal/services/mpesa/mpesatest"
	"mpesagw/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validRequest() RegisterRequest {
	return RegisterRequest{
		ConfirmationURL: "https://example.com/api/payments/confirmation/callback",
		ValidationURL:   "https://example.com/api/payments/validation/callback",
		ConsumerKey:     "ck",
		ConsumerSecret:  "cs",
		Shortcode:       "600000",
	}
}

func TestService_RegisterURLs(t *testing.T) {
	provider := new(mpesatest.Provider)
	provider.On("RegisterURL", mock.Anything,
		mpesa.Credentials{ConsumerKey: "ck", ConsumerSecret: "cs"},
		mpesa.RegisterURLRequest{
			ShortCode:       "600000",
			ResponseType:    mpesa.ResponseTypeCompleted,
			ConfirmationURL: "https://example.com/api/payments/confirmation/callback",
			ValidationURL:   "https://example.com/api/payments/validation/callback",
		}).Return(&mpesa.RegisterURLResponse{ResponseCode: "0", ResponseDescription: "Success"}, nil)

	resp, err := NewService(provider, nil).RegisterURLs(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "Success", resp.ResponseDescription)
	provider.AssertExpectations(t)
}

func TestService_RegisterURLsValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
		field  string
	}{
		{"bad confirmation url", func(r *RegisterRequest) { r.ConfirmationURL = "nope" }, "confirmation_url"},
		{"missing validation url", func(r *RegisterRequest) { r.ValidationURL = "" }, "validation_url"},
		{"missing consumer key", func(r *RegisterRequest) { r.ConsumerKey = "" }, "consumer_key"},
		{"non numeric shortcode", func(r *RegisterRequest) { r.Shortcode = "60a" }, "shortcode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(mpesatest.Provider)
			req := validRequest()
			tt.mutate(&req)

			_, err := NewService(provider, nil).RegisterURLs(context.Background(), req)

			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.field)
			provider.AssertNotCalled(t, "RegisterURL", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
