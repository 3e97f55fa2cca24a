// Package c2b registers the confirmation and validation URLs that Daraja
// calls for customer-initiated paybill payments.
package c2b

import (
	"context"

	"mpesagw/internal/services/mpesa"
	"mpesagw/internal/validation"

	"go.uber.org/zap"
)

// Service registers C2B URLs for a shortcode.
type Service interface {
	RegisterURLs(ctx context.Context, req RegisterRequest) (*mpesa.RegisterURLResponse, error)
}

// RegisterRequest carries the consumer credentials of the app that owns the
// shortcode, which need not be the gateway's own.
type RegisterRequest struct {
	ConfirmationURL string `json:"confirmation_url" validate:"required,url"`
	ValidationURL   string `json:"validation_url" validate:"required,url"`
	ConsumerKey     string `json:"consumer_key" validate:"required"`
	ConsumerSecret  string `json:"consumer_secret" validate:"required"`
	Shortcode       string `json:"shortcode" validate:"required,digits"`
}

type service struct {
	provider mpesa.Provider
	log      *zap.Logger
}

func NewService(provider mpesa.Provider, log *zap.Logger) Service {
	if provider == nil {
		panic("provider is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{provider: provider, log: log}
}

func (s *service) RegisterURLs(ctx context.Context, req RegisterRequest) (*mpesa.RegisterURLResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	creds := mpesa.Credentials{ConsumerKey: req.ConsumerKey, ConsumerSecret: req.ConsumerSecret}
	resp, err := s.provider.RegisterURL(ctx, creds, mpesa.RegisterURLRequest{
		ShortCode:       req.Shortcode,
		ResponseType:    mpesa.ResponseTypeCompleted,
		ConfirmationURL: req.ConfirmationURL,
		ValidationURL:   req.ValidationURL,
	})
	if err != nil {
		s.log.Error("c2b url registration failed", zap.String("shortcode", req.Shortcode), zap.Error(err))
		return nil, err
	}

	s.log.Info("c2b urls registered",
		zap.String("shortcode", req.Shortcode),
		zap.String("response_description", resp.ResponseDescription))
	return resp, nil
}
