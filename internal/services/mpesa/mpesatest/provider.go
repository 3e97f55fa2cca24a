// Package mpesatest provides a testify mock of the Daraja provider.
package mpesatest

import (
	"context"

	"mpesagw/internal/services/mpesa"

	"github.com/stretchr/testify/mock"
)

type Provider struct {
	mock.Mock
}

var _ mpesa.Provider = (*Provider)(nil)

func (m *Provider) STKPush(ctx context.Context, creds mpesa.Credentials, req mpesa.STKPushRequest) (*mpesa.STKPushResponse, error) {
	args := m.Called(ctx, creds, req)
	resp, _ := args.Get(0).(*mpesa.STKPushResponse)
	return resp, args.Error(1)
}

func (m *Provider) B2CPayment(ctx context.Context, creds mpesa.Credentials, req mpesa.B2CRequest) (*mpesa.B2CResponse, error) {
	args := m.Called(ctx, creds, req)
	resp, _ := args.Get(0).(*mpesa.B2CResponse)
	return resp, args.Error(1)
}

func (m *Provider) RegisterURL(ctx context.Context, creds mpesa.Credentials, req mpesa.RegisterURLRequest) (*mpesa.RegisterURLResponse, error) {
	args := m.Called(ctx, creds, req)
	resp, _ := args.Get(0).(*mpesa.RegisterURLResponse)
	return resp, args.Error(1)
}
