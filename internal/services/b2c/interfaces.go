package b2c

import (
	"context"

	"mpesagw/internal/services/mpesa"
)

// Service initiates business-to-customer payouts.
type Service interface {
	Initiate(ctx context.Context, req InitiateRequest) (*mpesa.B2CResponse, error)
}
