package b2c

import "errors"

var ErrNotConfigured = errors.New("b2c payouts are not configured")
