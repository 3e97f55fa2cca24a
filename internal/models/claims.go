package models

import "github.com/golang-jwt/jwt/v5"

// API client permissions
const (
	PermissionPaymentsWrite = "payments:write"
	PermissionPaymentsRead  = "payments:read"
	PermissionPayoutsWrite  = "payouts:write"
	PermissionC2BAdmin      = "c2b:admin"
)

// ClientClaims identifies a merchant application calling the gateway.
type ClientClaims struct {
	jwt.RegisteredClaims
	ClientID    string   `json:"client_id"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *ClientClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
