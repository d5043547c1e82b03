package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed payload of a session token. Subject carries the
// authenticated username.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is a signed session token with its absolute expiry.
type Token struct {
	Value     string
	Subject   string
	ExpiresAt time.Time
}

// LoginRequest login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Username    string `json:"username"`
}
