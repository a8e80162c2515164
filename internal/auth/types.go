package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// gin context keys set by the middlewares
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)
