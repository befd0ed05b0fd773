package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for the survey administrator
type AdminClaims struct {
	AdminID int64 `json:"adminId"`
	jwt.RegisteredClaims
}

// RecipientClaims are JWT claims binding a connection to a recipient identity
type RecipientClaims struct {
	RecipientID int64 `json:"recipientId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	AdminID int64 `json:"adminId"`
}

// RecipientTokenRequest is the request body for recipient token issuance
type RecipientTokenRequest struct {
	RecipientID int64 `json:"recipientId"`
}

// TokenResponse is returned after a successful token issuance
type TokenResponse struct {
	Token string `json:"token"`
	ID    int64  `json:"id"`
}
