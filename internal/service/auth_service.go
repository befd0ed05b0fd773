package service

import (
	"errors"
	"time"

	"surveycast/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotAdmin     = errors.New("not an allowed admin")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInvalidID    = errors.New("identity must be a positive number")
)

// RecipientTokenTTL bounds how long a recipient connection token is valid
const RecipientTokenTTL = 24 * time.Hour

// AuthService checks the static admin allow-list and issues JWTs
type AuthService struct {
	admins    map[int64]bool
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(adminIDs []int64, secret string) *AuthService {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &AuthService{
		admins:    admins,
		jwtSecret: []byte(secret),
	}
}

// IsAdmin reports whether id is on the allow-list
func (s *AuthService) IsAdmin(id int64) bool {
	return s.admins[id]
}

// Login returns a permanent admin token for an allow-listed id
func (s *AuthService) Login(adminID int64) (*model.TokenResponse, error) {
	if !s.IsAdmin(adminID) {
		return nil, ErrNotAdmin
	}

	claims := &model.AdminClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			// No expiry, the allow-list is re-checked on every request
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{Token: tokenString, ID: adminID}, nil
}

// ValidateAdminToken validates an admin JWT and re-checks the allow-list
func (s *AuthService) ValidateAdminToken(tokenString string) (*model.AdminClaims, error) {
	claims := &model.AdminClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if !s.IsAdmin(claims.AdminID) {
		return nil, ErrNotAdmin
	}
	return claims, nil
}

// GenerateRecipientToken creates a token binding a connection to a recipient id
func (s *AuthService) GenerateRecipientToken(recipientID int64) (*model.TokenResponse, error) {
	if recipientID <= 0 {
		return nil, ErrInvalidID
	}
	claims := &model.RecipientClaims{
		RecipientID: recipientID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(RecipientTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{Token: tokenString, ID: recipientID}, nil
}

// ValidateRecipientToken validates a recipient JWT and returns claims
func (s *AuthService) ValidateRecipientToken(tokenString string) (*model.RecipientClaims, error) {
	claims := &model.RecipientClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.RecipientID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
