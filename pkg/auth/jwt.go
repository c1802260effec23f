package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const issuer = "loanportal"

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
)

type JWTServiceInterface interface {
	GenerateJWT(actor Actor, expirationTime time.Time) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Claims struct {
	UserID   int    `json:"user_id"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
	UserType string `json:"user_type"`
	jwt.StandardClaims
}

func (c *Claims) Actor() Actor {
	return Actor{
		UserID:   c.UserID,
		Email:    c.Email,
		IsStaff:  c.IsStaff,
		UserType: c.UserType,
	}
}

type JWTService struct {
	secretKey []byte
}

func NewJWTService(secret string) *JWTService {
	return &JWTService{secretKey: []byte(secret)}
}

func (s *JWTService) GenerateJWT(actor Actor, expirationTime time.Time) (string, error) {
	claims := Claims{
		UserID:   actor.UserID,
		Email:    actor.Email,
		IsStaff:  actor.IsStaff,
		UserType: actor.UserType,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 || claims.Issuer != issuer {
		return nil, ErrInvalidTokenClaims
	}

	return claims, nil
}
