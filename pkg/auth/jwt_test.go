package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func TestGenerateJWT(t *testing.T) {
	jwtService := NewJWTService(testSecret)

	tests := []struct {
		name           string
		actor          Actor
		expirationTime time.Time
		expectError    bool
	}{
		{
			name:           "Valid Token",
			actor:          Actor{UserID: 123, Email: "s@example.com", UserType: "student"},
			expirationTime: time.Now().Add(time.Hour),
			expectError:    false,
		},
		{
			name:           "Financier Token",
			actor:          Actor{UserID: 77, Email: "fin@example.com", UserType: "financier"},
			expirationTime: time.Now().Add(24 * time.Hour),
		},
		{
			name:           "Expired Token",
			actor:          Actor{UserID: 123},
			expirationTime: time.Now().Add(-time.Hour),
			expectError:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwtService.GenerateJWT(tt.actor, tt.expirationTime)

			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				parsed, _ := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
					return []byte(testSecret), nil
				})
				claims := parsed.Claims.(*Claims)
				assert.Equal(t, tt.actor, claims.Actor())
				assert.Equal(t, issuer, claims.Issuer)
				assert.Equal(t, tt.expirationTime.Unix(), claims.ExpiresAt)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	jwtService := NewJWTService(testSecret)
	staff := Actor{UserID: 1, Email: "admin@example.com", IsStaff: true}

	tests := []struct {
		name        string
		tokenString string
		setup       func() string
		expectError bool
		expected    Actor
	}{
		{
			name: "Valid Token",
			setup: func() string {
				token, _ := jwtService.GenerateJWT(staff, time.Now().Add(time.Hour))
				return token
			},
			expected: staff,
		},
		{
			name:        "Invalid Token",
			tokenString: "invalid.token.string",
			expectError: true,
		},
		{
			name: "Expired Token",
			setup: func() string {
				token, _ := jwtService.GenerateJWT(staff, time.Now().Add(-time.Hour))
				return token
			},
			expectError: true,
		},
		{
			name: "Wrong secret",
			setup: func() string {
				token, _ := NewJWTService("other").GenerateJWT(staff, time.Now().Add(time.Hour))
				return token
			},
			expectError: true,
		},
		{
			name: "Foreign issuer",
			setup: func() string {
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
					UserID:         1,
					StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix(), Issuer: "someone-else"},
				})
				signedToken, _ := token.SignedString([]byte(testSecret))
				return signedToken
			},
			expectError: true,
		},
		{
			name: "Not signed with HMAC",
			setup: func() string {
				token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
					UserID:         1,
					StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix(), Issuer: issuer},
				})
				signedToken, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
				return signedToken
			},
			expectError: true,
		},
		{
			name: "Invalid Claims Type",
			setup: func() string {
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
					ExpiresAt: time.Now().Add(time.Hour).Unix(),
					Issuer:    issuer,
				})
				signedToken, _ := token.SignedString([]byte(testSecret))
				return signedToken
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokenString string
			if tt.setup != nil {
				tokenString = tt.setup()
			} else {
				tokenString = tt.tokenString
			}

			claims, err := jwtService.ValidateToken(tokenString)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, claims.Actor())
			}
		})
	}
}
