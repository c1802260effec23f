package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hashService := &HashService{cost: bcrypt.MinCost}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "Portal password",
			password: "password123",
		},
		{
			name:     "Exactly minimum length",
			password: "12345678",
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  ErrEmptyPassword,
		},
		{
			name:     "Seven characters",
			password: "1234567",
			wantErr:  ErrPasswordTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := hashService.HashPassword(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hashed)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hashed)
			cost, err := bcrypt.Cost([]byte(hashed))
			require.NoError(t, err)
			assert.Equal(t, bcrypt.MinCost, cost)
		})
	}
}

func TestHashService_DefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHashService().cost)

	hashed, err := (&HashService{}).HashPassword("password123")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestComparePassword(t *testing.T) {
	hashService := &HashService{cost: bcrypt.MinCost}
	hashed, err := hashService.HashPassword("password123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hashed   string
		password string
		want     bool
	}{
		{name: "Matching password", hashed: hashed, password: "password123", want: true},
		{name: "Wrong password", hashed: hashed, password: "password124"},
		{name: "Empty password", hashed: hashed, password: ""},
		{name: "Malformed hash", hashed: "not-a-bcrypt-hash", password: "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hashService.ComparePassword(tt.hashed, tt.password))
		})
	}
}
