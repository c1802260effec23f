package authservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/notify"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	repo     *MockRepo
	tx       *pg.MockTXManager
	hasher   *auth.MockHashServiceInterface
	jwt      *auth.MockJWTServiceInterface
	notifier *notify.MockNotifier
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		repo:     NewMockRepo(ctrl),
		tx:       pg.NewMockTXManager(ctrl),
		hasher:   auth.NewMockHashServiceInterface(ctrl),
		jwt:      auth.NewMockJWTServiceInterface(ctrl),
		notifier: notify.NewMockNotifier(ctrl),
	}
	service := New(m.repo, m.tx, m.hasher, m.jwt, m.notifier, time.Hour)
	defer ctrl.Finish()
	return service, m
}

func (m *mocks) expectTx() {
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func studentInput() RegisterInput {
	return RegisterInput{
		Email:      " Asha@Example.com ",
		Password:   "testpassword",
		FirstName:  "Asha",
		LastName:   "K",
		StudentID:  "S-100",
		University: "IIT",
		GPA:        decimal.RequireFromString("7.5"),
	}
}

func TestRegister(t *testing.T) {
	service, m := NewMock(t)

	tests := []struct {
		name          string
		input         func() RegisterInput
		prepareMock   func()
		expectedUser  *domain.User
		expectedError error
	}{
		{
			name:  "Successful student registration",
			input: studentInput,
			prepareMock: func() {
				m.hasher.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				m.expectTx()
				m.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(nil, nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, user *domain.User) (*domain.User, error) {
					user.ID = 1
					return user, nil
				})
				m.notifier.EXPECT().Notify(gomock.Any(), notify.EventWelcome, "asha@example.com",
					notify.WelcomeNotice{Name: "Asha K", Email: "asha@example.com"}).Return(true)
			},
			expectedUser: &domain.User{
				ID:           1,
				Email:        "asha@example.com",
				PasswordHash: "hashedpassword",
				FirstName:    "Asha",
				LastName:     "K",
				StudentID:    "S-100",
				University:   "IIT",
				GPA:          decimal.RequireFromString("7.50"),
				UserType:     domain.UserTypeStudent,
				IsActive:     true,
			},
		},
		{
			name: "Financier gets a profile",
			input: func() RegisterInput {
				return RegisterInput{Email: "fin@example.com", Password: "testpassword", UserType: domain.UserTypeFinancier, CompanyName: "Acme"}
			},
			prepareMock: func() {
				m.hasher.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				m.expectTx()
				m.repo.EXPECT().FindByEmail(gomock.Any(), "fin@example.com").Return(nil, nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, user *domain.User) (*domain.User, error) {
					user.ID = 7
					return user, nil
				})
				m.repo.EXPECT().CreateFinancier(gomock.Any(), &domain.Financier{UserID: 7, FinancierCode: "FIN007", CompanyName: "Acme"}).
					Return(&domain.Financier{ID: 1}, nil)
				m.notifier.EXPECT().Notify(gomock.Any(), notify.EventWelcome, "fin@example.com", gomock.Any()).Return(false)
			},
			expectedUser: &domain.User{
				ID:           7,
				Email:        "fin@example.com",
				PasswordHash: "hashedpassword",
				GPA:          decimal.Zero,
				UserType:     domain.UserTypeFinancier,
				IsActive:     true,
			},
		},
		{
			name:  "User already exists",
			input: studentInput,
			prepareMock: func() {
				m.hasher.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				m.expectTx()
				m.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(&domain.User{ID: 3}, nil)
			},
			expectedError: domain.ErrUserExists,
		},
		{
			name: "GPA out of range",
			input: func() RegisterInput {
				in := studentInput()
				in.GPA = decimal.RequireFromString("10.5")
				return in
			},
			prepareMock:   func() {},
			expectedError: domain.ErrValidation,
		},
		{
			name: "Unknown user type",
			input: func() RegisterInput {
				in := studentInput()
				in.UserType = "admin"
				return in
			},
			prepareMock:   func() {},
			expectedError: domain.ErrValidation,
		},
		{
			name:  "Short password",
			input: studentInput,
			prepareMock: func() {
				m.hasher.EXPECT().HashPassword("testpassword").Return("", auth.ErrPasswordTooShort)
			},
			expectedError: domain.ErrValidation,
		},
		{
			name:  "Error creating user",
			input: studentInput,
			prepareMock: func() {
				m.hasher.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				m.expectTx()
				m.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(nil, nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("creation failed"))
			},
			expectedError: errors.New("creation failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			user, err := service.Register(context.Background(), tt.input())
			if tt.expectedError != nil {
				assert.Error(t, err)
				if errors.Is(err, tt.expectedError) {
					return
				}
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedUser, user)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	service, m := NewMock(t)
	stored := &domain.User{ID: 1, Email: "asha@example.com", PasswordHash: "hashedpassword", IsActive: true}

	tests := []struct {
		name          string
		email         string
		password      string
		prepareMock   func()
		expectedUser  *domain.User
		expectedError error
	}{
		{
			name:     "Successful authentication",
			email:    "ASHA@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(stored, nil)
				m.hasher.EXPECT().ComparePassword("hashedpassword", "testpassword").Return(true)
			},
			expectedUser: stored,
		},
		{
			name:     "User not found",
			email:    "asha@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(nil, nil)
			},
			expectedError: domain.ErrInvalidCredentials,
		},
		{
			name:     "Inactive user",
			email:    "asha@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(&domain.User{ID: 1}, nil)
			},
			expectedError: domain.ErrInvalidCredentials,
		},
		{
			name:     "Incorrect password",
			email:    "asha@example.com",
			password: "wrongpassword",
			prepareMock: func() {
				m.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(stored, nil)
				m.hasher.EXPECT().ComparePassword("hashedpassword", "wrongpassword").Return(false)
			},
			expectedError: domain.ErrInvalidCredentials,
		},
		{
			name:     "Database error",
			email:    "asha@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(nil, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			user, err := service.Authenticate(context.Background(), tt.email, tt.password)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	service, m := NewMock(t)
	user := &domain.User{ID: 1, Email: "admin@example.com", IsStaff: true, UserType: domain.UserTypeStudent}
	actor := auth.Actor{UserID: 1, Email: "admin@example.com", IsStaff: true, UserType: "student"}

	tests := []struct {
		name          string
		prepareMock   func()
		expectedToken string
		expectedError error
	}{
		{
			name: "Successful token generation",
			prepareMock: func() {
				m.jwt.EXPECT().GenerateJWT(actor, gomock.Any()).Return("generated-token", nil)
			},
			expectedToken: "generated-token",
		},
		{
			name: "Error generating token",
			prepareMock: func() {
				m.jwt.EXPECT().GenerateJWT(actor, gomock.Any()).Return("", errors.New("can't generate token"))
			},
			expectedError: errors.New("can't generate token"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			token, err := service.GenerateToken(user)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}

func TestFinancierCode(t *testing.T) {
	assert.Equal(t, "FIN001", FinancierCode(1))
	assert.Equal(t, "FIN1234", FinancierCode(1234))
}
