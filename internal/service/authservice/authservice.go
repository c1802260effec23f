package authservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/notify"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	CreateFinancier(ctx context.Context, financier *domain.Financier) (*domain.Financier, error)
}

type Service struct {
	userRepo    Repo
	txManager   pg.TXManager
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	notifier    notify.Notifier
	tokenTTL    time.Duration
}

func New(repo Repo, txManager pg.TXManager, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface,
	notifier notify.Notifier, tokenTTL time.Duration) *Service {
	return &Service{
		userRepo:    repo,
		txManager:   txManager,
		hashService: hashService,
		jwtService:  jwtService,
		notifier:    notifier,
		tokenTTL:    tokenTTL,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	StudentID   string
	University  string
	GPA         decimal.Decimal
	UserType    domain.UserType
	CompanyName string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	userType := in.UserType
	if userType == "" {
		userType = domain.UserTypeStudent
	}

	user := &domain.User{
		Email:      email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		StudentID:  in.StudentID,
		University: in.University,
		UserType:   userType,
		IsActive:   true,
	}
	switch userType {
	case domain.UserTypeStudent:
		gpa, err := domain.NewGPA(in.GPA)
		if err != nil {
			return nil, err
		}
		user.GPA = gpa.Decimal()
	case domain.UserTypeFinancier:
		user.GPA = decimal.Zero
	default:
		return nil, domain.NewValidationError(domain.KindInvalidField, "user_type", "unknown user type %q", userType)
	}

	hashedPassword, err := s.hashService.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) || errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, domain.NewValidationError(domain.KindInvalidField, "password", "%s", err.Error())
		}
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, err
	}
	user.PasswordHash = hashedPassword

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		existing, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			zap.L().Error("can't find user", zap.Error(err))
			return err
		}
		if existing != nil {
			return domain.ErrUserExists
		}
		if _, err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		if userType != domain.UserTypeFinancier {
			return nil
		}
		_, err = s.userRepo.CreateFinancier(ctx, &domain.Financier{
			UserID:        user.ID,
			FinancierCode: FinancierCode(user.ID),
			CompanyName:   in.CompanyName,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("email", email), zap.String("type", string(userType)))
	s.notifier.Notify(ctx, notify.EventWelcome, user.Email, notify.NewWelcomeNotice(user))
	return user, nil
}

// FinancierCode derives the public financier identifier, e.g. FIN001.
func FinancierCode(userID int) string {
	return fmt.Sprintf("FIN%03d", userID)
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, password); !ok {
		return nil, domain.ErrInvalidCredentials
	}
	zap.L().Info("user successfully authenticated", zap.String("email", user.Email))
	return user, nil
}

func (s *Service) GenerateToken(user *domain.User) (string, error) {
	actor := auth.Actor{
		UserID:   user.ID,
		Email:    user.Email,
		IsStaff:  user.IsStaff,
		UserType: string(user.UserType),
	}
	token, err := s.jwtService.GenerateJWT(actor, time.Now().Add(s.tokenTTL))
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return "", err
	}
	return token, nil
}
