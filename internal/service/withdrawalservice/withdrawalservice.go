package withdrawalservice

import (
	"context"
	"strings"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/notify"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/validate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const noteTimeLayout = "2006-01-02 15:04"

type Repo interface {
	CreateWithdrawal(ctx context.Context, wd *domain.Withdrawal) (*domain.Withdrawal, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.Withdrawal, error)
	GetWithdrawals(ctx context.Context, filter domain.WithdrawalFilter) ([]domain.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, wd *domain.Withdrawal) error
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindFinancierByUserID(ctx context.Context, userID int) (*domain.Financier, error)
	FindFinancierByID(ctx context.Context, id int) (*domain.Financier, error)
}

type Service struct {
	repo      Repo
	userRepo  UserRepo
	txManager pg.TXManager
	notifier  notify.Notifier
	now       func() time.Time
}

func New(repo Repo, userRepo UserRepo, txManager pg.TXManager, notifier notify.Notifier) *Service {
	return &Service{
		repo:      repo,
		userRepo:  userRepo,
		txManager: txManager,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type RequestInput struct {
	Amount            decimal.Decimal
	Method            domain.WithdrawalMethod
	BankName          string
	AccountHolderName string
	AccountNumber     string
	IFSCCode          string
	UPIID             string
	Notes             string
}

func (s *Service) RequestWithdrawal(ctx context.Context, actor auth.Actor, in RequestInput) (*domain.Withdrawal, error) {
	financier, err := s.financierOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	amount, err := domain.NewWithdrawalAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	method := in.Method
	if method == "" {
		method = domain.WithdrawalBankTransfer
	}
	if !method.Valid() {
		return nil, domain.NewValidationError(domain.KindInvalidField, "withdrawal_method", "unknown withdrawal method %q", method)
	}
	upi := strings.TrimSpace(in.UPIID)
	if method == domain.WithdrawalUPI && !validate.IsUPIID(upi) {
		return nil, domain.NewValidationError(domain.KindInvalidField, "upi_id", "UPI ID is required for UPI withdrawals")
	}

	wd := &domain.Withdrawal{
		FinancierID:       financier.ID,
		Amount:            amount.Decimal(),
		Method:            method,
		Status:            domain.WithdrawalPending,
		BankName:          strings.TrimSpace(in.BankName),
		AccountHolderName: strings.TrimSpace(in.AccountHolderName),
		AccountNumber:     strings.TrimSpace(in.AccountNumber),
		IFSCCode:          strings.ToUpper(strings.TrimSpace(in.IFSCCode)),
		UPIID:             upi,
		Notes:             in.Notes,
		CreatedAt:         s.now(),
	}
	if _, err := s.repo.CreateWithdrawal(ctx, wd); err != nil {
		return nil, err
	}

	zap.L().Info("withdrawal requested",
		zap.Int("withdrawal_id", wd.ID),
		zap.String("financier", financier.FinancierCode),
		zap.String("amount", wd.Amount.StringFixed(2)),
	)
	s.notifier.Notify(ctx, notify.EventWithdrawalRequested, actor.Email, notify.NewWithdrawalNotice(wd, ""))
	return wd, nil
}

// ListWithdrawals returns every withdrawal for staff and the caller's own otherwise.
func (s *Service) ListWithdrawals(ctx context.Context, actor auth.Actor, status domain.WithdrawalStatus) ([]domain.Withdrawal, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError(domain.KindInvalidField, "status", "unknown withdrawal status %q", status)
	}
	filter := domain.WithdrawalFilter{Status: status}
	if !actor.IsStaff {
		financier, err := s.financierOf(ctx, actor)
		if err != nil {
			return nil, err
		}
		filter.FinancierID = &financier.ID
	}
	return s.repo.GetWithdrawals(ctx, filter)
}

// Approve moves a Pending withdrawal to Processing and tells the financier.
func (s *Service) Approve(ctx context.Context, actor auth.Actor, id int) (*domain.Withdrawal, error) {
	wd, err := s.transition(ctx, actor, id, domain.WithdrawalProcessing, "Approved")
	if err != nil {
		return nil, err
	}
	s.notifyFinancier(ctx, wd, actor)
	return wd, nil
}

func (s *Service) Complete(ctx context.Context, actor auth.Actor, id int) (*domain.Withdrawal, error) {
	return s.transition(ctx, actor, id, domain.WithdrawalCompleted, "Completed")
}

func (s *Service) Reject(ctx context.Context, actor auth.Actor, id int) (*domain.Withdrawal, error) {
	return s.transition(ctx, actor, id, domain.WithdrawalFailed, "Rejected")
}

func (s *Service) transition(ctx context.Context, actor auth.Actor, id int, to domain.WithdrawalStatus, action string) (*domain.Withdrawal, error) {
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}
	now := s.now()

	var wd *domain.Withdrawal
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		wd, err = s.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if wd == nil {
			return domain.ErrWithdrawalNotFound
		}
		if err := wd.Status.TransitionTo(to); err != nil {
			return err
		}
		wd.Status = to
		wd.ProcessedBy = &actor.UserID
		wd.ProcessedAt = &now
		if to == domain.WithdrawalCompleted && wd.TransactionID == "" {
			wd.TransactionID = "WD-" + strings.ToUpper(uuid.NewString()[:8])
		}
		note := action + " by " + actor.Label() + " on " + now.Format(noteTimeLayout)
		if wd.Notes == "" {
			wd.Notes = note
		} else {
			wd.Notes += "\n" + note
		}
		return s.repo.UpdateWithdrawal(ctx, wd)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("withdrawal status changed",
		zap.Int("withdrawal_id", id),
		zap.String("status", string(wd.Status)),
		zap.String("by", actor.Label()),
	)
	return wd, nil
}

func (s *Service) financierOf(ctx context.Context, actor auth.Actor) (*domain.Financier, error) {
	if !actor.IsFinancier() {
		return nil, domain.ErrForbidden
	}
	financier, err := s.userRepo.FindFinancierByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if financier == nil {
		return nil, domain.ErrFinancierNotFound
	}
	return financier, nil
}

func (s *Service) notifyFinancier(ctx context.Context, wd *domain.Withdrawal, actor auth.Actor) {
	financier, err := s.userRepo.FindFinancierByID(ctx, wd.FinancierID)
	if err != nil || financier == nil {
		zap.L().Error("can't load financier for withdrawal notification", zap.Int("withdrawal_id", wd.ID), zap.Error(err))
		return
	}
	user, err := s.userRepo.FindByID(ctx, financier.UserID)
	if err != nil || user == nil {
		zap.L().Error("can't load financier user for withdrawal notification", zap.Int("withdrawal_id", wd.ID), zap.Error(err))
		return
	}
	s.notifier.Notify(ctx, notify.EventWithdrawalProcessed, user.Email, notify.NewWithdrawalNotice(wd, actor.Label()))
}
