package loanservice

import (
	"context"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/notify"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const noteTimeLayout = "2006-01-02 15:04"

type LoanRepo interface {
	Create(ctx context.Context, loan *domain.LoanApplication) (*domain.LoanApplication, error)
	FindByID(ctx context.Context, id int) (*domain.LoanApplication, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.LoanApplication, error)
	HasActiveLoan(ctx context.Context, borrowerID int) (bool, error)
	List(ctx context.Context, filter domain.LoanFilter) ([]domain.LoanApplication, error)
	Update(ctx context.Context, loan *domain.LoanApplication) error
	Statistics(ctx context.Context, borrowerID *int, today time.Time) (*domain.LoanStatistics, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.User, error)
}

type RepaymentRepo interface {
	SumPaid(ctx context.Context, loanID int) (decimal.Decimal, error)
}

type Metrics interface {
	LoanCreated(status string)
}

type Service struct {
	loanRepo      LoanRepo
	userRepo      UserRepo
	repaymentRepo RepaymentRepo
	txManager     pg.TXManager
	notifier      notify.Notifier
	metrics       Metrics
	now           func() time.Time
}

func New(loanRepo LoanRepo, userRepo UserRepo, repaymentRepo RepaymentRepo, txManager pg.TXManager,
	notifier notify.Notifier, metrics Metrics) *Service {
	return &Service{
		loanRepo:      loanRepo,
		userRepo:      userRepo,
		repaymentRepo: repaymentRepo,
		txManager:     txManager,
		notifier:      notifier,
		metrics:       metrics,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type Eligibility struct {
	Eligible      bool
	HasActiveLoan bool
	GPA           decimal.Decimal
}

// CanApply reports whether a new application would be auto-approved.
func (e Eligibility) CanApply() bool {
	return e.Eligible && !e.HasActiveLoan
}

// LoanView is a loan together with its repayment aggregate.
type LoanView struct {
	Loan      *domain.LoanApplication
	TotalPaid decimal.Decimal
	Remaining decimal.Decimal
}

type CreateLoanInput struct {
	BorrowerID int
	Amount     int64
	Reason     string
	DueDate    *time.Time
}

type UpdateLoanInput struct {
	Amount       *int64
	InterestRate *decimal.Decimal
	DueDate      *time.Time
	AdminNotes   *string
}

// Eligibility is recomputed from stored state on every call.
func (s *Service) Eligibility(ctx context.Context, borrowerID int) (*Eligibility, error) {
	user, err := s.userRepo.FindByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	hasActive, err := s.loanRepo.HasActiveLoan(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	gpa, err := domain.NewGPA(user.GPA)
	if err != nil {
		return nil, err
	}
	return &Eligibility{
		Eligible:      gpa.Eligible(),
		HasActiveLoan: hasActive,
		GPA:           gpa.Decimal(),
	}, nil
}

func (s *Service) CreateLoan(ctx context.Context, actor auth.Actor, in CreateLoanInput) (*domain.LoanApplication, error) {
	borrowerID := in.BorrowerID
	if borrowerID == 0 {
		borrowerID = actor.UserID
	}
	if borrowerID != actor.UserID && !actor.IsStaff {
		return nil, domain.ErrForbidden
	}
	onBehalf := borrowerID != actor.UserID

	amount, err := domain.NewLoanAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if in.DueDate != nil {
		if err := domain.ValidateDueDate(*in.DueDate, now); err != nil {
			return nil, err
		}
	}

	// unlocked pre-check so a doomed application fails before taking locks
	user, err := s.userRepo.FindByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if _, err := s.evaluate(ctx, user, onBehalf); err != nil {
		return nil, err
	}

	var (
		loan     *domain.LoanApplication
		borrower *domain.User
	)
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		borrower, err = s.userRepo.FindByIDForUpdate(ctx, borrowerID)
		if err != nil {
			return err
		}
		if borrower == nil {
			return domain.ErrUserNotFound
		}
		status, err := s.evaluate(ctx, borrower, onBehalf)
		if err != nil {
			return err
		}

		loan = &domain.LoanApplication{
			BorrowerID:   borrowerID,
			Amount:       amount.Int64(),
			Reason:       in.Reason,
			Status:       status,
			InterestRate: domain.DefaultDisplayRate,
			CreatedAt:    now,
		}
		if status == domain.LoanApproved {
			loan.AdminNotes = domain.AutoApprovalNote
			due := domain.DefaultDueDate(now)
			if in.DueDate != nil {
				due = domain.DateOf(*in.DueDate)
			}
			loan.RepaymentDueDate = &due
		}
		_, err = s.loanRepo.Create(ctx, loan)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("loan application created",
		zap.Int("loan_id", loan.ID),
		zap.Int("borrower_id", borrowerID),
		zap.String("status", string(loan.Status)),
	)
	if s.metrics != nil {
		s.metrics.LoanCreated(string(loan.Status))
	}
	if loan.Status == domain.LoanApproved {
		s.notifier.Notify(ctx, notify.EventLoanApproved, borrower.Email, notify.NewLoanNotice(loan, now))
	}
	return loan, nil
}

func (s *Service) evaluate(ctx context.Context, borrower *domain.User, onBehalf bool) (domain.LoanStatus, error) {
	hasActive, err := s.loanRepo.HasActiveLoan(ctx, borrower.ID)
	if err != nil {
		return "", err
	}
	gpa, err := domain.NewGPA(borrower.GPA)
	if err != nil {
		return "", err
	}
	return domain.EvaluateApplication(gpa, hasActive, onBehalf)
}

// GetLoan returns a loan visible to actor: staff see every loan, borrowers their own.
func (s *Service) GetLoan(ctx context.Context, actor auth.Actor, id int) (*LoanView, error) {
	loan, err := s.loanRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan == nil || (!actor.IsStaff && loan.BorrowerID != actor.UserID) {
		return nil, domain.ErrLoanNotFound
	}
	return s.view(ctx, loan)
}

func (s *Service) ListLoans(ctx context.Context, actor auth.Actor, status domain.LoanStatus) ([]LoanView, error) {
	filter := domain.LoanFilter{Status: status}
	if !actor.IsStaff {
		filter.BorrowerID = &actor.UserID
	}
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError(domain.KindInvalidField, "status", "unknown loan status %q", status)
	}
	loans, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]LoanView, 0, len(loans))
	for i := range loans {
		v, err := s.view(ctx, &loans[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *Service) view(ctx context.Context, loan *domain.LoanApplication) (*LoanView, error) {
	paid, err := s.repaymentRepo.SumPaid(ctx, loan.ID)
	if err != nil {
		return nil, err
	}
	return &LoanView{
		Loan:      loan,
		TotalPaid: paid,
		Remaining: domain.RemainingAmount(loan.TotalAmountDue(), paid),
	}, nil
}

// Approve moves a pending loan to Approved. Without dueDate the loan is due
// LoanTermDays after creation.
func (s *Service) Approve(ctx context.Context, actor auth.Actor, id int, dueDate *time.Time) (*domain.LoanApplication, error) {
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}
	now := s.now()
	if dueDate != nil {
		if err := domain.ValidateDueDate(*dueDate, now); err != nil {
			return nil, err
		}
	}

	var (
		loan     *domain.LoanApplication
		borrower *domain.User
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.lockLoan(ctx, id)
		if err != nil {
			return err
		}
		if err := loan.Status.TransitionTo(domain.LoanApproved); err != nil {
			return err
		}
		loan.Status = domain.LoanApproved
		switch {
		case dueDate != nil:
			due := domain.DateOf(*dueDate)
			loan.RepaymentDueDate = &due
		case loan.RepaymentDueDate == nil:
			due := domain.DefaultDueDate(loan.CreatedAt)
			loan.RepaymentDueDate = &due
		}
		loan.AdminNotes = "Approved by " + actor.Label() + " on " + now.Format(noteTimeLayout)
		loan.UpdatedAt = now
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}
		borrower, err = s.userRepo.FindByID(ctx, loan.BorrowerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("loan approved", zap.Int("loan_id", id), zap.String("by", actor.Label()))
	if borrower != nil {
		s.notifier.Notify(ctx, notify.EventLoanApproved, borrower.Email, notify.NewLoanNotice(loan, now))
	}
	return loan, nil
}

func (s *Service) Reject(ctx context.Context, actor auth.Actor, id int) (*domain.LoanApplication, error) {
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}
	now := s.now()

	var loan *domain.LoanApplication
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.lockLoan(ctx, id)
		if err != nil {
			return err
		}
		if err := loan.Status.TransitionTo(domain.LoanRejected); err != nil {
			return err
		}
		loan.Status = domain.LoanRejected
		loan.AdminNotes = "Rejected by " + actor.Label() + " on " + now.Format(noteTimeLayout)
		loan.UpdatedAt = now
		return s.loanRepo.Update(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("loan rejected", zap.Int("loan_id", id), zap.String("by", actor.Label()))
	return loan, nil
}

// UpdateLoan applies the staff edit form. Its amount ceiling is
// MaxAdminLoanAmount, not MaxLoanAmount.
func (s *Service) UpdateLoan(ctx context.Context, actor auth.Actor, id int, in UpdateLoanInput) (*domain.LoanApplication, error) {
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}
	var (
		amount domain.LoanAmount
		rate   domain.Rate
		err    error
	)
	if in.Amount != nil {
		if amount, err = domain.NewAdminLoanAmount(*in.Amount); err != nil {
			return nil, err
		}
	}
	if in.InterestRate != nil {
		if rate, err = domain.NewDisplayInterestRate(*in.InterestRate); err != nil {
			return nil, err
		}
	}
	now := s.now()
	if in.DueDate != nil {
		if err := domain.ValidateDueDate(*in.DueDate, now); err != nil {
			return nil, err
		}
	}

	var loan *domain.LoanApplication
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.lockLoan(ctx, id)
		if err != nil {
			return err
		}
		if in.Amount != nil {
			loan.Amount = amount.Int64()
		}
		if in.InterestRate != nil {
			loan.InterestRate = rate.Decimal()
		}
		if in.DueDate != nil {
			due := domain.DateOf(*in.DueDate)
			loan.RepaymentDueDate = &due
		}
		if in.AdminNotes != nil {
			loan.AdminNotes = *in.AdminNotes
		}
		// the edited loan must still cover what has already been paid
		paid, err := s.repaymentRepo.SumPaid(ctx, loan.ID)
		if err != nil {
			return err
		}
		if due := loan.TotalAmountDue(); paid.GreaterThan(due) {
			return domain.NewValidationError(domain.KindAmountOutOfRange, "amount",
				"total amount due %s would be below the %s already paid", due.StringFixed(2), paid.StringFixed(2))
		}
		loan.UpdatedAt = now
		return s.loanRepo.Update(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Statistics covers every loan for staff and the caller's own loans otherwise.
func (s *Service) Statistics(ctx context.Context, actor auth.Actor) (*domain.LoanStatistics, error) {
	var borrowerID *int
	if !actor.IsStaff {
		borrowerID = &actor.UserID
	}
	return s.loanRepo.Statistics(ctx, borrowerID, s.now())
}

func (s *Service) lockLoan(ctx context.Context, id int) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}
	return loan, nil
}
