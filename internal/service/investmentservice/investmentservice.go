package investmentservice

import (
	"context"
	"strings"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const noteTimeLayout = "2006-01-02 15:04"

type Repo interface {
	Create(ctx context.Context, inv *domain.Investment) (*domain.Investment, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.Investment, error)
	List(ctx context.Context, filter domain.InvestmentFilter) ([]domain.Investment, error)
	Update(ctx context.Context, inv *domain.Investment) error
}

type LoanRepo interface {
	FindByID(ctx context.Context, id int) (*domain.LoanApplication, error)
}

type FinancierRepo interface {
	FindFinancierByUserID(ctx context.Context, userID int) (*domain.Financier, error)
}

type Service struct {
	repo          Repo
	loanRepo      LoanRepo
	financierRepo FinancierRepo
	txManager     pg.TXManager
	now           func() time.Time
}

func New(repo Repo, loanRepo LoanRepo, financierRepo FinancierRepo, txManager pg.TXManager) *Service {
	return &Service{
		repo:          repo,
		loanRepo:      loanRepo,
		financierRepo: financierRepo,
		txManager:     txManager,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type CreateInput struct {
	LoanID             int
	Amount             decimal.Decimal
	ExpectedReturnRate *decimal.Decimal
	Method             domain.InvestmentMethod
	MaturityDate       *time.Time
	Notes              string
}

// View is an investment with the returns derived from its loan.
type View struct {
	Investment           *domain.Investment
	ExpectedReturnAmount decimal.Decimal
	TotalReturnAmount    decimal.Decimal
	PeriodDays           int
}

func newView(inv *domain.Investment, loan *domain.LoanApplication) View {
	rate := domain.DefaultDisplayRate
	if loan != nil {
		rate = loan.InterestRate
	}
	return View{
		Investment:           inv,
		ExpectedReturnAmount: inv.ExpectedReturnAmount(rate),
		TotalReturnAmount:    inv.TotalReturnAmount(rate),
		PeriodDays:           inv.PeriodDays(),
	}
}

func (s *Service) CreateInvestment(ctx context.Context, actor auth.Actor, in CreateInput) (*View, error) {
	financier, err := s.financierOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	amount, err := domain.NewInvestmentAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	rateValue := domain.DefaultReturnRate
	if in.ExpectedReturnRate != nil {
		rateValue = *in.ExpectedReturnRate
	}
	rate, err := domain.NewReturnRate(rateValue)
	if err != nil {
		return nil, err
	}
	method := in.Method
	if method == "" {
		method = domain.InvestmentBankTransfer
	}
	if !method.Valid() {
		return nil, domain.NewValidationError(domain.KindInvalidField, "investment_method", "unknown investment method %q", method)
	}

	loan, err := s.loanRepo.FindByID(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}
	if loan.Status != domain.LoanApproved {
		return nil, domain.NewValidationError(domain.KindLoanNotApproved, "loan_id", "investments can only be made in approved loans")
	}

	now := s.now()
	inv := &domain.Investment{
		FinancierID:        financier.ID,
		LoanID:             loan.ID,
		InvestmentAmount:   amount.Decimal(),
		ExpectedReturnRate: rate.Decimal(),
		Method:             method,
		Status:             domain.InvestmentPending,
		InvestmentDate:     now,
		MaturityDate:       loan.RepaymentDueDate,
		Notes:              in.Notes,
	}
	if in.MaturityDate != nil {
		maturity := domain.DateOf(*in.MaturityDate)
		if !maturity.After(domain.DateOf(now)) {
			return nil, domain.NewValidationError(domain.KindInvalidField, "maturity_date", "maturity date must be in the future")
		}
		inv.MaturityDate = &maturity
	}
	if _, err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	zap.L().Info("investment created",
		zap.Int("investment_id", inv.ID),
		zap.String("financier", financier.FinancierCode),
		zap.Int("loan_id", loan.ID),
	)
	view := newView(inv, loan)
	return &view, nil
}

// ListInvestments returns every investment for staff and the caller's own otherwise.
func (s *Service) ListInvestments(ctx context.Context, actor auth.Actor, filter domain.InvestmentFilter) ([]View, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError(domain.KindInvalidField, "status", "unknown investment status %q", filter.Status)
	}
	if !actor.IsStaff {
		financier, err := s.financierOf(ctx, actor)
		if err != nil {
			return nil, err
		}
		filter.FinancierID = &financier.ID
	}
	investments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	loans := make(map[int]*domain.LoanApplication)
	views := make([]View, 0, len(investments))
	for i := range investments {
		inv := &investments[i]
		loan, ok := loans[inv.LoanID]
		if !ok {
			if loan, err = s.loanRepo.FindByID(ctx, inv.LoanID); err != nil {
				return nil, err
			}
			loans[inv.LoanID] = loan
		}
		views = append(views, newView(inv, loan))
	}
	return views, nil
}

// Transition moves an investment along Pending, Approved, Active, Completed.
// Cancelled and Defaulted are reachable from any state that is not final.
func (s *Service) Transition(ctx context.Context, actor auth.Actor, id int, to domain.InvestmentStatus) (*domain.Investment, error) {
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}
	if !to.Valid() {
		return nil, domain.NewValidationError(domain.KindInvalidField, "status", "unknown investment status %q", to)
	}
	now := s.now()

	var inv *domain.Investment
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInvestmentNotFound
		}
		if err := inv.Status.TransitionTo(to); err != nil {
			return err
		}
		inv.Status = to
		inv.ProcessedBy = &actor.UserID
		inv.ProcessedAt = &now
		if to == domain.InvestmentActive && inv.TransactionID == "" {
			inv.TransactionID = "INV-" + strings.ToUpper(uuid.NewString()[:8])
		}
		note := string(to) + " by " + actor.Label() + " on " + now.Format(noteTimeLayout)
		if inv.Notes == "" {
			inv.Notes = note
		} else {
			inv.Notes += "\n" + note
		}
		return s.repo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("investment status changed", zap.Int("investment_id", id), zap.String("status", string(to)))
	return inv, nil
}

func (s *Service) financierOf(ctx context.Context, actor auth.Actor) (*domain.Financier, error) {
	if !actor.IsFinancier() {
		return nil, domain.ErrForbidden
	}
	financier, err := s.financierRepo.FindFinancierByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if financier == nil {
		return nil, domain.ErrFinancierNotFound
	}
	return financier, nil
}
