package repaymentservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/gateway"
	"github.com/GlebRadaev/loanportal/internal/notify"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/validate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultGateway  = "razorpay"
	DefaultCurrency = "INR"

	noteTimeLayout = "2006-01-02 15:04"
)

type LoanRepo interface {
	FindByID(ctx context.Context, id int) (*domain.LoanApplication, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.LoanApplication, error)
	FindApprovedByBorrower(ctx context.Context, borrowerID int) (*domain.LoanApplication, error)
}

type RepaymentRepo interface {
	Create(ctx context.Context, rp *domain.Repayment) (*domain.Repayment, error)
	FindByID(ctx context.Context, id int) (*domain.Repayment, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.Repayment, error)
	ListByLoan(ctx context.Context, loanID int) ([]domain.Repayment, error)
	SumPaid(ctx context.Context, loanID int) (decimal.Decimal, error)
	Update(ctx context.Context, rp *domain.Repayment) error
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type Gateways interface {
	Supports(name string) bool
	CreatePayment(ctx context.Context, name string, p gateway.Payment) (*gateway.Order, error)
	VerifyPayment(ctx context.Context, name string, v gateway.Verification) (bool, error)
}

type Metrics interface {
	RepaymentRecorded(method, status string)
}

type Service struct {
	loanRepo      LoanRepo
	repaymentRepo RepaymentRepo
	userRepo      UserRepo
	txManager     pg.TXManager
	gateways      Gateways
	notifier      notify.Notifier
	metrics       Metrics
	now           func() time.Time
}

func New(loanRepo LoanRepo, repaymentRepo RepaymentRepo, userRepo UserRepo, txManager pg.TXManager,
	gateways Gateways, notifier notify.Notifier, metrics Metrics) *Service {
	return &Service{
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		userRepo:      userRepo,
		txManager:     txManager,
		gateways:      gateways,
		notifier:      notifier,
		metrics:       metrics,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RecordRepaymentInput carries a payment against one loan. When Gateway is
// set the payment is initiated with that provider instead of being recorded
// as already received.
type RecordRepaymentInput struct {
	LoanID        int
	Amount        decimal.Decimal
	Method        domain.PaymentMethod
	PaymentDate   *time.Time
	TransactionID string
	UPIID         string
	BankName      string
	AccountNumber string
	IFSCCode      string
	CardNumber    string
	Notes         string
	Gateway       string
}

// Result is a stored repayment and the loan balance after it.
type Result struct {
	Repayment *domain.Repayment
	Remaining decimal.Decimal
	Order     *gateway.Order
}

type Summary struct {
	HasActiveLoan  bool
	LoanID         int
	TotalAmountDue decimal.Decimal
	TotalPaid      decimal.Decimal
	Remaining      decimal.Decimal
	IsOverdue      bool
	DaysUntilDue   *int
	Progress       decimal.Decimal
}

// RecordRepayment stores a payment under the loan row lock so that the sum of
// Paid repayments can never exceed the amount due.
func (s *Service) RecordRepayment(ctx context.Context, actor auth.Actor, in RecordRepaymentInput) (*Result, error) {
	method := in.Method
	if method == "" {
		method = domain.MethodManual
		if in.Gateway != "" {
			method = domain.MethodRazorpay
		}
	}
	if !method.Valid() {
		return nil, domain.NewValidationError(domain.KindInvalidField, "payment_method", "unknown payment method %q", method)
	}
	if in.Gateway != "" && !s.gateways.Supports(in.Gateway) {
		return nil, &domain.GatewayError{Gateway: in.Gateway, Op: gateway.OpCreatePayment, Err: gateway.ErrUnknownGateway}
	}
	now := s.now()

	var (
		rp        *domain.Repayment
		loan      *domain.LoanApplication
		remaining decimal.Decimal
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.loanRepo.FindByIDForUpdate(ctx, in.LoanID)
		if err != nil {
			return err
		}
		if loan == nil || (!actor.IsStaff && loan.BorrowerID != actor.UserID) {
			return domain.ErrLoanNotFound
		}
		if loan.Status != domain.LoanApproved {
			return domain.ErrLoanNotApproved
		}
		amount, err := domain.NewRepaymentAmount(in.Amount)
		if err != nil {
			return err
		}
		paid, err := s.repaymentRepo.SumPaid(ctx, loan.ID)
		if err != nil {
			return err
		}
		remaining = domain.RemainingAmount(loan.TotalAmountDue(), paid)
		if amount.Decimal().GreaterThan(remaining) {
			return overpayment(remaining)
		}

		rp = &domain.Repayment{
			LoanID:        loan.ID,
			AmountPaid:    amount.Decimal(),
			PaymentDate:   now,
			Status:        domain.RepaymentPending,
			PaymentMethod: method,
			TransactionID: in.TransactionID,
			Notes:         in.Notes,
		}
		if in.PaymentDate != nil {
			rp.PaymentDate = *in.PaymentDate
		}
		if err := applyMethodDetails(rp, in); err != nil {
			return err
		}

		if in.Gateway != "" {
			rp.Status = domain.RepaymentProcessing
			rp.Gateway = in.Gateway
		} else if rp.AmountPaid.IsPositive() {
			rp.Status = domain.RepaymentPaid
			remaining = remaining.Sub(rp.AmountPaid)
		}
		_, err = s.repaymentRepo.Create(ctx, rp)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Repayment: rp, Remaining: remaining}
	if in.Gateway != "" {
		order, err := s.initiate(ctx, rp)
		s.record(rp)
		if err != nil {
			return nil, err
		}
		result.Order = order
		return result, nil
	}

	zap.L().Info("repayment recorded",
		zap.Int("repayment_id", rp.ID),
		zap.Int("loan_id", rp.LoanID),
		zap.String("amount", rp.AmountPaid.StringFixed(2)),
	)
	s.record(rp)
	s.notifyPaid(ctx, loan, rp, remaining)
	return result, nil
}

func overpayment(remaining decimal.Decimal) error {
	return domain.NewValidationError(domain.KindOverpayment, "amount_paid",
		"payment exceeds remaining amount, remaining balance is %s", remaining.StringFixed(2))
}

// applyMethodDetails validates method specific fields and stores only masked
// account identifiers.
func applyMethodDetails(rp *domain.Repayment, in RecordRepaymentInput) error {
	switch rp.PaymentMethod {
	case domain.MethodUPI:
		if !validate.IsUPIID(in.UPIID) {
			return domain.NewValidationError(domain.KindInvalidField, "upi_id", "a valid UPI ID is required for UPI payments")
		}
		rp.UPIID = validate.MaskHandle(in.UPIID)
	case domain.MethodBankTransfer:
		if strings.TrimSpace(in.BankName) == "" || validate.DigitsOnly(in.AccountNumber) == "" {
			return domain.NewValidationError(domain.KindInvalidField, "bank_name",
				"bank name and account number are required for bank transfers")
		}
		ifsc := strings.ToUpper(strings.TrimSpace(in.IFSCCode))
		if !validate.IsIFSC(ifsc) {
			return domain.NewValidationError(domain.KindInvalidField, "ifsc_code", "a valid IFSC code is required for bank transfers")
		}
		rp.BankName = strings.TrimSpace(in.BankName)
		rp.AccountNumber = validate.MaskNumber(in.AccountNumber)
		rp.IFSCCode = ifsc
	case domain.MethodCreditCard, domain.MethodDebitCard:
		if in.CardNumber != "" {
			card := validate.DigitsOnly(in.CardNumber)
			if !validate.IsLuna(card) {
				return domain.NewValidationError(domain.KindInvalidField, "card_number", "invalid card number")
			}
			rp.AccountNumber = validate.MaskNumber(card)
		}
	}
	return nil
}

// initiate runs outside the loan lock. A provider failure leaves the
// repayment Failed.
func (s *Service) initiate(ctx context.Context, rp *domain.Repayment) (*gateway.Order, error) {
	order, err := s.gateways.CreatePayment(ctx, rp.Gateway, gateway.Payment{
		RepaymentID: rp.ID,
		LoanID:      rp.LoanID,
		Amount:      rp.AmountPaid,
		Currency:    DefaultCurrency,
		Receipt:     "loan_repayment_" + uuid.NewString(),
	})
	if err != nil {
		zap.L().Error("can't create gateway payment", zap.Int("repayment_id", rp.ID), zap.Error(err))
		rp.Status = domain.RepaymentFailed
		rp.Notes = appendNote(rp.Notes, "Gateway error: "+err.Error())
		if uerr := s.repaymentRepo.Update(ctx, rp); uerr != nil {
			zap.L().Error("can't mark repayment failed", zap.Int("repayment_id", rp.ID), zap.Error(uerr))
		}
		return nil, err
	}
	rp.GatewayTransactionID = order.CorrelationID
	rp.GatewayResponse = order.Response
	if err := s.repaymentRepo.Update(ctx, rp); err != nil {
		return nil, err
	}
	return order, nil
}

// InitiatePayment retries a gateway payment for a Pending or Failed repayment.
func (s *Service) InitiatePayment(ctx context.Context, actor auth.Actor, repaymentID int, gatewayName string) (*gateway.Order, error) {
	if gatewayName == "" {
		gatewayName = DefaultGateway
	}
	if !s.gateways.Supports(gatewayName) {
		return nil, &domain.GatewayError{Gateway: gatewayName, Op: gateway.OpCreatePayment, Err: gateway.ErrUnknownGateway}
	}
	var rp *domain.Repayment
	err := s.locked(ctx, actor, repaymentID, func(ctx context.Context, _ *domain.LoanApplication, r *domain.Repayment) error {
		rp = r
		if rp.Status != domain.RepaymentPending && rp.Status != domain.RepaymentFailed {
			return fmt.Errorf("%w: payment cannot be initiated for a %s repayment", domain.ErrInvalidTransition, rp.Status)
		}
		rp.Status = domain.RepaymentProcessing
		rp.Gateway = gatewayName
		return s.repaymentRepo.Update(ctx, rp)
	})
	if err != nil {
		return nil, err
	}
	order, err := s.initiate(ctx, rp)
	s.record(rp)
	return order, err
}

// VerifyPayment checks the provider signature of a Processing repayment. A
// verified payment becomes Paid unless the loan was settled meanwhile.
func (s *Service) VerifyPayment(ctx context.Context, actor auth.Actor, repaymentID int, v gateway.Verification) (*Result, error) {
	var (
		rp        *domain.Repayment
		loan      *domain.LoanApplication
		remaining decimal.Decimal
		gwErr     error
	)
	err := s.locked(ctx, actor, repaymentID, func(ctx context.Context, l *domain.LoanApplication, r *domain.Repayment) error {
		loan, rp = l, r
		if rp.Status != domain.RepaymentProcessing {
			return fmt.Errorf("%w: repayment is %s", domain.ErrInvalidTransition, rp.Status)
		}
		if v.OrderID == "" {
			v.OrderID = rp.GatewayTransactionID
		}
		verified, err := s.gateways.VerifyPayment(ctx, rp.Gateway, v)
		if err != nil {
			// the Failed state is committed; the gateway error is returned after the tx
			gwErr = err
			now := s.now()
			rp.Status = domain.RepaymentFailed
			rp.Notes = appendNote(rp.Notes, "Gateway error: "+err.Error())
			rp.ProcessedAt = &now
			return s.repaymentRepo.Update(ctx, rp)
		}
		paid, err := s.repaymentRepo.SumPaid(ctx, loan.ID)
		if err != nil {
			return err
		}
		remaining = domain.RemainingAmount(loan.TotalAmountDue(), paid)

		now := s.now()
		switch {
		case v.OrderID != rp.GatewayTransactionID || !verified:
			rp.Status = domain.RepaymentFailed
			rp.Notes = appendNote(rp.Notes, "Signature verification failed on "+now.Format(noteTimeLayout))
		case rp.AmountPaid.GreaterThan(remaining):
			rp.Status = domain.RepaymentFailed
			rp.Notes = appendNote(rp.Notes, "Payment exceeds remaining amount "+remaining.StringFixed(2))
		default:
			rp.Status = domain.RepaymentPaid
			rp.Notes = appendNote(rp.Notes, "Gateway payment "+v.PaymentID+" verified on "+now.Format(noteTimeLayout))
			remaining = remaining.Sub(rp.AmountPaid)
		}
		rp.ProcessedAt = &now
		return s.repaymentRepo.Update(ctx, rp)
	})
	if err != nil {
		return nil, err
	}
	s.record(rp)
	if gwErr != nil {
		zap.L().Error("can't verify gateway payment", zap.Int("repayment_id", rp.ID), zap.Error(gwErr))
		return nil, gwErr
	}
	if rp.Status == domain.RepaymentPaid {
		s.notifyPaid(ctx, loan, rp, remaining)
	}
	return &Result{Repayment: rp, Remaining: remaining}, nil
}

// MarkPaid confirms a Pending or Processing repayment. The loan balance is
// checked again under the lock.
func (s *Service) MarkPaid(ctx context.Context, actor auth.Actor, repaymentID int) (*Result, error) {
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}
	var (
		rp        *domain.Repayment
		loan      *domain.LoanApplication
		remaining decimal.Decimal
	)
	err := s.locked(ctx, actor, repaymentID, func(ctx context.Context, l *domain.LoanApplication, r *domain.Repayment) error {
		loan, rp = l, r
		if err := rp.Status.TransitionTo(domain.RepaymentPaid); err != nil {
			return err
		}
		paid, err := s.repaymentRepo.SumPaid(ctx, loan.ID)
		if err != nil {
			return err
		}
		remaining = domain.RemainingAmount(loan.TotalAmountDue(), paid)
		if rp.AmountPaid.GreaterThan(remaining) {
			return overpayment(remaining)
		}
		s.stamp(rp, actor, domain.RepaymentPaid, "Marked as paid")
		remaining = remaining.Sub(rp.AmountPaid)
		return s.repaymentRepo.Update(ctx, rp)
	})
	if err != nil {
		return nil, err
	}
	s.record(rp)
	s.notifyPaid(ctx, loan, rp, remaining)
	return &Result{Repayment: rp, Remaining: remaining}, nil
}

func (s *Service) MarkFailed(ctx context.Context, actor auth.Actor, repaymentID int) (*domain.Repayment, error) {
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}
	var rp *domain.Repayment
	err := s.locked(ctx, actor, repaymentID, func(ctx context.Context, _ *domain.LoanApplication, r *domain.Repayment) error {
		rp = r
		if err := rp.Status.TransitionTo(domain.RepaymentFailed); err != nil {
			return err
		}
		s.stamp(rp, actor, domain.RepaymentFailed, "Marked as failed")
		return s.repaymentRepo.Update(ctx, rp)
	})
	if err != nil {
		return nil, err
	}
	s.record(rp)
	return rp, nil
}

func (s *Service) stamp(rp *domain.Repayment, actor auth.Actor, status domain.RepaymentStatus, action string) {
	now := s.now()
	rp.Status = status
	rp.ProcessedBy = &actor.UserID
	rp.ProcessedAt = &now
	rp.Notes = appendNote(rp.Notes, action+" by "+actor.Label()+" on "+now.Format(noteTimeLayout))
}

// locked takes the loan lock before the repayment lock, the same order
// RecordRepayment uses.
func (s *Service) locked(ctx context.Context, actor auth.Actor, repaymentID int,
	fn func(ctx context.Context, loan *domain.LoanApplication, rp *domain.Repayment) error) error {
	current, err := s.load(ctx, actor, repaymentID)
	if err != nil {
		return err
	}
	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.FindByIDForUpdate(ctx, current.LoanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return domain.ErrLoanNotFound
		}
		rp, err := s.repaymentRepo.FindByIDForUpdate(ctx, repaymentID)
		if err != nil {
			return err
		}
		if rp == nil {
			return domain.ErrRepaymentNotFound
		}
		return fn(ctx, loan, rp)
	})
}

// load reads a repayment visible to actor without locking.
func (s *Service) load(ctx context.Context, actor auth.Actor, repaymentID int) (*domain.Repayment, error) {
	rp, err := s.repaymentRepo.FindByID(ctx, repaymentID)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		return nil, domain.ErrRepaymentNotFound
	}
	loan, err := s.loanRepo.FindByID(ctx, rp.LoanID)
	if err != nil {
		return nil, err
	}
	if loan == nil || (!actor.IsStaff && loan.BorrowerID != actor.UserID) {
		return nil, domain.ErrRepaymentNotFound
	}
	return rp, nil
}

func (s *Service) ListByLoan(ctx context.Context, actor auth.Actor, loanID int) ([]domain.Repayment, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil || (!actor.IsStaff && loan.BorrowerID != actor.UserID) {
		return nil, domain.ErrLoanNotFound
	}
	return s.repaymentRepo.ListByLoan(ctx, loanID)
}

// Summary describes the borrower's most recent approved loan.
func (s *Service) Summary(ctx context.Context, borrowerID int) (*Summary, error) {
	loan, err := s.loanRepo.FindApprovedByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return &Summary{}, nil
	}
	paid, err := s.repaymentRepo.SumPaid(ctx, loan.ID)
	if err != nil {
		return nil, err
	}
	today := s.now()
	due := loan.TotalAmountDue()
	return &Summary{
		HasActiveLoan:  true,
		LoanID:         loan.ID,
		TotalAmountDue: due,
		TotalPaid:      paid,
		Remaining:      domain.RemainingAmount(due, paid),
		IsOverdue:      loan.IsOverdue(today),
		DaysUntilDue:   loan.DaysUntilDue(today),
		Progress:       domain.RepaymentProgress(due, paid),
	}, nil
}

func (s *Service) record(rp *domain.Repayment) {
	if s.metrics != nil {
		s.metrics.RepaymentRecorded(string(rp.PaymentMethod), string(rp.Status))
	}
}

func (s *Service) notifyPaid(ctx context.Context, loan *domain.LoanApplication, rp *domain.Repayment, remaining decimal.Decimal) {
	borrower, err := s.userRepo.FindByID(ctx, loan.BorrowerID)
	if err != nil || borrower == nil {
		zap.L().Error("can't load borrower for payment notification", zap.Int("loan_id", loan.ID), zap.Error(err))
		return
	}
	s.notifier.Notify(ctx, notify.EventPaymentConfirmed, borrower.Email, notify.NewPaymentNotice(rp, remaining))
}

func appendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}
