package repaymentservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/gateway"
	"github.com/GlebRadaev/loanportal/internal/notify"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

var now = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

type mocks struct {
	loans      *MockLoanRepo
	repayments *MockRepaymentRepo
	users      *MockUserRepo
	gateways   *MockGateways
	metrics    *MockMetrics
	tx         *pg.MockTXManager
	notifier   *notify.MockNotifier
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		loans:      NewMockLoanRepo(ctrl),
		repayments: NewMockRepaymentRepo(ctrl),
		users:      NewMockUserRepo(ctrl),
		gateways:   NewMockGateways(ctrl),
		metrics:    NewMockMetrics(ctrl),
		tx:         pg.NewMockTXManager(ctrl),
		notifier:   notify.NewMockNotifier(ctrl),
	}
	service := New(m.loans, m.repayments, m.users, m.tx, m.gateways, m.notifier, m.metrics)
	service.now = func() time.Time { return now }
	defer ctrl.Finish()
	return service, m
}

func (m *mocks) expectTx() {
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

var (
	borrower = auth.Actor{UserID: 1, Email: "student@example.com", UserType: "student"}
	staff    = auth.Actor{UserID: 9, Email: "admin@example.com", IsStaff: true}
)

// approvedLoan owes 1500.00: 1000 principal plus five months at 10%.
func approvedLoan() *domain.LoanApplication {
	due := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	return &domain.LoanApplication{
		ID:               1,
		BorrowerID:       1,
		Amount:           1000,
		Status:           domain.LoanApproved,
		RepaymentDueDate: &due,
		CreatedAt:        time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC),
	}
}

func user() *domain.User {
	return &domain.User{ID: 1, Email: "student@example.com"}
}

func created(ctx context.Context, rp *domain.Repayment) (*domain.Repayment, error) {
	rp.ID = 5
	return rp, nil
}

func TestRecordRepayment(t *testing.T) {
	service, m := NewMock(t)

	tests := []struct {
		name          string
		actor         auth.Actor
		input         RecordRepaymentInput
		prepareMock   func()
		expectedError error
		check         func(t *testing.T, result *Result)
	}{
		{
			name:  "Manual repayment recorded as paid",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(500)},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.NewFromInt(600), nil)
				m.repayments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created)
				m.metrics.EXPECT().RepaymentRecorded("Manual Entry", "Paid")
				m.users.EXPECT().FindByID(gomock.Any(), 1).Return(user(), nil)
				m.notifier.EXPECT().Notify(gomock.Any(), notify.EventPaymentConfirmed, "student@example.com", notify.PaymentNotice{
					LoanID:          1,
					Amount:          "500.00",
					PaymentDate:     "2025-03-01 12:00",
					RemainingAmount: "400.00",
				}).Return(true)
			},
			check: func(t *testing.T, result *Result) {
				assert.Equal(t, 5, result.Repayment.ID)
				assert.Equal(t, domain.RepaymentPaid, result.Repayment.Status)
				assert.Equal(t, "400.00", result.Remaining.StringFixed(2))
				assert.Nil(t, result.Order)
			},
		},
		{
			name:  "Exact remaining amount settles the loan",
			actor: staff,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.RequireFromString("1500.00"), Method: domain.MethodCash},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
				m.repayments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created)
				m.metrics.EXPECT().RepaymentRecorded("Cash", "Paid")
				m.users.EXPECT().FindByID(gomock.Any(), 1).Return(user(), nil)
				m.notifier.EXPECT().Notify(gomock.Any(), notify.EventPaymentConfirmed, gomock.Any(), gomock.Any()).Return(false)
			},
			check: func(t *testing.T, result *Result) {
				assert.True(t, result.Remaining.IsZero())
			},
		},
		{
			name:  "Overpayment rejected",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.RequireFromString("500.01")},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.NewFromInt(1000), nil)
			},
			expectedError: &domain.ValidationError{Kind: domain.KindOverpayment},
		},
		{
			name:  "Loan not approved",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(100)},
			prepareMock: func() {
				loan := approvedLoan()
				loan.Status = domain.LoanPending
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(loan, nil)
			},
			expectedError: domain.ErrLoanNotApproved,
		},
		{
			name:  "Loan of another borrower",
			actor: auth.Actor{UserID: 2},
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(100)},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
			},
			expectedError: domain.ErrLoanNotFound,
		},
		{
			name:  "Zero amount",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.Zero},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
			},
			expectedError: domain.ErrInvalidAmount,
		},
		{
			name:  "UPI without id",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(100), Method: domain.MethodUPI},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
			},
			expectedError: &domain.ValidationError{Kind: domain.KindInvalidField},
		},
		{
			name:  "UPI id stored masked",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(100), Method: domain.MethodUPI, UPIID: "asha@okbank"},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
				m.repayments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created)
				m.metrics.EXPECT().RepaymentRecorded("UPI", "Paid")
				m.users.EXPECT().FindByID(gomock.Any(), 1).Return(user(), nil)
				m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true)
			},
			check: func(t *testing.T, result *Result) {
				assert.Equal(t, "as***@okbank", result.Repayment.UPIID)
			},
		},
		{
			name:  "Bank transfer with bad IFSC",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(100), Method: domain.MethodBankTransfer,
				BankName: "SBI", AccountNumber: "1234567890", IFSCCode: "SBIN1234567"},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
			},
			expectedError: &domain.ValidationError{Kind: domain.KindInvalidField},
		},
		{
			name:  "Bank transfer stores masked account",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(100), Method: domain.MethodBankTransfer,
				BankName: "SBI", AccountNumber: "1234567890", IFSCCode: "sbin0001234"},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
				m.repayments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created)
				m.metrics.EXPECT().RepaymentRecorded("Bank Transfer", "Paid")
				m.users.EXPECT().FindByID(gomock.Any(), 1).Return(user(), nil)
				m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true)
			},
			check: func(t *testing.T, result *Result) {
				assert.Equal(t, "****7890", result.Repayment.AccountNumber)
				assert.Equal(t, "SBIN0001234", result.Repayment.IFSCCode)
			},
		},
		{
			name:  "Card failing the Luhn check",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(100), Method: domain.MethodCreditCard, CardNumber: "4111 1111 1111 1112"},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
			},
			expectedError: &domain.ValidationError{Kind: domain.KindInvalidField},
		},
		{
			name:  "Card stored as last four digits",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(100), Method: domain.MethodDebitCard, CardNumber: "4111 1111 1111 1111"},
			prepareMock: func() {
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
				m.repayments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created)
				m.metrics.EXPECT().RepaymentRecorded("Debit Card", "Paid")
				m.users.EXPECT().FindByID(gomock.Any(), 1).Return(user(), nil)
				m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true)
			},
			check: func(t *testing.T, result *Result) {
				assert.Equal(t, "****1111", result.Repayment.AccountNumber)
			},
		},
		{
			name:          "Unknown method",
			actor:         borrower,
			input:         RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(100), Method: "Barter"},
			prepareMock:   func() {},
			expectedError: domain.ErrValidation,
		},
		{
			name:  "Gateway payment initiated",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(250), Gateway: "razorpay"},
			prepareMock: func() {
				m.gateways.EXPECT().Supports("razorpay").Return(true)
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
				m.repayments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created)
				m.gateways.EXPECT().CreatePayment(gomock.Any(), "razorpay", gomock.Any()).
					DoAndReturn(func(ctx context.Context, name string, p gateway.Payment) (*gateway.Order, error) {
						assert.Equal(t, 5, p.RepaymentID)
						assert.Equal(t, DefaultCurrency, p.Currency)
						assert.Contains(t, p.Receipt, "loan_repayment_")
						return &gateway.Order{CorrelationID: "order_1", Response: []byte(`{"id":"order_1"}`)}, nil
					})
				m.repayments.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
				m.metrics.EXPECT().RepaymentRecorded("Razorpay", "Processing")
			},
			check: func(t *testing.T, result *Result) {
				assert.Equal(t, domain.RepaymentProcessing, result.Repayment.Status)
				assert.Equal(t, "order_1", result.Repayment.GatewayTransactionID)
				require.NotNil(t, result.Order)
				assert.Equal(t, "1500.00", result.Remaining.StringFixed(2))
			},
		},
		{
			name:  "Gateway failure marks repayment failed",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(250), Gateway: "razorpay"},
			prepareMock: func() {
				m.gateways.EXPECT().Supports("razorpay").Return(true)
				m.expectTx()
				m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
				m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
				m.repayments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created)
				m.gateways.EXPECT().CreatePayment(gomock.Any(), "razorpay", gomock.Any()).
					Return(nil, &domain.GatewayError{Gateway: "razorpay", Op: gateway.OpCreatePayment, Err: errors.New("timeout")})
				m.repayments.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, rp *domain.Repayment) error {
					assert.Equal(t, domain.RepaymentFailed, rp.Status)
					assert.Contains(t, rp.Notes, "timeout")
					return nil
				})
				m.metrics.EXPECT().RepaymentRecorded("Razorpay", "Failed")
			},
			expectedError: domain.ErrGateway,
		},
		{
			name:  "Unknown gateway",
			actor: borrower,
			input: RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(250), Gateway: "paytm"},
			prepareMock: func() {
				m.gateways.EXPECT().Supports("paytm").Return(false)
			},
			expectedError: gateway.ErrUnknownGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			result, err := service.RecordRepayment(context.Background(), tt.actor, tt.input)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			tt.check(t, result)
		})
	}
}

func TestRecordRepayment_OverpaymentMessage(t *testing.T) {
	service, m := NewMock(t)
	m.expectTx()
	m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
	m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.RequireFromString("1099.5"), nil)

	_, err := service.RecordRepayment(context.Background(), borrower, RecordRepaymentInput{LoanID: 1, Amount: decimal.NewFromInt(401)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400.50")
}

func processing(status domain.RepaymentStatus) *domain.Repayment {
	return &domain.Repayment{
		ID:                   5,
		LoanID:               1,
		AmountPaid:           decimal.NewFromInt(500),
		PaymentDate:          now,
		Status:               status,
		PaymentMethod:        domain.MethodRazorpay,
		Gateway:              "razorpay",
		GatewayTransactionID: "order_1",
	}
}

func (m *mocks) expectLocked(rp func() *domain.Repayment) {
	m.repayments.EXPECT().FindByID(gomock.Any(), 5).Return(rp(), nil)
	m.loans.EXPECT().FindByID(gomock.Any(), 1).Return(approvedLoan(), nil)
	m.expectTx()
	m.loans.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(approvedLoan(), nil)
	m.repayments.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(rp(), nil)
}

func TestVerifyPayment(t *testing.T) {
	service, m := NewMock(t)
	v := gateway.Verification{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}

	t.Run("Verified payment becomes paid", func(t *testing.T) {
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentProcessing) })
		m.gateways.EXPECT().VerifyPayment(gomock.Any(), "razorpay", v).Return(true, nil)
		m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
		m.repayments.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.metrics.EXPECT().RepaymentRecorded("Razorpay", "Paid")
		m.users.EXPECT().FindByID(gomock.Any(), 1).Return(user(), nil)
		m.notifier.EXPECT().Notify(gomock.Any(), notify.EventPaymentConfirmed, "student@example.com", gomock.Any()).Return(true)

		result, err := service.VerifyPayment(context.Background(), borrower, 5, v)
		require.NoError(t, err)
		assert.Equal(t, domain.RepaymentPaid, result.Repayment.Status)
		assert.Equal(t, "1000.00", result.Remaining.StringFixed(2))
		assert.Contains(t, result.Repayment.Notes, "pay_1")
	})

	t.Run("Bad signature marks payment failed", func(t *testing.T) {
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentProcessing) })
		m.gateways.EXPECT().VerifyPayment(gomock.Any(), "razorpay", v).Return(false, nil)
		m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.Zero, nil)
		m.repayments.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.metrics.EXPECT().RepaymentRecorded("Razorpay", "Failed")

		result, err := service.VerifyPayment(context.Background(), borrower, 5, v)
		require.NoError(t, err)
		assert.Equal(t, domain.RepaymentFailed, result.Repayment.Status)
	})

	t.Run("Gateway error marks payment failed", func(t *testing.T) {
		gwErr := &domain.GatewayError{Gateway: "razorpay", Op: gateway.OpVerifyPayment, Err: context.DeadlineExceeded}
		var saved *domain.Repayment
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentProcessing) })
		m.gateways.EXPECT().VerifyPayment(gomock.Any(), "razorpay", v).Return(false, gwErr)
		m.repayments.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, rp *domain.Repayment) error {
			saved = rp
			return nil
		})
		m.metrics.EXPECT().RepaymentRecorded("Razorpay", "Failed")

		result, err := service.VerifyPayment(context.Background(), borrower, 5, v)
		assert.ErrorIs(t, err, domain.ErrGateway)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, result)
		require.NotNil(t, saved)
		assert.Equal(t, domain.RepaymentFailed, saved.Status)
		assert.Contains(t, saved.Notes, "Gateway error")
		assert.NotNil(t, saved.ProcessedAt)
	})

	t.Run("Loan settled meanwhile", func(t *testing.T) {
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentProcessing) })
		m.gateways.EXPECT().VerifyPayment(gomock.Any(), "razorpay", v).Return(true, nil)
		m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.NewFromInt(1200), nil)
		m.repayments.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.metrics.EXPECT().RepaymentRecorded("Razorpay", "Failed")

		result, err := service.VerifyPayment(context.Background(), borrower, 5, v)
		require.NoError(t, err)
		assert.Equal(t, domain.RepaymentFailed, result.Repayment.Status)
		assert.Contains(t, result.Repayment.Notes, "300.00")
	})

	t.Run("Already paid", func(t *testing.T) {
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentPaid) })

		_, err := service.VerifyPayment(context.Background(), borrower, 5, v)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Repayment of another borrower", func(t *testing.T) {
		m.repayments.EXPECT().FindByID(gomock.Any(), 5).Return(processing(domain.RepaymentProcessing), nil)
		m.loans.EXPECT().FindByID(gomock.Any(), 1).Return(approvedLoan(), nil)

		_, err := service.VerifyPayment(context.Background(), auth.Actor{UserID: 2}, 5, v)
		assert.ErrorIs(t, err, domain.ErrRepaymentNotFound)
	})
}

func TestMarkPaid(t *testing.T) {
	service, m := NewMock(t)

	t.Run("Non-staff caller", func(t *testing.T) {
		_, err := service.MarkPaid(context.Background(), borrower, 5)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Pending repayment confirmed", func(t *testing.T) {
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentPending) })
		m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.NewFromInt(400), nil)
		m.repayments.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.metrics.EXPECT().RepaymentRecorded("Razorpay", "Paid")
		m.users.EXPECT().FindByID(gomock.Any(), 1).Return(user(), nil)
		m.notifier.EXPECT().Notify(gomock.Any(), notify.EventPaymentConfirmed, gomock.Any(), gomock.Any()).Return(true)

		result, err := service.MarkPaid(context.Background(), staff, 5)
		require.NoError(t, err)
		rp := result.Repayment
		assert.Equal(t, domain.RepaymentPaid, rp.Status)
		require.NotNil(t, rp.ProcessedBy)
		assert.Equal(t, 9, *rp.ProcessedBy)
		assert.Equal(t, now, *rp.ProcessedAt)
		assert.Equal(t, "Marked as paid by admin@example.com on 2025-03-01 12:00", rp.Notes)
		assert.Equal(t, "600.00", result.Remaining.StringFixed(2))
	})

	t.Run("Balance exceeded", func(t *testing.T) {
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentProcessing) })
		m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.NewFromInt(1100), nil)

		_, err := service.MarkPaid(context.Background(), staff, 5)
		assert.ErrorIs(t, err, domain.ErrOverpayment)
	})

	t.Run("Failed repayment cannot be paid", func(t *testing.T) {
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentFailed) })

		_, err := service.MarkPaid(context.Background(), staff, 5)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestMarkFailed(t *testing.T) {
	service, m := NewMock(t)

	m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentProcessing) })
	m.repayments.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	m.metrics.EXPECT().RepaymentRecorded("Razorpay", "Failed")

	rp, err := service.MarkFailed(context.Background(), staff, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.RepaymentFailed, rp.Status)

	m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentPaid) })
	_, err = service.MarkFailed(context.Background(), staff, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = service.MarkFailed(context.Background(), borrower, 5)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInitiatePayment(t *testing.T) {
	service, m := NewMock(t)

	t.Run("Failed repayment retried", func(t *testing.T) {
		m.gateways.EXPECT().Supports(DefaultGateway).Return(true)
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentFailed) })
		m.repayments.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		m.gateways.EXPECT().CreatePayment(gomock.Any(), DefaultGateway, gomock.Any()).
			Return(&gateway.Order{CorrelationID: "order_2"}, nil)
		m.metrics.EXPECT().RepaymentRecorded("Razorpay", "Processing")

		order, err := service.InitiatePayment(context.Background(), borrower, 5, "")
		require.NoError(t, err)
		assert.Equal(t, "order_2", order.CorrelationID)
	})

	t.Run("Paid repayment", func(t *testing.T) {
		m.gateways.EXPECT().Supports(DefaultGateway).Return(true)
		m.expectLocked(func() *domain.Repayment { return processing(domain.RepaymentPaid) })

		_, err := service.InitiatePayment(context.Background(), borrower, 5, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestListByLoan(t *testing.T) {
	service, m := NewMock(t)
	rows := []domain.Repayment{*processing(domain.RepaymentPaid)}

	m.loans.EXPECT().FindByID(gomock.Any(), 1).Return(approvedLoan(), nil)
	m.repayments.EXPECT().ListByLoan(gomock.Any(), 1).Return(rows, nil)

	result, err := service.ListByLoan(context.Background(), borrower, 1)
	require.NoError(t, err)
	assert.Equal(t, rows, result)

	m.loans.EXPECT().FindByID(gomock.Any(), 1).Return(approvedLoan(), nil)
	_, err = service.ListByLoan(context.Background(), auth.Actor{UserID: 2}, 1)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestSummary(t *testing.T) {
	service, m := NewMock(t)

	m.loans.EXPECT().FindApprovedByBorrower(gomock.Any(), 1).Return(approvedLoan(), nil)
	m.repayments.EXPECT().SumPaid(gomock.Any(), 1).Return(decimal.NewFromInt(750), nil)

	summary, err := service.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, summary.HasActiveLoan)
	assert.Equal(t, "1500.00", summary.TotalAmountDue.StringFixed(2))
	assert.Equal(t, "750.00", summary.Remaining.StringFixed(2))
	assert.Equal(t, "50", summary.Progress.String())
	assert.False(t, summary.IsOverdue)
	require.NotNil(t, summary.DaysUntilDue)
	assert.Equal(t, 101, *summary.DaysUntilDue)

	m.loans.EXPECT().FindApprovedByBorrower(gomock.Any(), 2).Return(nil, nil)
	summary, err = service.Summary(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, summary.HasActiveLoan)
}
