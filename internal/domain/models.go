package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserType string

const (
	UserTypeStudent   UserType = "student"
	UserTypeFinancier UserType = "financier"
)

type User struct {
	ID           int             `db:"id"`
	Email        string          `db:"email"`
	PasswordHash string          `db:"password_hash"`
	FirstName    string          `db:"first_name"`
	LastName     string          `db:"last_name"`
	StudentID    string          `db:"student_id"`
	University   string          `db:"university"`
	GPA          decimal.Decimal `db:"gpa"`
	UserType     UserType        `db:"user_type"`
	IsStaff      bool            `db:"is_staff"`
	IsActive     bool            `db:"is_active"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Financier is the investor profile attached to a user of type financier.
type Financier struct {
	ID            int       `db:"id"`
	UserID        int       `db:"user_id"`
	FinancierCode string    `db:"financier_code"`
	CompanyName   string    `db:"company_name"`
	CreatedAt     time.Time `db:"created_at"`
}

type LoanStatus string

const (
	LoanPending  LoanStatus = "Pending"
	LoanApproved LoanStatus = "Approved"
	LoanRejected LoanStatus = "Rejected"
)

// LoanApplication is a single loan request. InterestRate is shown to users
// only; interest is always computed with MonthlyInterestRate.
type LoanApplication struct {
	ID               int             `db:"id"`
	BorrowerID       int             `db:"borrower_id"`
	Amount           int64           `db:"amount"`
	Reason           string          `db:"reason"`
	Status           LoanStatus      `db:"status"`
	AdminNotes       string          `db:"admin_notes"`
	RepaymentDueDate *time.Time      `db:"repayment_due_date"`
	InterestRate     decimal.Decimal `db:"interest_rate"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

type RepaymentStatus string

const (
	RepaymentPending    RepaymentStatus = "Pending"
	RepaymentPaid       RepaymentStatus = "Paid"
	RepaymentFailed     RepaymentStatus = "Failed"
	RepaymentProcessing RepaymentStatus = "Processing"
	RepaymentCancelled  RepaymentStatus = "Cancelled"
)

type PaymentMethod string

const (
	MethodManual       PaymentMethod = "Manual Entry"
	MethodUPI          PaymentMethod = "UPI"
	MethodBankTransfer PaymentMethod = "Bank Transfer"
	MethodNetBanking   PaymentMethod = "Net Banking"
	MethodCreditCard   PaymentMethod = "Credit Card"
	MethodDebitCard    PaymentMethod = "Debit Card"
	MethodWallet       PaymentMethod = "Wallet"
	MethodCash         PaymentMethod = "Cash"
	MethodCheque       PaymentMethod = "Cheque"
	MethodDD           PaymentMethod = "DD"
	MethodRazorpay     PaymentMethod = "Razorpay"
	MethodPayPal       PaymentMethod = "PayPal"
	MethodStripe       PaymentMethod = "Stripe"
)

var paymentMethods = map[PaymentMethod]struct{}{
	MethodManual: {}, MethodUPI: {}, MethodBankTransfer: {}, MethodNetBanking: {},
	MethodCreditCard: {}, MethodDebitCard: {}, MethodWallet: {}, MethodCash: {},
	MethodCheque: {}, MethodDD: {}, MethodRazorpay: {}, MethodPayPal: {}, MethodStripe: {},
}

func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethods[m]
	return ok
}

type Repayment struct {
	ID                   int             `db:"id"`
	LoanID               int             `db:"loan_id"`
	AmountPaid           decimal.Decimal `db:"amount_paid"`
	PaymentDate          time.Time       `db:"payment_date"`
	Status               RepaymentStatus `db:"status"`
	PaymentMethod        PaymentMethod   `db:"payment_method"`
	TransactionID        string          `db:"transaction_id"`
	Gateway              string          `db:"gateway"`
	GatewayTransactionID string          `db:"gateway_transaction_id"`
	GatewayResponse      []byte          `db:"gateway_response"`
	UPIID                string          `db:"upi_id"`
	BankName             string          `db:"bank_name"`
	AccountNumber        string          `db:"account_number"`
	IFSCCode             string          `db:"ifsc_code"`
	Notes                string          `db:"notes"`
	ProcessedBy          *int            `db:"processed_by"`
	ProcessedAt          *time.Time      `db:"processed_at"`
}

type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "Pending"
	WithdrawalProcessing WithdrawalStatus = "Processing"
	WithdrawalCompleted  WithdrawalStatus = "Completed"
	WithdrawalFailed     WithdrawalStatus = "Failed"
	WithdrawalCancelled  WithdrawalStatus = "Cancelled"
)

type WithdrawalMethod string

const (
	WithdrawalBankTransfer WithdrawalMethod = "Bank Transfer"
	WithdrawalUPI          WithdrawalMethod = "UPI"
	WithdrawalCheque       WithdrawalMethod = "Cheque"
	WithdrawalDD           WithdrawalMethod = "DD"
	WithdrawalWire         WithdrawalMethod = "Wire Transfer"
)

func (m WithdrawalMethod) Valid() bool {
	switch m {
	case WithdrawalBankTransfer, WithdrawalUPI, WithdrawalCheque, WithdrawalDD, WithdrawalWire:
		return true
	}
	return false
}

type Withdrawal struct {
	ID                int              `db:"id"`
	FinancierID       int              `db:"financier_id"`
	Amount            decimal.Decimal  `db:"amount"`
	Method            WithdrawalMethod `db:"method"`
	Status            WithdrawalStatus `db:"status"`
	BankName          string           `db:"bank_name"`
	AccountHolderName string           `db:"account_holder_name"`
	AccountNumber     string           `db:"account_number"`
	IFSCCode          string           `db:"ifsc_code"`
	UPIID             string           `db:"upi_id"`
	TransactionID     string           `db:"transaction_id"`
	Notes             string           `db:"notes"`
	ProcessedBy       *int             `db:"processed_by"`
	ProcessedAt       *time.Time       `db:"processed_at"`
	CreatedAt         time.Time        `db:"created_at"`
}

type InvestmentStatus string

const (
	InvestmentPending   InvestmentStatus = "Pending"
	InvestmentApproved  InvestmentStatus = "Approved"
	InvestmentActive    InvestmentStatus = "Active"
	InvestmentCompleted InvestmentStatus = "Completed"
	InvestmentCancelled InvestmentStatus = "Cancelled"
	InvestmentDefaulted InvestmentStatus = "Defaulted"
)

type InvestmentMethod string

const (
	InvestmentBankTransfer InvestmentMethod = "Bank Transfer"
	InvestmentUPI          InvestmentMethod = "UPI"
	InvestmentCheque       InvestmentMethod = "Cheque"
	InvestmentDD           InvestmentMethod = "DD"
	InvestmentWire         InvestmentMethod = "Wire Transfer"
	InvestmentOnline       InvestmentMethod = "Online Payment"
)

func (m InvestmentMethod) Valid() bool {
	switch m {
	case InvestmentBankTransfer, InvestmentUPI, InvestmentCheque, InvestmentDD, InvestmentWire, InvestmentOnline:
		return true
	}
	return false
}

type Investment struct {
	ID                 int              `db:"id"`
	FinancierID        int              `db:"financier_id"`
	LoanID             int              `db:"loan_id"`
	InvestmentAmount   decimal.Decimal  `db:"investment_amount"`
	ExpectedReturnRate decimal.Decimal  `db:"expected_return_rate"`
	Method             InvestmentMethod `db:"method"`
	Status             InvestmentStatus `db:"status"`
	InvestmentDate     time.Time        `db:"investment_date"`
	MaturityDate       *time.Time       `db:"maturity_date"`
	TransactionID      string           `db:"transaction_id"`
	Notes              string           `db:"notes"`
	ProcessedBy        *int             `db:"processed_by"`
	ProcessedAt        *time.Time       `db:"processed_at"`
}

// LoanStatistics aggregates loan counts and totals, optionally for one borrower.
type LoanStatistics struct {
	Total          int
	Pending        int
	Approved       int
	Rejected       int
	Overdue        int
	ApprovedAmount int64
	PendingAmount  int64
}
