package domain

type LoanFilter struct {
	BorrowerID *int
	Status     LoanStatus
}

type WithdrawalFilter struct {
	FinancierID *int
	Status      WithdrawalStatus
}

type InvestmentFilter struct {
	FinancierID *int
	LoanID      *int
	Status      InvestmentStatus
}
