package gateway

import (
	"context"
	"errors"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	OpCreatePayment = "create_payment"
	OpVerifyPayment = "verify_payment"
)

var (
	ErrUnknownGateway = errors.New("unknown gateway")
	ErrNotConfigured  = errors.New("credentials not configured")
)

type Payment struct {
	RepaymentID int
	LoanID      int
	Amount      decimal.Decimal
	Currency    string
	Receipt     string
}

// Order is the provider side record a payment is correlated with.
type Order struct {
	CorrelationID string
	Response      []byte
}

type Verification struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type Gateway interface {
	Name() string
	CreatePayment(ctx context.Context, p Payment) (*Order, error)
	VerifyPayment(ctx context.Context, v Verification) (bool, error)
}

type Recorder interface {
	GatewayCall(gateway, op string, ok bool)
}

// Manager dispatches calls to the gateway registered under a name.
// Calls are synchronous and never retried.
type Manager struct {
	gateways map[string]Gateway
	metrics  Recorder
}

func NewManager(metrics Recorder, gateways ...Gateway) *Manager {
	m := &Manager{
		gateways: make(map[string]Gateway, len(gateways)),
		metrics:  metrics,
	}
	for _, g := range gateways {
		m.gateways[g.Name()] = g
	}
	return m
}

func (m *Manager) Supports(name string) bool {
	_, ok := m.gateways[name]
	return ok
}

func (m *Manager) CreatePayment(ctx context.Context, name string, p Payment) (*Order, error) {
	g, ok := m.gateways[name]
	if !ok {
		return nil, &domain.GatewayError{Gateway: name, Op: OpCreatePayment, Err: ErrUnknownGateway}
	}
	order, err := g.CreatePayment(ctx, p)
	m.record(name, OpCreatePayment, err == nil)
	if err != nil {
		return nil, wrap(name, OpCreatePayment, err)
	}
	return order, nil
}

func (m *Manager) VerifyPayment(ctx context.Context, name string, v Verification) (bool, error) {
	g, ok := m.gateways[name]
	if !ok {
		return false, &domain.GatewayError{Gateway: name, Op: OpVerifyPayment, Err: ErrUnknownGateway}
	}
	verified, err := g.VerifyPayment(ctx, v)
	m.record(name, OpVerifyPayment, err == nil && verified)
	if err != nil {
		return false, wrap(name, OpVerifyPayment, err)
	}
	return verified, nil
}

func (m *Manager) record(name, op string, ok bool) {
	if m.metrics != nil {
		m.metrics.GatewayCall(name, op, ok)
	}
}

func wrap(name, op string, err error) error {
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	return &domain.GatewayError{Gateway: name, Op: op, Err: err}
}
