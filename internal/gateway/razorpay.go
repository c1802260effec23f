package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	RazorpayName    = "razorpay"
	defaultCurrency = "INR"
	ordersPath      = "/v1/orders"
)

var ErrEmptyOrderID = errors.New("empty order id in response")

type HTTPClient interface {
	Post(url string, headers http.Header, body []byte) (statusCode int, respBody []byte, err error)
}

type Razorpay struct {
	client    HTTPClient
	baseURL   string
	keyID     string
	keySecret string
}

func NewRazorpay(client HTTPClient, baseURL, keyID, keySecret string) *Razorpay {
	return &Razorpay{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

func (r *Razorpay) Name() string {
	return RazorpayName
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreatePayment registers an order for the amount in paise.
func (r *Razorpay) CreatePayment(_ context.Context, p Payment) (*Order, error) {
	if r.keyID == "" || r.keySecret == "" {
		return nil, ErrNotConfigured
	}
	currency := p.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	body, err := json.Marshal(orderRequest{
		Amount:   p.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Currency: currency,
		Receipt:  p.Receipt,
		Notes: map[string]string{
			"payment_type": "loan_repayment",
			"loan_id":      fmt.Sprint(p.LoanID),
			"repayment_id": fmt.Sprint(p.RepaymentID),
		},
	})
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", "Basic "+r.basicAuth())

	code, respBody, err := r.client.Post(r.baseURL+ordersPath, headers, body)
	if err != nil {
		zap.L().Error("can't reach razorpay", zap.Error(err))
		return nil, err
	}
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		zap.L().Error("razorpay order rejected", zap.Int("status", code), zap.ByteString("body", respBody))
		return nil, fmt.Errorf("unexpected status %d", code)
	}

	var resp orderResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, ErrEmptyOrderID
	}
	return &Order{CorrelationID: resp.ID, Response: respBody}, nil
}

// VerifyPayment checks the HMAC-SHA256 signature over "order_id|payment_id".
func (r *Razorpay) VerifyPayment(_ context.Context, v Verification) (bool, error) {
	if r.keySecret == "" {
		return false, ErrNotConfigured
	}
	expected := r.Sign(v.OrderID, v.PaymentID)
	return hmac.Equal([]byte(expected), []byte(v.Signature)), nil
}

func (r *Razorpay) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (r *Razorpay) basicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(r.keyID + ":" + r.keySecret))
}
