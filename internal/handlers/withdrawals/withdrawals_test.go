package withdrawals

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/service/withdrawalservice"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

var (
	financier = auth.Actor{UserID: 4, Email: "fin@acme.io", UserType: "financier"}
	staff     = auth.Actor{UserID: 1, Email: "admin@portal.io", IsStaff: true}
)

func NewMock(t *testing.T) (*WithdrawalHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func newRequest(method, target, body, id string, actor auth.Actor) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	r := httptest.NewRequest(method, target, reader)
	rctx := chi.NewRouteContext()
	if id != "" {
		rctx.URLParams.Add("id", id)
	}
	ctx := context.WithValue(auth.WithActor(context.Background(), actor), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func withdrawal(status domain.WithdrawalStatus) *domain.Withdrawal {
	return &domain.Withdrawal{
		ID:          9,
		FinancierID: 2,
		Amount:      decimal.RequireFromString("250"),
		Method:      domain.WithdrawalUPI,
		Status:      status,
		UPIID:       "fin@okbank",
		CreatedAt:   time.Date(2025, 4, 2, 15, 30, 0, 0, time.UTC),
	}
}

func TestRequestWithdrawal(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name           string
		body           string
		prepareMock    func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Successful request",
			body: `{"amount":"250","withdrawal_method":"UPI","upi_id":"fin@okbank"}`,
			prepareMock: func() {
				service.EXPECT().RequestWithdrawal(gomock.Any(), financier, withdrawalservice.RequestInput{
					Amount: decimal.RequireFromString("250"), Method: domain.WithdrawalUPI, UPIID: "fin@okbank",
				}).Return(withdrawal(domain.WithdrawalPending), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"amount":"250.00"`,
		},
		{
			name: "Below minimum",
			body: `{"amount":"50"}`,
			prepareMock: func() {
				service.EXPECT().RequestWithdrawal(gomock.Any(), financier, gomock.Any()).
					Return(nil, domain.NewValidationError(domain.KindAmountOutOfRange, "amount", "Minimum withdrawal amount is 100"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Minimum withdrawal amount is 100",
		},
		{
			name: "Not a financier",
			body: `{"amount":"250"}`,
			prepareMock: func() {
				service.EXPECT().RequestWithdrawal(gomock.Any(), financier, gomock.Any()).Return(nil, domain.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "Forbidden",
		},
		{
			name:           "Invalid request body",
			body:           `[]`,
			prepareMock:    func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.RequestWithdrawal(w, newRequest(http.MethodPost, "/api/withdrawals", tt.body, "", financier))
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestListWithdrawals(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().ListWithdrawals(gomock.Any(), financier, domain.WithdrawalStatus("")).
		Return([]domain.Withdrawal{*withdrawal(domain.WithdrawalPending)}, nil)
	w := httptest.NewRecorder()
	handler.ListWithdrawals(w, newRequest(http.MethodGet, "/api/withdrawals", "", "", financier))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"withdrawal_method":"UPI"`)

	service.EXPECT().ListWithdrawals(gomock.Any(), staff, domain.WithdrawalProcessing).Return(nil, nil)
	w = httptest.NewRecorder()
	handler.ListWithdrawals(w, newRequest(http.MethodGet, "/api/withdrawals?status=Processing", "", "", staff))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestTransitions(t *testing.T) {
	handler, service := NewMock(t)

	completed := withdrawal(domain.WithdrawalCompleted)
	completed.TransactionID = "WD-1A2B3C4D"

	service.EXPECT().Approve(gomock.Any(), staff, 9).Return(withdrawal(domain.WithdrawalProcessing), nil)
	w := httptest.NewRecorder()
	handler.Approve(w, newRequest(http.MethodPost, "/api/withdrawals/9/approve", "", "9", staff))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Withdrawal #9 approved and set to processing")

	service.EXPECT().Complete(gomock.Any(), staff, 9).Return(completed, nil)
	w = httptest.NewRecorder()
	handler.Complete(w, newRequest(http.MethodPost, "/api/withdrawals/9/complete", "", "9", staff))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transaction_id":"WD-1A2B3C4D"`)

	service.EXPECT().Reject(gomock.Any(), staff, 9).Return(nil, domain.ErrInvalidTransition)
	w = httptest.NewRecorder()
	handler.Reject(w, newRequest(http.MethodPost, "/api/withdrawals/9/reject", "", "9", staff))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	handler.Reject(w, newRequest(http.MethodPost, "/api/withdrawals/x/reject", "", "x", staff))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
