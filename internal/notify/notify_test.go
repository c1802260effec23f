package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (s *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m...)
	return nil
}

type fakeRecorder struct {
	calls map[string]int
}

func (r *fakeRecorder) NotificationSent(event string, delivered bool) {
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	key := event + ":false"
	if delivered {
		key = event + ":true"
	}
	r.calls[key]++
}

func TestRender(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := NewLoanNotice(&domain.LoanApplication{
		ID:               7,
		Amount:           50000,
		Status:           domain.LoanApproved,
		RepaymentDueDate: &due,
		CreatedAt:        created,
	}, due.AddDate(0, 0, 3))

	subject, body, err := Render(EventLoanApproved, loan)
	require.NoError(t, err)
	assert.Equal(t, "Loan Application Approved - Loan #7", subject)
	assert.Contains(t, body, "₹110000.00")
	assert.Contains(t, body, "₹9166.67")

	subject, body, err = Render(EventLoanOverdue, loan)
	require.NoError(t, err)
	assert.Equal(t, "Payment Overdue - Loan #7", subject)
	assert.Contains(t, body, "due on 2025-01-01 and is 3 day(s) overdue")

	_, _, err = Render(Event("unknown"), loan)
	assert.Error(t, err)

	_, _, err = Render(EventWelcome, loan)
	assert.Error(t, err)
}

func TestEmailNotifier_Notify(t *testing.T) {
	welcome := NewWelcomeNotice(&domain.User{FirstName: "Asha", LastName: "K", Email: "asha@example.com"})

	tests := []struct {
		name      string
		recipient string
		event     Event
		sendErr   error
		want      bool
		wantSent  int
	}{
		{name: "Delivered", recipient: "asha@example.com", event: EventWelcome, want: true, wantSent: 1},
		{name: "SMTP failure", recipient: "asha@example.com", event: EventWelcome, sendErr: errors.New("dial tcp: refused")},
		{name: "No recipient", event: EventWelcome},
		{name: "Render failure", recipient: "asha@example.com", event: EventLoanApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			sender := &fakeSender{err: tt.sendErr}
			n := NewEmailNotifier("smtp.local", 465, "u", "p", "noreply@loanportal.local", rec)
			n.SetSender(sender)

			got := n.Notify(context.Background(), tt.event, tt.recipient, welcome)

			assert.Equal(t, tt.want, got)
			assert.Len(t, sender.sent, tt.wantSent)
			if tt.want {
				assert.Equal(t, []string{"Welcome to Student Loan Portal"}, sender.sent[0].GetHeader("Subject"))
				assert.Equal(t, 1, rec.calls[string(tt.event)+":true"])
			} else {
				assert.Equal(t, 1, rec.calls[string(tt.event)+":false"])
			}
		})
	}
}

func TestLogNotifier_Notify(t *testing.T) {
	n := NewLogNotifier(nil)
	assert.True(t, n.Notify(context.Background(), EventWelcome, "a@b.c", WelcomeNotice{Name: "A", Email: "a@b.c"}))
	assert.False(t, n.Notify(context.Background(), Event("nope"), "a@b.c", nil))
}

func TestNotices(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	rp := &domain.Repayment{LoanID: 2, AmountPaid: decimal.RequireFromString("150"), PaymentDate: now}
	assert.Equal(t, PaymentNotice{LoanID: 2, Amount: "150.00", PaymentDate: "2024-03-05 14:30", RemainingAmount: "100.00"},
		NewPaymentNotice(rp, decimal.NewFromInt(100)))

	wd := &domain.Withdrawal{ID: 4, Amount: decimal.NewFromInt(250), Method: domain.WithdrawalUPI, Status: domain.WithdrawalProcessing, CreatedAt: now, ProcessedAt: &now}
	n := NewWithdrawalNotice(wd, "admin@example.com")
	assert.Equal(t, "250.00", n.Amount)
	assert.Equal(t, "2024-03-05 14:30", n.ProcessedAt)
	assert.Equal(t, "admin@example.com", n.ProcessedBy)

	pending := NewLoanNotice(&domain.LoanApplication{ID: 1, Amount: 800, Status: domain.LoanPending, CreatedAt: now}, now)
	assert.Equal(t, "800.00", pending.TotalAmountDue)
	assert.Empty(t, pending.DueDate)
}
