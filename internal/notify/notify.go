package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"go.uber.org/zap"
)

type Event string

const (
	EventLoanApproved        Event = "loan_approved"
	EventPaymentConfirmed    Event = "payment_confirmed"
	EventWithdrawalRequested Event = "withdrawal_requested"
	EventWithdrawalProcessed Event = "withdrawal_processed"
	EventLoanOverdue         Event = "loan_overdue"
	EventWelcome             Event = "welcome"
)

// Notifier delivers a best-effort message about entity to recipient.
// It never returns an error: callers must not roll back on a failed delivery.
type Notifier interface {
	Notify(ctx context.Context, event Event, recipient string, entity any) bool
}

type Recorder interface {
	NotificationSent(event string, delivered bool)
}

type message struct {
	subject *template.Template
	body    *template.Template
}

var messages = map[Event]message{
	EventLoanApproved: newMessage(
		"Loan Application Approved - Loan #{{.ID}}",
		`Your loan application #{{.ID}} for ₹{{.Amount}} has been approved.
Total amount due: ₹{{.TotalAmountDue}}
Monthly payment: ₹{{.MonthlyPayment}}
Repayment due date: {{.DueDate}}
`),
	EventPaymentConfirmed: newMessage(
		"Payment Confirmed - ₹{{.Amount}}",
		`We received your payment of ₹{{.Amount}} for loan #{{.LoanID}} on {{.PaymentDate}}.
Remaining amount: ₹{{.RemainingAmount}}
`),
	EventWithdrawalRequested: newMessage(
		"Withdrawal Request Submitted - ₹{{.Amount}}",
		`Your withdrawal request #{{.ID}} of ₹{{.Amount}} via {{.Method}} was submitted on {{.CreatedAt}}.
`),
	EventWithdrawalProcessed: newMessage(
		"Withdrawal Processed - ₹{{.Amount}}",
		`Your withdrawal #{{.ID}} of ₹{{.Amount}} is now {{.Status}}.
Processed on {{.ProcessedAt}} by {{.ProcessedBy}}.
`),
	EventLoanOverdue: newMessage(
		"Payment Overdue - Loan #{{.ID}}",
		`Loan #{{.ID}} was due on {{.DueDate}} and is {{.DaysOverdue}} day(s) overdue.
Total amount due: ₹{{.TotalAmountDue}}
`),
	EventWelcome: newMessage(
		"Welcome to Student Loan Portal",
		`Hello {{.Name}},

your account {{.Email}} is ready.
`),
}

func newMessage(subject, body string) message {
	return message{
		subject: template.Must(template.New("subject").Parse(subject)),
		body:    template.Must(template.New("body").Parse(body)),
	}
}

// Render returns subject and plain text body for event.
func Render(event Event, entity any) (string, string, error) {
	msg, ok := messages[event]
	if !ok {
		return "", "", fmt.Errorf("unknown notification event: %s", event)
	}
	var subject, body bytes.Buffer
	if err := msg.subject.Execute(&subject, entity); err != nil {
		return "", "", err
	}
	if err := msg.body.Execute(&body, entity); err != nil {
		return "", "", err
	}
	return subject.String(), body.String(), nil
}

// LogNotifier writes notifications to the log when SMTP is not configured.
type LogNotifier struct {
	metrics Recorder
}

func NewLogNotifier(metrics Recorder) *LogNotifier {
	return &LogNotifier{metrics: metrics}
}

func (n *LogNotifier) Notify(_ context.Context, event Event, recipient string, entity any) bool {
	subject, body, err := Render(event, entity)
	if err != nil {
		zap.L().Error("can't render notification", zap.String("event", string(event)), zap.Error(err))
		record(n.metrics, event, false)
		return false
	}
	zap.L().Info("notification",
		zap.String("event", string(event)),
		zap.String("to", recipient),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	record(n.metrics, event, true)
	return true
}

func record(r Recorder, event Event, delivered bool) {
	if r != nil {
		r.NotificationSent(string(event), delivered)
	}
}
