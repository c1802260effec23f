package notify

import (
	"context"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailNotifier struct {
	sender  Sender
	from    string
	metrics Recorder
}

func NewEmailNotifier(host string, port int, user, pass, from string, metrics Recorder) *EmailNotifier {
	return &EmailNotifier{
		sender:  gomail.NewDialer(host, port, user, pass),
		from:    from,
		metrics: metrics,
	}
}

func (n *EmailNotifier) SetSender(sender Sender) {
	n.sender = sender
}

func (n *EmailNotifier) Notify(ctx context.Context, event Event, recipient string, entity any) bool {
	if recipient == "" {
		zap.L().Error("notification without recipient", zap.String("event", string(event)))
		record(n.metrics, event, false)
		return false
	}
	subject, body, err := Render(event, entity)
	if err != nil {
		zap.L().Error("can't render notification", zap.String("event", string(event)), zap.Error(err))
		record(n.metrics, event, false)
		return false
	}
	if ctx.Err() != nil {
		record(n.metrics, event, false)
		return false
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.sender.DialAndSend(m); err != nil {
		zap.L().Error("can't send notification",
			zap.String("event", string(event)),
			zap.String("to", recipient),
			zap.Error(err),
		)
		record(n.metrics, event, false)
		return false
	}
	record(n.metrics, event, true)
	return true
}
