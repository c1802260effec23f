package overdue

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/notify"
)

type LoanRepo interface {
	ListOverdue(ctx context.Context, today time.Time) ([]domain.LoanApplication, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

// Result counts what a single sweep did.
type Result struct {
	Overdue  int
	Notified int
	Failed   int
}

// Sweeper sends one loan_overdue notification per approved loan past its due date.
type Sweeper struct {
	loanRepo LoanRepo
	userRepo UserRepo
	notifier notify.Notifier
	workers  int
	now      func() time.Time
}

func New(loanRepo LoanRepo, userRepo UserRepo, notifier notify.Notifier, workers int) *Sweeper {
	return &Sweeper{
		loanRepo: loanRepo,
		userRepo: userRepo,
		notifier: notifier,
		workers:  workers,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	today := s.now()
	loans, err := s.loanRepo.ListOverdue(ctx, today)
	if err != nil {
		return Result{}, fmt.Errorf("can't list overdue loans: %w", err)
	}
	zap.L().Info("Overdue sweep started", zap.Int("loans", len(loans)))

	var notified, failed atomic.Int32
	wp := NewWorkerPool(s.workers)

	g, gCtx := errgroup.WithContext(ctx)
	for i := range loans {
		loan := &loans[i]
		g.Go(func() error {
			return wp.AddTask(gCtx, func() error {
				if err := s.notify(ctx, loan, today); err != nil {
					failed.Add(1)
					return err
				}
				notified.Add(1)
				return nil
			})
		})
	}
	err = g.Wait()
	wp.Close()

	res := Result{
		Overdue:  len(loans),
		Notified: int(notified.Load()),
		Failed:   int(failed.Load()),
	}
	zap.L().Info("Overdue sweep finished",
		zap.Int("overdue", res.Overdue),
		zap.Int("notified", res.Notified),
		zap.Int("failed", res.Failed),
	)
	return res, err
}

func (s *Sweeper) notify(ctx context.Context, loan *domain.LoanApplication, today time.Time) error {
	borrower, err := s.userRepo.FindByID(ctx, loan.BorrowerID)
	if err != nil {
		return fmt.Errorf("can't load borrower of loan %d: %w", loan.ID, err)
	}
	if borrower == nil {
		return fmt.Errorf("borrower of loan %d: %w", loan.ID, domain.ErrUserNotFound)
	}
	if !s.notifier.Notify(ctx, notify.EventLoanOverdue, borrower.Email, notify.NewLoanNotice(loan, today)) {
		return fmt.Errorf("overdue notice for loan %d was not delivered", loan.ID)
	}
	return nil
}
