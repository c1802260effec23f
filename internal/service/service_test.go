package service

import (
	"testing"
	"time"

	"github.com/GlebRadaev/loanportal/internal/gateway"
	"github.com/GlebRadaev/loanportal/internal/notify"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/internal/repo"
	pkgauth "github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/metrics"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockDB.Close()

	m := metrics.New()
	services := New(repo.New(mockDB), Deps{
		TxManager: pg.NewMockTXManager(ctrl),
		Hash:      pkgauth.NewMockHashServiceInterface(ctrl),
		JWT:       pkgauth.NewMockJWTServiceInterface(ctrl),
		Notifier:  notify.NewLogNotifier(m),
		Gateways:  gateway.NewManager(m),
		Metrics:   m,
		TokenTTL:  time.Hour,
	})

	assert.NotNil(t, services.AuthService)
	assert.NotNil(t, services.LoanService)
	assert.NotNil(t, services.RepaymentService)
	assert.NotNil(t, services.WithdrawalService)
	assert.NotNil(t, services.InvestmentService)
}
