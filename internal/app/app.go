package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GlebRadaev/loanportal/internal/config"
	"github.com/GlebRadaev/loanportal/internal/gateway"
	"github.com/GlebRadaev/loanportal/internal/handlers"
	"github.com/GlebRadaev/loanportal/internal/notify"
	"github.com/GlebRadaev/loanportal/internal/overdue"
	"github.com/GlebRadaev/loanportal/internal/pg"
	"github.com/GlebRadaev/loanportal/internal/repo"
	"github.com/GlebRadaev/loanportal/internal/service"
	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/clients"
	"github.com/GlebRadaev/loanportal/pkg/idempotency"
	"github.com/GlebRadaev/loanportal/pkg/logger"
	"github.com/GlebRadaev/loanportal/pkg/metrics"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg     *config.Config
	api     *handlers.Handlers
	srv     *service.Services
	repo    *repo.Repositories
	metrics *metrics.Metrics
	pool    *pgxpool.Pool
	rdb     *redis.Client

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(ctx, pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}

	rdb, err := getRedis(ctx, cfg)
	if err != nil {
		zap.L().Error("redis connection failed: ", zap.Error(err))
		return fmt.Errorf("can't connect to redis: %w", err)
	}

	a.cfg = cfg
	a.pool = pool
	a.rdb = rdb
	a.metrics = metrics.New()
	a.repo = repo.New(pg.New(pool))

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	a.srv = service.New(a.repo, service.Deps{
		TxManager: pg.NewTXManager(pool),
		Hash:      auth.NewHashService(),
		JWT:       jwtService,
		Notifier:  newNotifier(cfg, a.metrics),
		Gateways:  newGateways(cfg, a.metrics),
		Metrics:   a.metrics,
		TokenTTL:  cfg.TokenTTL,
	})
	a.api = handlers.New(a.srv, jwtService, a.metrics, newIdempotencyStore(rdb, cfg))

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

// Sweep runs a single overdue notification pass and releases its connections.
func Sweep(ctx context.Context) (overdue.Result, error) {
	cfg := config.New()
	if err := logger.InitLogger(cfg); err != nil {
		return overdue.Result{}, fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		return overdue.Result{}, fmt.Errorf("can't build pgx pool: %w", err)
	}
	defer pool.Close()

	repos := repo.New(pg.New(pool))
	sweeper := overdue.New(repos.LoanRepo, repos.UserRepo, newNotifier(cfg, metrics.New()), cfg.SweepWorkers)
	return sweeper.Run(ctx)
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

// getRedis returns nil when no address is configured.
func getRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func newIdempotencyStore(rdb *redis.Client, cfg *config.Config) *idempotency.Store {
	if rdb == nil {
		zap.L().Info("redis is not configured, idempotency keys are ignored")
		return nil
	}
	return idempotency.NewStore(rdb, cfg.IdempotencyTTL)
}

func newNotifier(cfg *config.Config, m *metrics.Metrics) notify.Notifier {
	if cfg.SMTPEnabled() {
		return notify.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPSender, m)
	}
	zap.L().Info("smtp is not configured, notifications go to the log")
	return notify.NewLogNotifier(m)
}

func newGateways(cfg *config.Config, m *metrics.Metrics) *gateway.Manager {
	return gateway.NewManager(m,
		gateway.NewRazorpay(clients.NewHTTPClient(), cfg.GatewayURL, cfg.GatewayKeyID, cfg.GatewayKeySecret),
	)
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

// close releases the pools once the server has stopped taking requests.
func (a *Application) close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			zap.L().Error("can't close redis client", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	a.close()
	close(a.errCh)
	wg.Wait()

	return appErr
}
