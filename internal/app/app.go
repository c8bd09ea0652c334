package app

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"

	"meetpay/internal/config"
	"meetpay/internal/entity"
	"meetpay/internal/pricing"
	"meetpay/internal/repository"
	"meetpay/internal/service"
	httpt "meetpay/internal/transport/http"
	"meetpay/pkg/cache"
	"meetpay/pkg/logger"
	"meetpay/pkg/metric"
	"meetpay/pkg/storage/postgres"
	"meetpay/pkg/storage/postgres/transaction"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context, cfg *config.Config, log logger.Logger, migrations fs.FS) error {
	eg, ctx := errgroup.WithContext(ctx)

	metrics := initMetrics(eg, &cfg.Metrics, log)

	db, dbErr := initDatabase(&cfg.Postgres, log)
	if dbErr != nil {
		return dbErr
	}
	defer closeDB(db)

	if err := db.Migrate(migrations, "migrations", log.With("component", "migrations")); err != nil {
		return fmt.Errorf("app.Run: %w", err)
	}

	txManager, txErr := initTransactionManager(
		db,
		log,
		metrics,
	)
	if txErr != nil {
		return txErr
	}

	receiptCache, cacheErr := initCache(&cfg.Cache, log, metrics)
	if cacheErr != nil {
		return cacheErr
	}
	defer stopCache(receiptCache)

	paymentService, svcErr := initPaymentService(
		cfg,
		db,
		txManager,
		receiptCache,
		log,
	)
	if svcErr != nil {
		return svcErr
	}

	if serverErr := initHTTPServer(ctx, eg, cfg, paymentService, log, metrics); serverErr != nil {
		return serverErr
	}

	return waitForShutdown(eg)
}

func initMetrics(
	eg *errgroup.Group,
	cfg *config.Metrics,
	log logger.Logger,
) metric.Factory {
	metrics := metric.NewFactory()

	hostPort := net.JoinHostPort(cfg.Host, cfg.Port)
	metricsServer := &http.Server{
		Addr:              hostPort,
		Handler:           metrics.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	eg.Go(func() error {
		log.Infow("starting metrics server", "port", cfg.Port)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("app.initMetrics: %w", err)
		}
		return nil
	})

	return metrics
}

func initDatabase(cfg *config.Postgres, log logger.Logger) (*postgres.Postgres, error) {
	db, err := postgres.NewPostgres(
		cfg,
		log.With("component", "database"),
		postgres.MaxPoolSize(cfg.PoolMax),
		postgres.MaxConnAttempts(cfg.ConnAttempts),
		postgres.BaseRetryDelay(cfg.BaseRetryDelay),
		postgres.MaxRetryDelay(cfg.MaxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initDatabase: %w", err)
	}
	return db, nil
}

func closeDB(db *postgres.Postgres) {
	if db != nil {
		db.Close()
	}
}

func initTransactionManager(
	db *postgres.Postgres,
	log logger.Logger,
	metrics metric.Factory,
) (transaction.Manager, error) {
	txManager, err := transaction.NewManager(
		db,
		log.With("component", "transaction manager"),
		metrics.Transaction(),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initTransactionManager: %w", err)
	}
	return txManager, nil
}

func initCache(
	cfg *config.Cache,
	log logger.Logger,
	metrics metric.Factory,
) (cache.Cache[uuid.UUID, *entity.Receipt], error) {
	receiptCache, err := cache.NewLRUCache[uuid.UUID, *entity.Receipt](
		"receipt",
		cfg.Capacity,
		log.With("component", "cache"),
		metrics.Cache(),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initCache: %w", err)
	}
	receiptCache.StartCleanup(cfg.CleanupInterval)
	return receiptCache, nil
}

func stopCache(receiptCache cache.Cache[uuid.UUID, *entity.Receipt]) {
	if receiptCache != nil {
		receiptCache.StopCleanup()
	}
}

func initPaymentService(
	cfg *config.Config,
	db *postgres.Postgres,
	txManager transaction.Manager,
	receiptCache cache.Cache[uuid.UUID, *entity.Receipt],
	log logger.Logger,
) (*service.PaymentService, error) {
	const op = "app.initPaymentService"

	feeRate, err := decimal.NewFromString(cfg.Billing.ProcessorFeeRate)
	if err != nil {
		return nil, fmt.Errorf("%s: parse processor fee rate: %w", op, err)
	}

	calculator, err := pricing.NewCalculator(pricing.ProcessorFeeRate(feeRate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paymentRefs, err := pricing.NewReferenceGenerator(pricing.PaymentReferencePrefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	payoutRefs, err := pricing.NewReferenceGenerator(pricing.PayoutReferencePrefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paymentRepo := repository.NewPaymentRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	paymentService := service.NewPaymentService(
		paymentRepo,
		payoutRepo,
		catalogRepo,
		txManager,
		calculator,
		paymentRefs,
		payoutRefs,
		log.With("component", "payment service"),
		receiptCache,
		cfg.Cache.TTL,
		cfg.Billing.Currency,
		cfg.Billing.PayoutMethod,
	)

	return paymentService, nil
}

func initHTTPServer(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.Config,
	paymentService *service.PaymentService,
	log logger.Logger,
	metrics metric.Factory,
) error {
	handler := httpt.NewPaymentHandler(
		paymentService,
		log,
		metrics.HTTP(),
		[]byte(cfg.Auth.JWTSecret),
	)

	httpServer, err := httpt.NewHTTPServer(
		handler,
		&cfg.HTTP,
		log.With("component", "http server"),
	)
	if err != nil {
		return fmt.Errorf("app.initHTTPServer: %w", err)
	}

	eg.Go(func() error {
		return httpServer.Start(ctx)
	})
	return nil
}

func waitForShutdown(eg *errgroup.Group) error {
	if err := eg.Wait(); err != nil && !isShutdownSignal(err) {
		return fmt.Errorf("app.waitForShutdown: application failed: %w", err)
	}
	return nil
}

func isShutdownSignal(err error) bool {
	return err != nil && err.Error() == "shutdown signal"
}
