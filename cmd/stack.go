package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/mbhbank/account-service/internal/audit"
	"github.com/mbhbank/account-service/internal/command"
	"github.com/mbhbank/account-service/internal/config"
	"github.com/mbhbank/account-service/internal/query"
	"github.com/mbhbank/account-service/internal/repository"
	"github.com/mbhbank/account-service/internal/repository/memory"
	"github.com/mbhbank/account-service/shared/events"
	sharedredis "github.com/mbhbank/account-service/shared/redis"
)

type screeningStore interface {
	command.ScreeningStore
	query.ScreeningResults
}

// stack is the storage and messaging layer the services are built on.
// View caches are nil when there is no Redis.
type stack struct {
	accounts      command.AccountStore
	accountViews  command.AccountViews
	accountReader query.AccountReader
	// liveAccounts bypasses view caches; admission and balance use it.
	liveAccounts command.ActiveAccounts

	transactions       command.TransactionStore
	transactionViews   command.TransactionViews
	transactionReader  query.TransactionReader
	accountTransaction query.AccountTransactions

	screening screeningStore
	publisher command.EventPublisher

	subscriber *events.Subscriber
	health     func(ctx context.Context) error
	close      func()
}

func openStack(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stack, error) {
	if cfg.Storage == config.StorageMemory {
		return memoryStack(logger), nil
	}
	return postgresStack(ctx, cfg, logger)
}

func memoryStack(logger *slog.Logger) *stack {
	accounts := memory.NewAccountStore()
	transactions := memory.NewTransactionStore(accounts)
	consumer := audit.NewConsumer(memory.NewAuditLog(), logger)

	logger.Warn("using in-memory storage; data is lost on restart")
	return &stack{
		accounts:           accounts,
		accountReader:      accounts,
		liveAccounts:       accounts,
		transactions:       transactions,
		transactionReader:  transactions,
		accountTransaction: transactions,
		screening:          memory.NewScreeningStore(),
		publisher:          events.NewLocalPublisher(consumer.HandleEvent),
		health:             func(context.Context) error { return nil },
		close:              func() {},
	}
}

func postgresStack(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stack, error) {
	// Database connection (write store)
	db, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Redis connection (read model store + event streaming)
	rdb, err := sharedredis.NewClient(cfg.RedisAddr, "", 0)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	accountViews := repository.NewAccountReadRepository(db, rdb.Client)
	transactionViews := repository.NewTransactionReadRepository(db, rdb.Client)
	consumer := audit.NewConsumer(repository.NewAuditRepository(db), logger)

	hostname, _ := os.Hostname()
	subscriber := events.NewSubscriber(rdb.Client, events.SubscriberConfig{
		Group:    "account-service-audit",
		Consumer: "audit-" + hostname,
		Streams:  events.AllStreams,
		Handler:  consumer.HandleEvent,
		Logger:   logger,
	})

	accounts := repository.NewAccountWriteRepository(db)

	return &stack{
		accounts:           accounts,
		accountViews:       accountViews,
		accountReader:      accountViews,
		liveAccounts:       accounts,
		transactions:       repository.NewTransactionWriteRepository(db),
		transactionViews:   transactionViews,
		transactionReader:  transactionViews,
		accountTransaction: transactionViews,
		screening:          repository.NewScreeningRepository(db),
		publisher:          events.NewPublisher(rdb.Client),
		subscriber:         subscriber,
		health:             postgresHealth(db, rdb),
		close: func() {
			_ = rdb.Close()
			_ = db.Close()
		},
	}, nil
}

func postgresHealth(db *sql.DB, rdb *sharedredis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := rdb.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}
}
