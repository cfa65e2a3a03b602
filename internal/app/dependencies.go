package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
	"github.com/3FinityAI/fogandleaf-sub000/internal/health"
	"github.com/3FinityAI/fogandleaf-sub000/internal/messaging/kafka"
	"github.com/3FinityAI/fogandleaf-sub000/internal/notification/email"
	"github.com/3FinityAI/fogandleaf-sub000/internal/notification/whatsapp"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/ordernum"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/placement"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/stock"
	"github.com/3FinityAI/fogandleaf-sub000/internal/storage/memory"
	"github.com/3FinityAI/fogandleaf-sub000/internal/storage/postgres"
)

// dependencies — собранный граф сервиса: хранилище, сервисы, нотификации.
type dependencies struct {
	placement *placement.Service
	adjuster  *stock.Adjuster
	orders    domain.OrderReader
	movements domain.MovementReader

	pgStore  *postgres.Store
	producer *kafka.Producer
}

// buildDependencies подключает хранилище (postgres при заданном DSN, иначе
// память), опциональный Kafka producer и каналы уведомлений.
func buildDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*dependencies, error) {
	deps := &dependencies{}

	var (
		uow       domain.UnitOfWork
		orders    domain.OrderReader
		movements domain.MovementReader
	)

	if cfg.DatabaseDSN != "" {
		store, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		deps.pgStore = store
		uow = postgres.NewUnitOfWork(store)
		orders = postgres.NewOrderReader(store)
		movements = postgres.NewMovementReader(store)
		logger.Info("postgres storage initialized")
	} else {
		store := memory.NewStore()
		if cfg.SeedDemoData {
			seedDemoData(store)
			logger.Info("demo catalog seeded")
		}
		uow = store
		orders = store
		movements = store
		logger.Warn("FOG_DB_DSN is empty, using in-memory storage")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.producer = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	emailSender := email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppToken)

	ledger := stock.NewLedger(logger.WithField("component", "stock"))

	var opts []placement.Option
	if deps.producer != nil {
		opts = append(opts, placement.WithKafkaProducer(deps.producer))
	}
	deps.placement = placement.NewService(
		uow,
		ordernum.NewGenerator(ordernum.DefaultPrefix),
		ledger,
		emailSender,
		whatsappClient,
		logger.WithField("component", "placement"),
		opts...,
	)
	deps.adjuster = stock.NewAdjuster(uow, ledger, logger.WithField("component", "adjuster"))
	deps.orders = orders
	deps.movements = movements

	return deps, nil
}

// registerHealthChecks навешивает проверки на собранные зависимости.
func (d *dependencies) registerHealthChecks(checker *health.Checker) {
	if d.pgStore != nil {
		checker.Register("postgres", func(ctx context.Context) error {
			return d.pgStore.Ping(ctx)
		})
	}
	if d.producer != nil {
		checker.RegisterOptional("kafka", func(context.Context) error {
			return d.producer.Healthy()
		})
	}
}

// close останавливает зависимости в обратном порядке сборки. Сначала ждём
// фоновые side-effect'ы размещения, чтобы producer закрылся последним.
func (d *dependencies) close(logger *log.Entry) {
	d.placement.Close()

	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		}
	}
	if d.pgStore != nil {
		if err := d.pgStore.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
