package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	bookingsrepo "travelpartner/internal/bookings/repository"
	bookingsservice "travelpartner/internal/bookings/service"
	bookingsvalidator "travelpartner/internal/bookings/validator"
	inventoryrepo "travelpartner/internal/inventory/repository"
	"travelpartner/internal/reconcile/listener"
	"travelpartner/internal/reconcile/repository"
	"travelpartner/internal/reconcile/sweep"
	selectionrepo "travelpartner/internal/selection/repository"
	"travelpartner/pkg/config"
	"travelpartner/pkg/kafka"
	kafka_config "travelpartner/pkg/kafka/config"
	kafka_middleware "travelpartner/pkg/kafka/middleware"
	"travelpartner/pkg/payment"
	"travelpartner/pkg/sealer"
)

const JobName = "reconcile"

type options struct {
	sweep     bool
	listen    bool
	release   bool
	paidGrace time.Duration
	batchSize int
	timeout   time.Duration
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := pflag.NewFlagSet(JobName, pflag.ContinueOnError)
	fs.BoolVar(&opts.sweep, "sweep", true, "run one reconciliation sweep and exit")
	fs.BoolVar(&opts.listen, "listen", false, "consume booking events and record commit failures until stopped")
	fs.BoolVar(&opts.release, "release", false, "release orphaned seats instead of only recording them")
	fs.DurationVar(&opts.paidGrace, "paid-grace", 10*time.Minute, "how long a paid checkout may wait before its commit is retried")
	fs.IntVar(&opts.batchSize, "batch-size", 200, "checkouts handled per sweep step")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "upper bound for one sweep")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.listen && !fs.Changed("sweep") {
		opts.sweep = false
	}
	if opts.paidGrace <= 0 {
		return opts, errors.New("--paid-grace must be positive")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cases := repository.NewMongoCaseRepository(cfg)

	failed := false
	if opts.sweep {
		if err := runSweep(ctx, cfg, cases, opts); err != nil {
			cfg.Log.Error("Reconcile sweep failed", "error", err)
			failed = true
		}
	}
	if opts.listen && !failed {
		if err := runListener(ctx, cfg, cases); err != nil {
			cfg.Log.Error("Commit failure listener stopped", "error", err)
			failed = true
		}
	}

	if failed {
		cfg.GracefulShutdown()
		os.Exit(1)
	}
}

func runSweep(ctx context.Context, cfg *config.Config, cases repository.CaseRepository, opts options) error {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	events, closeEvents, err := initEvents(cfg)
	if err != nil {
		return err
	}
	defer closeEvents()

	ticketSealer, err := sealer.New(cfg.TicketSealKey)
	if err != nil {
		return err
	}

	inventoryRepo := inventoryrepo.NewMongoInventoryRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	checkoutRepo := bookingsrepo.NewMongoCheckoutRepository(cfg)
	checkouts := bookingsservice.NewCheckoutService(bookingsservice.CheckoutDeps{
		Checkouts:  checkoutRepo,
		Bookings:   bookingRepo,
		Holds:      bookingsrepo.NewRedisHoldStore(cfg.Client.Redis),
		Seats:      inventoryRepo,
		Selections: selectionrepo.NewRedisSelectionRepository(cfg.Client.Redis, cfg.SelectionTTL),
		Gateway:    payment.NewGateway(cfg.PaymentAPIURL, cfg.PaymentKeyID, cfg.PaymentKeySecret, cfg.PaymentTimeout),
		Events:     events,
		Sealer:     ticketSealer,
		Validator:  bookingsvalidator.NewCheckoutValidator(cfg.Log),
	}, cfg)

	sweeper := sweep.NewSweeper(sweep.Deps{
		Checkouts:    checkoutRepo,
		Resolver:     checkouts,
		Reservations: inventoryRepo,
		Bookings:     bookingRepo,
		Cases:        cases,
		Events:       events,
	}, sweep.Options{
		PaidGrace: opts.paidGrace,
		Release:   opts.release,
		BatchSize: opts.batchSize,
	}, cfg.Log.Component("sweep"))

	cfg.Log.Info("Starting reconcile sweep", "release", opts.release, "paid_grace", opts.paidGrace)
	_, err = sweeper.Run(ctx)
	return err
}

func runListener(ctx context.Context, cfg *config.Config, cases repository.CaseRepository) error {
	if !cfg.KafkaEnabled {
		return errors.New("--listen needs KAFKA_ENABLED=true")
	}
	kcfg, err := kafka_config.Load()
	if err != nil {
		return err
	}
	kcfg.LogConfiguration(cfg.Log)

	log := cfg.Log.Component("commit-failures")
	consumer, err := kafka.NewConsumer(kcfg, log, cfg.BookingEventsTopic, cfg.ReconcileGroupID, cfg.BookingEventsDLQTopic,
		listener.NewCommitFailures(cases, log).Handle)
	if err != nil {
		return err
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Error("Failed to close Kafka consumer", "error", err)
		}
	}()

	log.Info("Listening for commit failures", "topic", cfg.BookingEventsTopic, "group_id", cfg.ReconcileGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func initEvents(cfg *config.Config) (kafka.EventPublisher, func(), error) {
	if !cfg.KafkaEnabled {
		return kafka.NewLogPublisher(cfg.Log), func() {}, nil
	}
	kcfg, err := kafka_config.Load()
	if err != nil {
		return nil, nil, err
	}
	producer, err := kafka.NewProducer(kcfg, cfg.Log, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		return nil, nil, err
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	return kafka.NewProducerPublisher(producer, JobName), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}, nil
}
