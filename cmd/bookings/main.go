package main

import (
	"travelpartner/internal/bookings/handler"
	"travelpartner/internal/bookings/repository"
	"travelpartner/internal/bookings/service"
	"travelpartner/internal/bookings/validator"
	inventoryrepo "travelpartner/internal/inventory/repository"
	selectionhandler "travelpartner/internal/selection/handler"
	selectionrepo "travelpartner/internal/selection/repository"
	selectionservice "travelpartner/internal/selection/service"
	"travelpartner/pkg/app"
	"travelpartner/pkg/config"
	"travelpartner/pkg/contracts"
	"travelpartner/pkg/kafka"
	kafka_config "travelpartner/pkg/kafka/config"
	kafka_middleware "travelpartner/pkg/kafka/middleware"
	"travelpartner/pkg/payment"
	"travelpartner/pkg/sealer"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	events, closeEvents := initEvents(cfg)
	handlers := initHandlers(cfg, events)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers,
		app.WithPaymentWebhook(handler.WebhookPath),
		app.WithShutdownHook(closeEvents),
	)
	serverApp.Run()
}

func initEvents(cfg *config.Config) (kafka.EventPublisher, func()) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events go to the log only")
		return kafka.NewLogPublisher(cfg.Log), func() {}
	}

	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kcfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kcfg, cfg.Log, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	return kafka.NewProducerPublisher(producer, ServiceName), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}

func initHandlers(cfg *config.Config, events kafka.EventPublisher) contracts.Handler {
	ticketSealer, err := sealer.New(cfg.TicketSealKey)
	if err != nil {
		cfg.Log.Fatal("Invalid ticket seal key", "error", err)
	}

	inventoryRepo := inventoryrepo.NewMongoInventoryRepository(cfg)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	holds := repository.NewRedisHoldStore(cfg.Client.Redis)
	selections := selectionrepo.NewRedisSelectionRepository(cfg.Client.Redis, cfg.SelectionTTL)

	selectionService := selectionservice.NewSelectionService(selections, inventoryRepo, holds, cfg)
	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		Checkouts:  repository.NewMongoCheckoutRepository(cfg),
		Bookings:   bookingRepo,
		Holds:      holds,
		Seats:      inventoryRepo,
		Selections: selections,
		Gateway:    payment.NewGateway(cfg.PaymentAPIURL, cfg.PaymentKeyID, cfg.PaymentKeySecret, cfg.PaymentTimeout),
		Events:     events,
		Sealer:     ticketSealer,
		Validator:  validator.NewCheckoutValidator(cfg.Log),
	}, cfg)
	bookingService := service.NewBookingService(bookingRepo, inventoryRepo, events, ticketSealer, cfg)

	cfg.Log.Info("Booking services initialized", "database", cfg.MongoDatabaseName)
	return contracts.Handlers(
		selectionhandler.NewSelectionHandler(selectionService, cfg.Log),
		handler.NewCheckoutHandler(checkoutService, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.Log),
	)
}
