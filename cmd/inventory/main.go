package main

import (
	"travelpartner/internal/inventory/handler"
	"travelpartner/internal/inventory/repository"
	"travelpartner/internal/inventory/service"
	"travelpartner/internal/inventory/validator"
	profilesrepo "travelpartner/internal/profiles/repository"
	sessionhandler "travelpartner/internal/session/handler"
	sessionrepo "travelpartner/internal/session/repository"
	sessionservice "travelpartner/internal/session/service"
	"travelpartner/pkg/app"
	"travelpartner/pkg/config"
	"travelpartner/pkg/contracts"
)

const ServiceName = "inventory"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Inventory service")
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg))
	serverApp.Run()
}

func initHandlers(cfg *config.Config) contracts.Handler {
	inventoryService := service.NewInventoryService(
		repository.NewMongoInventoryRepository(cfg),
		profilesrepo.NewMongoProfileRepository(cfg),
		validator.NewInventoryValidator(cfg.Log),
		cfg,
	)

	criteriaRepo := sessionrepo.NewRedisCriteriaRepository(cfg.Client.Redis, cfg.CriteriaTTL, cfg.Log)
	criteriaService := sessionservice.NewCriteriaService(criteriaRepo, cfg)

	cfg.Log.Info("Inventory service initialized", "database", cfg.MongoDatabaseName)
	return contracts.Handlers(
		handler.NewInventoryHandler(inventoryService, cfg.Log),
		sessionhandler.NewCriteriaHandler(criteriaService, cfg.Log),
	)
}
