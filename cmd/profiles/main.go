package main

import (
	"travelpartner/internal/profiles/handler"
	"travelpartner/internal/profiles/repository"
	"travelpartner/internal/profiles/service"
	"travelpartner/internal/profiles/validator"
	"travelpartner/pkg/app"
	"travelpartner/pkg/config"
)

const ServiceName = "profiles"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Profiles service")
	profileService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewProfileHandler(profileService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ProfileService {
	profileService := service.NewProfileService(
		repository.NewMongoProfileRepository(cfg),
		validator.NewProfileValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Profile service initialized", "database", cfg.MongoDatabaseName)
	return profileService
}
