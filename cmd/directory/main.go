package main

import (
	"innkeep/internal/directory/handler"
	"innkeep/internal/directory/repository"
	"innkeep/internal/directory/service"
	"innkeep/internal/directory/validator"
	"innkeep/pkg/app"
	"innkeep/pkg/config"
)

const ServiceName = "directory"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Directory service")
	directoryService := service.NewDirectoryService(
		repository.NewMongoRoomRepository(cfg),
		repository.NewMongoPackageRepository(cfg),
		validator.NewDirectoryValidator(cfg.Log),
		cfg,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewDirectoryHandler(directoryService, cfg.Log))
	serverApp.Run()
}
