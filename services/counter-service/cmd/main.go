package main

import (
	"context"
	"log"

	"github.com/devayla/base-counter/common/config"
	"github.com/devayla/base-counter/common/utils"
	"github.com/devayla/base-counter/services/counter-service/app"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load("../config")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting counter service in %s mode", cfg.Server.Environment)
	log.Printf("Using DynamoDB table: %s", cfg.DynamoDB.TableName)

	application, appErr := app.New(ctx, cfg)
	if appErr != nil {
		log.Fatalf("Failed to create app: %v", appErr)
	}

	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	sig := utils.WaitForGracefulShutdown(ctx)
	log.Printf("Received %v, shutting down", sig)

	if err := application.Stop(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
