package main

import (
	"log"
	"os"

	"padcontrol/internal/events"
	"padcontrol/internal/handlers"
	"padcontrol/internal/handlers/business"
	"padcontrol/internal/routes"
	"padcontrol/pkg/config"
	"padcontrol/pkg/solana"
)

func main() {
	// Initialize database
	config.InitDB()

	// Schema comes from AutoMigrate; SQL migrations in migrations/ are opt-in.
	if os.Getenv("MIGRATE") == "1" {
		config.ExecuteMigrations()
	}

	custody, err := solana.NewVaultCustody()
	if err != nil {
		log.Fatal("Failed to initialize custody:", err)
	}
	registry, err := solana.NewMetaplexRegistry()
	if err != nil {
		log.Fatal("Failed to initialize registry:", err)
	}

	// Events fan out to the websocket hub and, when configured, RabbitMQ.
	hub := events.NewHub()
	sink := events.Sink(hub)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()

		publisher, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Create publisher failed:", err)
		}
		defer publisher.Close()

		sink = events.MultiSink{hub, events.NewQueueSink(publisher, events.Queue)}
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	engine := business.NewEngine(config.DB, custody, registry, sink, solana.NewEd25519Verifier())

	// Set up router
	r := routes.SetupRouter(handlers.NewHandler(engine), hub)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
