package main

import (
	"context"
	"log"

	api "altitude-backend/cmd/api"
	"altitude-backend/internal/activity/domain"
	"altitude-backend/internal/activity/parser"
	activityRepo "altitude-backend/internal/activity/repository"
	activityUsecase "altitude-backend/internal/activity/usecase"
	dashboardUsecase "altitude-backend/internal/dashboard/usecase"
	"altitude-backend/pkg/config"
	"altitude-backend/pkg/database"
	"altitude-backend/pkg/gmail"
	"altitude-backend/pkg/imap"
	"altitude-backend/pkg/mailer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&domain.ActivityRecord{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	activityRepository := activityRepo.NewActivityRepository(db)

	// Initialize the parser with the provider-specific settings
	activityParser := parser.New(cfg.CaregiverSignature, cfg.Location())

	ctx := context.Background()

	// Mail source: Gmail unless an IMAP mailbox is configured
	var mailSource domain.MailSource
	var gmailService *gmail.Service
	switch cfg.MailProvider {
	case "imap":
		mailSource = imap.NewService(cfg)
		log.Printf("Using IMAP mail source (%s)", cfg.ImapServer)
	default:
		gmailService, err = gmail.NewService(ctx, cfg)
		if err != nil {
			log.Fatal("Failed to initialize Gmail service:", err)
		}
		mailSource = gmailService
	}

	// Notifier: Gmail API send, or plain SMTP when configured
	var notifier domain.Notifier
	if cfg.NotifierProvider == "smtp" || gmailService == nil {
		notifier, err = mailer.NewSMTPNotifier(cfg)
		if err != nil {
			log.Fatal("Failed to initialize SMTP notifier:", err)
		}
	} else {
		notifier = gmailService
	}

	// Initialize use cases (dependency injection)
	summaryUc := activityUsecase.NewSummaryUsecase(mailSource, activityParser, activityRepository, notifier, cfg.RecipientEmail)
	dashboardQueries := dashboardUsecase.NewDashboardQueries(activityRepository)

	// Initialize HTTP handler
	handler := api.NewHandler(summaryUc, dashboardQueries, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
