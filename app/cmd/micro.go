package cmd

import (
	"context"
	"log"

	"github.com/wacrm/pkg/config"
	"github.com/wacrm/pkg/database"
	"github.com/wacrm/pkg/domains/contacts"
	"github.com/wacrm/pkg/domains/messages"
	"github.com/wacrm/pkg/domains/webhook"
	"github.com/wacrm/pkg/server"
	"github.com/wacrm/pkg/utils"
)

func StartApp() {
	config := config.InitConfig()
	utils.LoadEnv()
	database.InitDB(config.Database)

	// One-shot backfill from a directory of payload files before the
	// server starts accepting live webhooks.
	if config.WhatsApp.ImportDir != "" {
		db := database.DBClient()
		contact_service := contacts.NewService(contacts.NewRepo(db), config.WhatsApp.PreviewMaxLength)
		message_service := messages.NewService(messages.NewRepo(db), contact_service, config.WhatsApp)
		webhook_service := webhook.NewService(message_service, contact_service, config.WhatsApp)

		if _, err := webhook_service.ProcessDirectory(context.Background(), config.WhatsApp.ImportDir); err != nil {
			log.Printf("[error] directory import failed: %v", err)
		}
	}

	server.LaunchHttpServer(config.App, config.WhatsApp, config.Allows)
}
