package main

import (
	"github.com/wacrm/app/cmd"
)

// @title WhatsApp Ingestion API
// @version 1.0
// @description Webhook ingestion service turning WhatsApp Business payloads into a message log and contact roster.

// @host  localhost:8000
// @BasePath /api/v1

func main() {
	cmd.StartApp()
}
