package server

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/Depado/ginprom"
	"github.com/wacrm/app/api/routes"
	"github.com/wacrm/pkg/config"
	"github.com/wacrm/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/wacrm/pkg/domains/contacts"
	"github.com/wacrm/pkg/domains/messages"
	"github.com/wacrm/pkg/domains/webhook"
	"github.com/wacrm/pkg/middleware"
	"github.com/wacrm/pkg/utils"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func LaunchHttpServer(appc config.App, wac config.WhatsApp, allows config.Allows) {
	log.Println("Starting HTTP Server...")
	gin.SetMode(gin.DebugMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		custom := &utils.CustomValidator{Validator: v}
		custom.ValidatorRegistery()
	}

	app := gin.New()
	app.Use(gin.LoggerWithFormatter(func(log gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] - %s \"%s %s %s %d %s\"\n",
			log.TimeStamp.Format("2006-01-02 15:04:05"),
			log.ClientIP,
			log.Method,
			log.Path,
			log.Request.Proto,
			log.StatusCode,
			log.Latency,
		)
	}))
	app.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	app.Use(gin.Recovery())
	app.Use(otelgin.Middleware(appc.Name))
	app.Use(middleware.ClaimIp())
	app.Use(cors.New(cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "Origin", "Accept"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	p := ginprom.New(
		ginprom.Engine(app),
		ginprom.Subsystem("gin"),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/swagger/*any"),
	)
	app.Use(p.Instrument())

	app.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	db := database.DBClient()
	api := app.Group("/api/v1")

	// Contact Routes
	contact_repo := contacts.NewRepo(db)
	contact_service := contacts.NewService(contact_repo, wac.PreviewMaxLength)
	routes.ContactRoutes(api.Group("/contacts"), contact_service)

	// Message Routes
	message_repo := messages.NewRepo(db)
	message_service := messages.NewService(message_repo, contact_service, wac)
	routes.MessageRoutes(api.Group("/messages"), message_service)

	// Webhook Routes
	webhook_service := webhook.NewService(message_service, contact_service, wac)
	routes.WebhookRoutes(api.Group("/webhook"), webhook_service)

	fmt.Println("Server is running on port " + appc.Port)
	if err := app.Run(net.JoinHostPort(appc.Host, appc.Port)); err != nil {
		log.Fatalf("Server başarisiz oldu: %v", err)
	}
}
