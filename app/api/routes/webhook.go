package routes

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/domains/webhook"
	"github.com/wacrm/pkg/dtos"
)

func WebhookRoutes(r *gin.RouterGroup, s webhook.Service) {
	r.POST("", receiveWebhook(s))
}

func receiveWebhook(s webhook.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var payload dtos.WebhookPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}

		result, err := s.ProcessPayload(c.Request.Context(), &payload)
		if err != nil {
			if errors.Is(err, webhook.ErrMalformedPayload) {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"message": constant.WEBHOOK_PROCESSED,
			"data":    result,
		})
	}
}
