package routes

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/domains/messages"
	"github.com/wacrm/pkg/dtos"
)

func MessageRoutes(r *gin.RouterGroup, s messages.Service) {
	r.GET("/:waId", listMessages(s))
	r.POST("/send", sendMessage(s))
}

func listMessages(s messages.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		pageNumber, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || pageNumber <= 0 {
			c.JSON(400, gin.H{"error": "Invalid page number"})
			return
		}

		items, totalPages, err := s.ListByWaID(c.Request.Context(), c.Param("waId"), pageNumber)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"message":     constant.MESSAGES_RETRIEVED,
			"data":        items,
			"total_pages": totalPages,
		})
	}
}

func sendMessage(s messages.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.SendMessageDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}

		response, err := s.Send(c.Request.Context(), req)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"message": constant.MESSAGE_SENT,
			"data":    response,
		})
	}
}
