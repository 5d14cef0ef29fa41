package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/domains/contacts"
	"github.com/wacrm/pkg/dtos"
)

func ContactRoutes(r *gin.RouterGroup, s contacts.Service) {
	r.GET("", listContacts(s))
	r.POST("/:waId/read", markRead(s))
}

func listContacts(s contacts.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		items, err := s.List(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}

		contactDTOs := make([]dtos.ContactDTO, 0, len(items))
		for _, contact := range items {
			contactDTOs = append(contactDTOs, dtos.ContactDTO{
				WaID:               contact.WaID,
				DisplayName:        contact.DisplayName,
				LastMessagePreview: contact.LastMessagePreview,
				LastMessageAt:      contact.LastMessageAt,
				UnreadCount:        contact.UnreadCount,
				TotalMessageCount:  contact.TotalMessageCount,
				LastActivityAt:     contact.LastActivityAt,
			})
		}

		c.JSON(200, gin.H{
			"message":  constant.CONTACTS_RETRIEVED,
			"contacts": contactDTOs,
		})
	}
}

func markRead(s contacts.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		if err := s.MarkRead(c.Request.Context(), c.Param("waId")); err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"message": constant.CONTACT_MARKED_READ,
		})
	}
}
