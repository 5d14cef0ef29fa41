package entities

import (
	"time"

	"gorm.io/gorm"
)

// Contact is a conversation partner with rolling aggregates maintained on
// every message write. WaID is the normalized phone number of the
// non-business party.
type Contact struct {
	gorm.Model
	WaID               string     `json:"wa_id" gorm:"uniqueIndex;type:varchar(20);not null"`
	DisplayName        string     `json:"display_name" gorm:"type:varchar(255)"`
	ProfilePicture     *string    `json:"profile_picture" gorm:"type:varchar(512)"`
	LastMessagePreview string     `json:"last_message_preview" gorm:"type:text"`
	LastMessageAt      *time.Time `json:"last_message_at"`
	UnreadCount        int        `json:"unread_count" gorm:"default:0"`
	TotalMessageCount  int64      `json:"total_message_count" gorm:"default:0"`
	FirstMessageAt     *time.Time `json:"first_message_at"`
	LastActivityAt     *time.Time `json:"last_activity_at"`
	IsActive           bool       `json:"is_active" gorm:"default:true"`
	IsBlocked          bool       `json:"is_blocked" gorm:"default:false"`
}
