package entities

import (
	"time"

	"gorm.io/gorm"
)

// Message is one inbound or outbound communication unit of a
// conversation. MessageKey comes from the source system and is the
// idempotency key: storing the same key twice is a no-op.
type Message struct {
	gorm.Model
	MessageKey          string    `json:"message_key" gorm:"uniqueIndex;type:varchar(255);not null"`
	WaID                string    `json:"wa_id" gorm:"index;type:varchar(20);not null"`
	FromNumber          string    `json:"from_number" gorm:"type:varchar(20)"`
	ToNumber            string    `json:"to_number" gorm:"type:varchar(20)"`
	Direction           string    `json:"direction" gorm:"type:varchar(10);not null"`
	DirectionConfidence int       `json:"direction_confidence" gorm:"default:0"`
	Kind                string    `json:"kind" gorm:"type:varchar(20);not null"`
	Body                string    `json:"body" gorm:"type:text;not null"`
	Timestamp           time.Time `json:"timestamp"`
	Status              string    `json:"status" gorm:"type:varchar(20);not null"`

	Media MediaAttributes `json:"media" gorm:"embedded;embeddedPrefix:media_"`

	// StatusTimestamps records when each status was first observed.
	// First write wins per status name.
	StatusTimestamps map[string]time.Time `json:"status_timestamps" gorm:"serializer:json;type:text"`

	// StatusHistory is an append-only audit log of observed transitions.
	StatusHistory []StatusChange `json:"status_history" gorm:"serializer:json;type:text"`
}

// StatusChange is one observed status transition.
type StatusChange struct {
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	ObservedAt      time.Time `json:"observed_at"`
	SourcePayloadID string    `json:"source_payload_id"`
}

// MediaAttributes carries the kind-specific fields of non-text content.
// Absent fields stay zero-valued.
type MediaAttributes struct {
	URL          string  `json:"url,omitempty" gorm:"type:varchar(512)"`
	MimeType     string  `json:"mime_type,omitempty" gorm:"type:varchar(100)"`
	FileSize     int64   `json:"file_size,omitempty"`
	Filename     string  `json:"filename,omitempty" gorm:"type:varchar(255)"`
	Thumbnail    string  `json:"thumbnail,omitempty" gorm:"type:varchar(512)"`
	DurationSecs int     `json:"duration_secs,omitempty"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	LocationName string  `json:"location_name,omitempty" gorm:"type:varchar(255)"`
}

// HasMedia reports whether any media attribute is populated.
func (m MediaAttributes) HasMedia() bool {
	return m != MediaAttributes{}
}
