package dtos

import "time"

type SendMessageDTO struct {
	PhoneNumber string `json:"phone_number" binding:"required,iswaid"`
	Message     string `json:"message" binding:"required"`
}

type MessageResponseDTO struct {
	MessageID string `json:"message_id"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	To        string `json:"to"`
}

type ContactDTO struct {
	WaID               string     `json:"wa_id"`
	DisplayName        string     `json:"display_name"`
	LastMessagePreview string     `json:"last_message_preview"`
	LastMessageAt      *time.Time `json:"last_message_at"`
	UnreadCount        int        `json:"unread_count"`
	TotalMessageCount  int64      `json:"total_message_count"`
	LastActivityAt     *time.Time `json:"last_activity_at"`
}

// BatchResult summarizes one payload run: what was stored, what was
// reconciled, and which items failed. It is a per-run accumulator, not
// process-wide state.
type BatchResult struct {
	PayloadID           string      `json:"payload_id"`
	MessagesStored      int         `json:"messages_stored"`
	DuplicateMessages   int         `json:"duplicate_messages"`
	StatusesApplied     int         `json:"statuses_applied"`
	PlaceholdersCreated int         `json:"placeholders_created"`
	StatusesDropped     int         `json:"statuses_dropped"`
	ContactsTouched     int         `json:"contacts_touched"`
	Errors              []ItemError `json:"errors,omitempty"`
}

// ItemError records one failed item with enough context for operator
// logging: the external id, the pipeline stage and the error text.
type ItemError struct {
	ExternalID string `json:"external_id"`
	Stage      string `json:"stage"`
	Message    string `json:"message"`
}

// ProcessedItems is the number of items the run attempted.
func (r *BatchResult) ProcessedItems() int {
	return r.MessagesStored + r.DuplicateMessages + r.StatusesApplied +
		r.PlaceholdersCreated + r.StatusesDropped + len(r.Errors)
}
