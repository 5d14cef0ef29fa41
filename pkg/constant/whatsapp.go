package constant

// Message directions.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Message lifecycle statuses.
const (
	StatusSending   = "sending"
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
	StatusFailed    = "failed"
)

// Message content kinds.
const (
	KindText     = "text"
	KindImage    = "image"
	KindDocument = "document"
	KindAudio    = "audio"
	KindVideo    = "video"
	KindSticker  = "sticker"
	KindLocation = "location"
	KindContact  = "contact"
	KindUnknown  = "unknown"
)

// Preview bodies substituted for non-text content.
const (
	PreviewImage    = "[Image]"
	PreviewDocument = "[Document]"
	PreviewAudio    = "[Audio]"
	PreviewVideo    = "[Video]"
	PreviewSticker  = "[Sticker]"
	PreviewLocation = "[Location]"
	PreviewContact  = "[Contact]"
	PreviewUnknown  = "[Unknown Message Type]"

	// Body of a placeholder record created when a status event arrives
	// before the message it refers to.
	PlaceholderBody = "[Message content not available - status only]"
)

const (
	MESSAGE_STORED       = "Message stored successfully"
	MESSAGE_SENT         = "Message sent successfully"
	WEBHOOK_PROCESSED    = "Webhook payload processed"
	CONTACT_MARKED_READ  = "Conversation marked as read"
	CONTACTS_RETRIEVED   = "Contacts retrieved successfully"
	MESSAGES_RETRIEVED   = "Messages retrieved successfully"
	INVALID_PHONE_NUMBER = "Invalid phone number format"
	INVALID_MESSAGE_KEY  = "Message key is required"
)
