package dtos

// Webhook payload shapes as delivered by the WhatsApp-Business-API style
// source. The top level wraps the standard entry list in a metaData
// object and carries its own payload id.

type WebhookPayload struct {
	ID       string          `json:"id"`
	MetaData WebhookMetaData `json:"metaData"`
}

type WebhookMetaData struct {
	Entry []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string             `json:"field"`
	Value WebhookChangeValue `json:"value"`
}

type WebhookChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         WebhookMetadata  `json:"metadata"`
	Contacts         []WebhookContact `json:"contacts,omitempty"`
	Messages         []WebhookMessage `json:"messages,omitempty"`
	Statuses         []WebhookStatus  `json:"statuses,omitempty"`
}

type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WebhookContact struct {
	Profile WebhookProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

type WebhookProfile struct {
	Name string `json:"name"`
}

// WebhookMessage is one incoming message object. Exactly one of the
// kind sub-objects is populated by well-behaved producers.
type WebhookMessage struct {
	ID        string            `json:"id"`
	From      string            `json:"from"`
	To        string            `json:"to,omitempty"`
	Timestamp string            `json:"timestamp"`
	Type      string            `json:"type"`
	Text      *WebhookText      `json:"text,omitempty"`
	Image     *WebhookMedia     `json:"image,omitempty"`
	Document  *WebhookDocument  `json:"document,omitempty"`
	Audio     *WebhookMedia     `json:"audio,omitempty"`
	Video     *WebhookMedia     `json:"video,omitempty"`
	Sticker   *WebhookMedia     `json:"sticker,omitempty"`
	Location  *WebhookLocation  `json:"location,omitempty"`
	Contacts  []WebhookVCard    `json:"contacts,omitempty"`
	Context   *WebhookMsgContext `json:"context,omitempty"`
}

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookMedia struct {
	ID        string `json:"id,omitempty"`
	Link      string `json:"link,omitempty"`
	Caption   string `json:"caption,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	Sha256    string `json:"sha256,omitempty"`
	FileSize  int64  `json:"file_size,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

type WebhookDocument struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

type WebhookLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type WebhookVCard struct {
	Name   WebhookVCardName    `json:"name"`
	Phones []WebhookVCardPhone `json:"phones,omitempty"`
}

type WebhookVCardName struct {
	FormattedName string `json:"formatted_name,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
}

type WebhookVCardPhone struct {
	Phone string `json:"phone,omitempty"`
	WaID  string `json:"wa_id,omitempty"`
}

type WebhookMsgContext struct {
	From string `json:"from,omitempty"`
	ID   string `json:"id,omitempty"`
}

// WebhookStatus is one asynchronous delivery/read/failed transition for
// a previously (or never) delivered message. MessageID is an alternate
// identifier some producers fill instead of ID.
type WebhookStatus struct {
	ID          string        `json:"id"`
	MessageID   string        `json:"message_id,omitempty"`
	Status      string        `json:"status"`
	Timestamp   string        `json:"timestamp"`
	RecipientID string        `json:"recipient_id,omitempty"`
	Error       *WebhookError `json:"error,omitempty"`
}

type WebhookError struct {
	Code    int    `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}
