package line

// Webhook event types delivered by the LINE platform.
const (
	EventTypeMessage  = "message"
	EventTypeFollow   = "follow"
	EventTypeUnfollow = "unfollow"
	EventTypePostback = "postback"
)

// Message content types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// WebhookRequest is the body of a webhook delivery.
type WebhookRequest struct {
	Destination string         `json:"destination"`
	Events      []WebhookEvent `json:"events"`
}

// WebhookEvent is a single event inside a webhook delivery.
type WebhookEvent struct {
	Type       string          `json:"type"`
	ReplyToken string          `json:"replyToken"`
	Timestamp  int64           `json:"timestamp"`
	Source     Source          `json:"source"`
	Message    *MessageContent `json:"message,omitempty"`
	Postback   *Postback       `json:"postback,omitempty"`
}

// Source identifies who sent the event.
type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
}

// MessageContent is the message part of a message event.
type MessageContent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Postback is the postback part of a postback event.
type Postback struct {
	Data string `json:"data"`
}

// Profile is a LINE user profile.
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl,omitempty"`
}

// Message is an outgoing message. Concrete types marshal to the LINE
// Messaging API message objects.
type Message any

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextMessage builds a plain text message.
func NewTextMessage(text string) Message {
	return textMessage{Type: MessageTypeText, Text: text}
}

type flexMessage struct {
	Type     string         `json:"type"`
	AltText  string         `json:"altText"`
	Contents map[string]any `json:"contents"`
}

// NewFlexMessage builds a flex message from a raw bubble/carousel container.
func NewFlexMessage(altText string, contents map[string]any) Message {
	return flexMessage{Type: "flex", AltText: altText, Contents: contents}
}
