package entities

import "time"

// DefaultUserID is used when a chat request carries no user_id.
const DefaultUserID = "default"

// StatusSuccess is reported for every well-formed chat request, including
// ones whose reply text describes an upstream failure.
const StatusSuccess = "success"

type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Message is a chat message arriving on a non-HTTP channel.
type Message struct {
	From     string
	Content  string
	Platform string // e.g. "telegram"
}

// ToChatRequest converts a channel message into a routable request.
func (m Message) ToChatRequest() ChatRequest {
	return ChatRequest{Message: m.Content, UserID: m.From}
}

// NewChatResponse stamps the reply with the current time.
func NewChatResponse(text string) ChatResponse {
	return ChatResponse{
		Response:  text,
		Status:    StatusSuccess,
		Timestamp: Timestamp(time.Now()),
	}
}

// Timestamp formats t as an ISO-8601 instant.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
