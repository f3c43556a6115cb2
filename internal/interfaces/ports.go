package interfaces

import (
	"context"
	"xiaoliu/internal/entities"
)

// AIClient answers free-form messages that matched no canned command. The
// returned text may describe a failure; it is relayed to the user as is.
type AIClient interface {
	GeneralChat(ctx context.Context, message string) string
}

// ChatRouter turns a chat request into a reply.
type ChatRouter interface {
	Route(ctx context.Context, req entities.ChatRequest) (entities.ChatResponse, error)
	Features() []entities.Feature
}

// Messenger delivers replies on a push-style channel.
type Messenger interface {
	SendMessage(to, content string) error
}
