package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"xiaoliu/internal/entities"
	"xiaoliu/internal/interfaces"
	"xiaoliu/internal/repository"

	"github.com/rs/zerolog/log"
)

// NoMatch is returned by Match when no trigger phrase occurs in a message.
const NoMatch repository.CommandTag = ""

var ErrNoAIClient = errors.New("no inference client configured")

// MessageService routes chat messages: canned replies for trigger phrases,
// the inference client for everything else.
type MessageService struct {
	commands *repository.CommandRepository
	triggers []repository.Trigger
	ai       interfaces.AIClient
}

func NewMessageService(commands *repository.CommandRepository, ai interfaces.AIClient) *MessageService {
	return &MessageService{
		commands: commands,
		triggers: commands.Triggers(),
		ai:       ai,
	}
}

// Match returns the tag of the first trigger, in table order, that occurs
// anywhere in message. Matching is case-sensitive substring containment.
func (s *MessageService) Match(message string) (repository.CommandTag, bool) {
	if message == "" {
		return NoMatch, false
	}
	for _, t := range s.triggers {
		if strings.Contains(message, t.Phrase) {
			return t.Tag, true
		}
	}
	return NoMatch, false
}

// Dispatch returns the canned reply for tag, or delegates message to the
// inference client when tag is NoMatch.
func (s *MessageService) Dispatch(ctx context.Context, tag repository.CommandTag, message string) (string, error) {
	if tag != NoMatch {
		if resp, ok := s.commands.CannedResponse(tag); ok {
			return resp, nil
		}
		log.Warn().Str("tag", string(tag)).Msg("command tag has no canned response")
		return repository.FallbackResponse, nil
	}

	if s.ai == nil {
		return "", ErrNoAIClient
	}
	return s.ai.GeneralChat(ctx, message), nil
}

// Route handles one chat request end to end. Expected upstream failures are
// already rendered into the reply text; a returned error is unexpected.
func (s *MessageService) Route(ctx context.Context, req entities.ChatRequest) (entities.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return entities.ChatResponse{}, fmt.Errorf("request abandoned: %w", err)
	}

	tag, matched := s.Match(req.Message)
	log.Debug().
		Str("user_id", req.UserID).
		Bool("matched", matched).
		Str("tag", string(tag)).
		Msg("routing chat message")

	reply, err := s.Dispatch(ctx, tag, req.Message)
	if err != nil {
		return entities.ChatResponse{}, fmt.Errorf("failed to dispatch message: %w", err)
	}
	return entities.NewChatResponse(reply), nil
}

// Features returns the canned-command catalog.
func (s *MessageService) Features() []entities.Feature {
	return s.commands.Features()
}
