package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
	"unicode/utf8"
	"xiaoliu/internal/interfaces"

	"github.com/rs/zerolog/log"
)

const (
	DefaultClaudeURL   = "https://api.anthropic.com/v1/messages"
	DefaultClaudeModel = "claude-3-sonnet-20240229"
	DefaultTimeout     = 30 * time.Second

	anthropicVersion = "2023-06-01"
	maxOutputTokens  = 1000
	maxErrorBody     = 512

	personaPreamble = "你是小柳AI助手，使用Claude作为推理引擎，拥有完整工具集。请以简洁、专业的方式回答："
)

var _ interfaces.AIClient = (*ClaudeClient)(nil)

type ClaudeConfig struct {
	// APIKey is consulted on every call, so rotating the key needs no restart.
	APIKey     func() string
	Endpoint   string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ClaudeClient forwards unmatched chat messages to the Claude messages API.
type ClaudeClient struct {
	apiKey     func() string
	endpoint   string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	} `json:"content"`
}

func NewClaudeClient(cfg ClaudeConfig) *ClaudeClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultClaudeURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultClaudeModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &ClaudeClient{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
	}
}

// GeneralChat returns the model's reply, or a user-facing error line
// starting with ErrorMarker when the call could not be completed.
func (c *ClaudeClient) GeneralChat(ctx context.Context, message string) string {
	text, err := c.Complete(ctx, message)
	if err != nil {
		return ErrorReply(err)
	}
	return text
}

// Complete performs a single round trip to the messages API.
func (c *ClaudeClient) Complete(ctx context.Context, message string) (string, error) {
	var apiKey string
	if c.apiKey != nil {
		apiKey = c.apiKey()
	}
	if apiKey == "" {
		log.Warn().Msg("claude api key missing, skipping inference call")
		return "", ErrMissingAPIKey
	}

	payload, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: maxOutputTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: personaPreamble + message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Warn().Dur("elapsed", time.Since(start)).Msg("claude request timed out")
			return "", ErrUpstreamTimeout
		}
		log.Error().Err(err).Msg("claude request failed")
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readSnippet(resp.Body, maxErrorBody)
		log.Warn().
			Int("status", resp.StatusCode).
			Str("body", body).
			Str("request_id", resp.Header.Get("request-id")).
			Msg("claude returned non-200")
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}

	var out claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if isTimeout(err) {
			return "", ErrUpstreamTimeout
		}
		log.Error().Err(err).Msg("failed to decode claude response")
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: malformedBody, Err: err}
	}
	if len(out.Content) == 0 || out.Content[0].Text == nil {
		log.Error().Int("blocks", len(out.Content)).Msg("claude response has no text content")
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: malformedBody}
	}

	log.Debug().Dur("elapsed", time.Since(start)).Msg("claude reply received")
	return *out.Content[0].Text, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readSnippet reads at most n bytes of r, cutting on a rune boundary and
// appending "..." when the body was longer.
func readSnippet(r io.Reader, n int) string {
	buf, _ := io.ReadAll(io.LimitReader(r, int64(n)+1))
	if len(buf) <= n {
		return string(buf)
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(buf[cut]) {
		cut--
	}
	return string(buf[:cut]) + "..."
}
