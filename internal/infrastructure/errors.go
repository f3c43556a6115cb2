package infrastructure

import (
	"errors"
	"fmt"
)

// ErrorMarker prefixes every reply that describes a failure, so clients can
// tell error text from model output even though the HTTP status is 200.
const ErrorMarker = "❌"

const malformedBody = "响应格式无效"

var (
	ErrMissingAPIKey   = errors.New("claude api key is not configured")
	ErrUpstreamTimeout = errors.New("claude request timed out")
)

// UpstreamError is a non-200 or unparseable reply from the inference API.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("claude returned %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// TransportError wraps network-level failures such as DNS or refused
// connections.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorReply renders err as chat text.
func ErrorReply(err error) string {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		return ErrorMarker + " Claude API密钥未配置，请联系管理员"
	case errors.Is(err, ErrUpstreamTimeout):
		return ErrorMarker + " 请求超时，请稍后重试"
	case errors.As(err, &upstream):
		return fmt.Sprintf("%s API调用失败：%d - %s", ErrorMarker, upstream.StatusCode, upstream.Body)
	default:
		return fmt.Sprintf("%s 请求失败：%s", ErrorMarker, err.Error())
	}
}
