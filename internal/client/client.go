// Package client implements the upstream provider adapters. Each adapter
// speaks one wire protocol, injects the vendor's auth headers, and surfaces
// non-2xx responses as structured errors. Adapters never retry; that is the
// orchestrator's job.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/polygate-dev/polygate/internal/protocol"
)

// Credentials identifies one upstream account. Static-key kinds use APIKey
// and APIBase; OAuth kinds use CredentialsFile, with APIBase as an optional
// endpoint override.
type Credentials struct {
	APIKey          string `json:"apiKey,omitempty"`
	APIBase         string `json:"apiBase,omitempty"`
	CredentialsFile string `json:"credentialsFile,omitempty"`
	ProxyURL        string `json:"proxyUrl,omitempty"`
}

// StreamChunk is one upstream streaming payload, already stripped of SSE
// framing. Err is set on the final chunk when the stream failed mid-flight.
type StreamChunk struct {
	Data []byte
	Err  error
}

// Adapter is the per-kind upstream client.
type Adapter interface {
	Protocol() protocol.Protocol
	ListModels(ctx context.Context) ([]protocol.ModelInfo, error)
	GenerateContent(ctx context.Context, model string, body []byte) ([]byte, error)
	GenerateContentStream(ctx context.Context, model string, body []byte) (<-chan StreamChunk, error)
}

// Error is the structured adapter failure: upstream HTTP status, a short
// machine code, the vendor's message, and the raw upstream body for
// diagnostics.
type Error struct {
	Status       int
	Code         string
	Message      string
	UpstreamBody []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream status %d (%s): %s", e.Status, e.Code, e.Message)
}

// sharedTransport reuses connections across requests to the same upstream.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// newHTTPClient returns an HTTP client without an overall timeout; request
// deadlines come from the caller's context so streams can run indefinitely.
func newHTTPClient() *http.Client {
	return &http.Client{Transport: sharedTransport}
}

// doJSON executes a request expecting a JSON body, mapping non-2xx to *Error.
func doJSON(c *http.Client, req *http.Request) ([]byte, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, drainError(resp)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// New constructs the adapter for a provider kind.
func New(kind string, creds Credentials) (Adapter, error) {
	switch protocol.ProtocolOf(kind) {
	case protocol.ProtocolOpenAIChat:
		return NewOpenAIAdapter(kind, creds), nil
	case protocol.ProtocolOpenAIResponses:
		return NewResponsesAdapter(kind, creds), nil
	case protocol.ProtocolAnthropic:
		return NewAnthropicAdapter(kind, creds), nil
	case protocol.ProtocolGemini:
		return NewGeminiAdapter(kind, creds), nil
	default:
		return nil, fmt.Errorf("client: no adapter for kind %q", kind)
	}
}
