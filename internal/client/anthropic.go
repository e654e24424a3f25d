package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

const (
	defaultAnthropicBase    = "https://api.anthropic.com/v1"
	anthropicVersionHeader  = "2023-06-01"
	kiroBetaHeader          = "claude-code-20250219,oauth-2025-04-20,interleaved-thinking-2025-05-14"
)

// AnthropicAdapter speaks the Messages protocol. Static-key kinds auth via
// x-api-key; OAuth kinds (Kiro) use a bearer token plus the Claude Code
// beta headers the backend requires.
type AnthropicAdapter struct {
	kind   string
	creds  Credentials
	base   string
	http   *http.Client
	tokens *TokenSource
}

func NewAnthropicAdapter(kind string, creds Credentials) *AnthropicAdapter {
	base := creds.APIBase
	if base == "" {
		base = defaultAnthropicBase
	}
	a := &AnthropicAdapter{
		kind:  kind,
		creds: creds,
		base:  strings.TrimRight(base, "/"),
		http:  newHTTPClient(),
	}
	if creds.CredentialsFile != "" {
		a.tokens = NewTokenSource(kind, creds.CredentialsFile)
	}
	return a
}

func (a *AnthropicAdapter) Protocol() protocol.Protocol { return protocol.ProtocolAnthropic }

func (a *AnthropicAdapter) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", anthropicVersionHeader)
	if a.tokens != nil {
		token, err := a.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("anthropic-beta", kiroBetaHeader)
	} else {
		req.Header.Set("x-api-key", a.creds.APIKey)
	}
	return req, nil
}

func (a *AnthropicAdapter) ListModels(ctx context.Context) ([]protocol.ModelInfo, error) {
	req, err := a.newRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	body, err := doJSON(a.http, req)
	if err != nil {
		return nil, err
	}
	return adaptor.ParseAnthropicModelList(body)
}

func (a *AnthropicAdapter) GenerateContent(ctx context.Context, model string, body []byte) ([]byte, error) {
	body, _ = sjson.SetBytes(body, "stream", false)
	req, err := a.newRequest(ctx, http.MethodPost, "/messages", body)
	if err != nil {
		return nil, err
	}
	return doJSON(a.http, req)
}

func (a *AnthropicAdapter) GenerateContentStream(ctx context.Context, model string, body []byte) (<-chan StreamChunk, error) {
	body, _ = sjson.SetBytes(body, "stream", true)
	req, err := a.newRequest(ctx, http.MethodPost, "/messages", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, drainError(resp)
	}
	return readSSE(ctx, resp.Body), nil
}
