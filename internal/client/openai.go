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

const defaultOpenAIBase = "https://api.openai.com/v1"

// OpenAIAdapter speaks the Chat Completions protocol with bearer auth. It
// also serves OAuth-backed OpenAI-compatible kinds (Qwen CLI), resolving
// the bearer token through a TokenSource.
type OpenAIAdapter struct {
	kind   string
	creds  Credentials
	base   string
	http   *http.Client
	tokens *TokenSource
}

func NewOpenAIAdapter(kind string, creds Credentials) *OpenAIAdapter {
	base := creds.APIBase
	if base == "" {
		base = defaultOpenAIBase
	}
	a := &OpenAIAdapter{
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

func (a *OpenAIAdapter) Protocol() protocol.Protocol { return protocol.ProtocolOpenAIChat }

func (a *OpenAIAdapter) bearer(ctx context.Context) (string, error) {
	if a.tokens != nil {
		return a.tokens.Token(ctx)
	}
	return a.creds.APIKey, nil
}

func (a *OpenAIAdapter) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	token, err := a.bearer(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve access token: %w", err)
	}
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (a *OpenAIAdapter) ListModels(ctx context.Context) ([]protocol.ModelInfo, error) {
	req, err := a.newRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	body, err := doJSON(a.http, req)
	if err != nil {
		return nil, err
	}
	return adaptor.ParseOpenAIModelList(body)
}

func (a *OpenAIAdapter) GenerateContent(ctx context.Context, model string, body []byte) ([]byte, error) {
	body, _ = sjson.SetBytes(body, "stream", false)
	req, err := a.newRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	return doJSON(a.http, req)
}

func (a *OpenAIAdapter) GenerateContentStream(ctx context.Context, model string, body []byte) (<-chan StreamChunk, error) {
	body, _ = sjson.SetBytes(body, "stream", true)
	body, _ = sjson.SetBytes(body, "stream_options.include_usage", true)
	req, err := a.newRequest(ctx, http.MethodPost, "/chat/completions", body)
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

// ResponsesAdapter speaks the Responses protocol. Auth matches OpenAI:
// bearer, optionally OAuth-resolved.
type ResponsesAdapter struct {
	openai *OpenAIAdapter
}

func NewResponsesAdapter(kind string, creds Credentials) *ResponsesAdapter {
	return &ResponsesAdapter{openai: NewOpenAIAdapter(kind, creds)}
}

func (a *ResponsesAdapter) Protocol() protocol.Protocol { return protocol.ProtocolOpenAIResponses }

func (a *ResponsesAdapter) ListModels(ctx context.Context) ([]protocol.ModelInfo, error) {
	return a.openai.ListModels(ctx)
}

func (a *ResponsesAdapter) GenerateContent(ctx context.Context, model string, body []byte) ([]byte, error) {
	body, _ = sjson.SetBytes(body, "stream", false)
	req, err := a.openai.newRequest(ctx, http.MethodPost, "/responses", body)
	if err != nil {
		return nil, err
	}
	return doJSON(a.openai.http, req)
}

func (a *ResponsesAdapter) GenerateContentStream(ctx context.Context, model string, body []byte) (<-chan StreamChunk, error) {
	body, _ = sjson.SetBytes(body, "stream", true)
	req, err := a.openai.newRequest(ctx, http.MethodPost, "/responses", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := a.openai.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, drainError(resp)
	}
	return readSSE(ctx, resp.Body), nil
}
