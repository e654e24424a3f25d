package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

const defaultGeminiBase = "https://generativelanguage.googleapis.com/v1beta"

// GeminiAdapter speaks the generateContent protocol. The model travels in
// the URL; static keys go in x-goog-api-key, OAuth tokens in Authorization.
type GeminiAdapter struct {
	kind   string
	creds  Credentials
	base   string
	http   *http.Client
	tokens *TokenSource
}

func NewGeminiAdapter(kind string, creds Credentials) *GeminiAdapter {
	base := creds.APIBase
	if base == "" {
		base = defaultGeminiBase
	}
	a := &GeminiAdapter{
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

func (a *GeminiAdapter) Protocol() protocol.Protocol { return protocol.ProtocolGemini }

func (a *GeminiAdapter) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.tokens != nil {
		token, err := a.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("x-goog-api-key", a.creds.APIKey)
	}
	return req, nil
}

func (a *GeminiAdapter) ListModels(ctx context.Context) ([]protocol.ModelInfo, error) {
	req, err := a.newRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	body, err := doJSON(a.http, req)
	if err != nil {
		return nil, err
	}
	return adaptor.ParseGeminiModelList(body)
}

func (a *GeminiAdapter) GenerateContent(ctx context.Context, model string, body []byte) ([]byte, error) {
	req, err := a.newRequest(ctx, http.MethodPost, fmt.Sprintf("/models/%s:generateContent", model), body)
	if err != nil {
		return nil, err
	}
	return doJSON(a.http, req)
}

func (a *GeminiAdapter) GenerateContentStream(ctx context.Context, model string, body []byte) (<-chan StreamChunk, error) {
	req, err := a.newRequest(ctx, http.MethodPost, fmt.Sprintf("/models/%s:streamGenerateContent?alt=sse", model), body)
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
