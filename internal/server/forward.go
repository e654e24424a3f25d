package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/polygate-dev/polygate/internal/client"
	"github.com/polygate-dev/polygate/internal/obs"
	"github.com/polygate-dev/polygate/internal/pool"
	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/internal/protocol/token"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

const (
	maxRequestBody  = 8 << 20 // 8 MiB
	maxRetryBackoff = 30 * time.Second
)

// parseJSON decodes the request body with the size cap applied.
func parseJSON(c *gin.Context, v any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return newGatewayError(ErrBadRequest, fmt.Sprintf("failed to read request body: %v", err))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return newGatewayError(ErrBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// resolveKind decides which pool kind serves a request: the /<kind>/ path
// override wins, then the model's display prefix, then substring
// classification, then the configured default.
func (s *Server) resolveKind(c *gin.Context, model string) (kind, cleanModel string) {
	cleanModel, prefixKind := protocol.StripModelPrefix(model)

	if override := c.GetString(ctxKeyKindOverride); override != "" {
		return override, cleanModel
	}
	if prefixKind != "" {
		return prefixKind, cleanModel
	}
	if classified := protocol.ClassifyModelKind(cleanModel); classified != "" {
		return classified, cleanModel
	}
	return s.cfg.ModelProvider, cleanModel
}

// upstreamCall is one prepared attempt against a selected provider.
type upstreamCall struct {
	entry   pool.ProviderEntry
	adapter client.Adapter
	proto   protocol.Protocol
	body    []byte
}

func (s *Server) prepare(kind, model string, hubReq *protocol.ChatCompletionRequest) (*upstreamCall, error) {
	entry, err := s.pool.Select(kind, model)
	if err != nil {
		return nil, err
	}
	adapterClient, err := s.pool.Adapter(entry)
	if err != nil {
		return nil, err
	}
	proto := adapterClient.Protocol()
	body, err := adaptor.OpenAIRequestToUpstreamBody(hubReq, proto, model)
	if err != nil {
		return nil, newGatewayError(ErrProtocolMismatch, err.Error())
	}
	return &upstreamCall{entry: *entry, adapter: adapterClient, proto: proto, body: body}, nil
}

func (s *Server) backoff(ctx context.Context, attempt int) {
	delay := s.cfg.RequestBaseDelay * (1 << attempt)
	if delay > maxRetryBackoff {
		delay = maxRetryBackoff
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

// forwardUnary runs the full orchestration for a non-streaming request and
// returns the hub-form response carrying the display model name.
func (s *Server) forwardUnary(c *gin.Context, kind, model, displayModel string, hubReq *protocol.ChatCompletionRequest) (*protocol.ChatCompletionResponse, error) {
	ctx := c.Request.Context()
	requestID := uuid.New().String()
	s.systemPrompt.Apply(hubReq)
	s.metrics.RequestStarted()
	defer s.prom.SetActive(s.metrics.Snapshot().ActiveRequests)

	var lastErr error
	for attempt := 0; attempt <= s.cfg.RequestMaxRetries; attempt++ {
		call, err := s.prepare(kind, model, hubReq)
		if err != nil {
			s.metrics.RequestFailed()
			return nil, err
		}
		s.promptLog.Log(requestID, kind, model, "request", json.RawMessage(call.body))

		start := time.Now()
		respBody, err := call.adapter.GenerateContent(ctx, model, call.body)
		latency := time.Since(start)

		if err != nil {
			if ctx.Err() != nil {
				// Client went away; not a provider fault.
				s.metrics.RequestFailed()
				return nil, newGatewayError(ErrInternal, "request cancelled")
			}
			s.pool.MarkUnhealthy(kind, call.entry.UUID, err.Error())
			s.prom.ObserveError(kind, string(classify(err).Kind))
			lastErr = err
			if retryable(err) && attempt < s.cfg.RequestMaxRetries {
				logrus.Warnf("upstream call failed on %s (attempt %d), retrying: %v", call.entry.UUID, attempt, err)
				s.backoff(ctx, attempt)
				continue
			}
			s.metrics.RequestFailed()
			return nil, err
		}

		resp, err := adaptor.UpstreamResponseToOpenAI(call.proto, respBody, displayModel)
		if err != nil {
			s.metrics.RequestFailed()
			return nil, err
		}
		s.promptLog.Log(requestID, kind, model, "response", resp)

		in, out := usageOf(resp, hubReq)
		s.metrics.RequestFinished(in, out)
		s.prom.ObserveRequest(kind, model, float64(latency.Milliseconds()), in, out)
		s.recordUsage(obs.UsageRecord{
			RequestID:    requestID,
			Kind:         kind,
			ProviderUUID: call.entry.UUID,
			Model:        model,
			Endpoint:     c.FullPath(),
			InputTokens:  in,
			OutputTokens: out,
			CostUSD:      obs.EstimateCost(model, in, out),
			LatencyMS:    latency.Milliseconds(),
		})
		return resp, nil
	}
	s.metrics.RequestFailed()
	return nil, lastErr
}

// usageOf prefers upstream-reported usage, falling back to a tokenizer
// estimate when the provider omitted it.
func usageOf(resp *protocol.ChatCompletionResponse, req *protocol.ChatCompletionRequest) (int, int) {
	if resp.Usage != nil && (resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0) {
		return resp.Usage.PromptTokens, resp.Usage.CompletionTokens
	}
	in := token.EstimateInputTokens(req)
	out := 0
	for _, choice := range resp.Choices {
		out += token.Count(choice.Message.Content.AsText())
	}
	return in, out
}

// forwardStream orchestrates a streaming request. emit receives each hub
// chunk; handlers frame it into the client dialect. An error returned after
// emit has run means the stream broke mid-flight and must be surfaced
// in-stream.
func (s *Server) forwardStream(c *gin.Context, kind, model, displayModel string, hubReq *protocol.ChatCompletionRequest, emit func(*protocol.ChatCompletionChunk) error) error {
	ctx := c.Request.Context()
	requestID := uuid.New().String()
	s.systemPrompt.Apply(hubReq)
	s.metrics.RequestStarted()
	defer s.prom.SetActive(s.metrics.Snapshot().ActiveRequests)

	var call *upstreamCall
	var chunks <-chan client.StreamChunk
	var lastErr error
	var start time.Time
	for attempt := 0; attempt <= s.cfg.RequestMaxRetries; attempt++ {
		var err error
		call, err = s.prepare(kind, model, hubReq)
		if err != nil {
			s.metrics.RequestFailed()
			return err
		}
		s.promptLog.Log(requestID, kind, model, "request", json.RawMessage(call.body))

		start = time.Now()
		chunks, err = call.adapter.GenerateContentStream(ctx, model, call.body)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			s.metrics.RequestFailed()
			return newGatewayError(ErrInternal, "request cancelled")
		}
		s.pool.MarkUnhealthy(kind, call.entry.UUID, err.Error())
		s.prom.ObserveError(kind, string(classify(err).Kind))
		lastErr = err
		if retryable(err) && attempt < s.cfg.RequestMaxRetries {
			logrus.Warnf("upstream stream open failed on %s (attempt %d), retrying: %v", call.entry.UUID, attempt, err)
			s.backoff(ctx, attempt)
			continue
		}
		s.metrics.RequestFailed()
		return err
	}
	if chunks == nil {
		s.metrics.RequestFailed()
		return lastErr
	}

	state := adaptor.NewStreamState(displayModel)
	for chunk := range chunks {
		if chunk.Err != nil {
			if ctx.Err() != nil {
				s.metrics.RequestFailed()
				return nil
			}
			s.pool.MarkUnhealthy(kind, call.entry.UUID, chunk.Err.Error())
			s.metrics.RequestFailed()
			return chunk.Err
		}
		hubChunks, err := adaptor.UpstreamChunkToOpenAIChunks(call.proto, chunk.Data, state)
		if err != nil {
			logrus.Debugf("skipping undecodable upstream chunk: %v", err)
			continue
		}
		for _, hc := range hubChunks {
			if err := emit(hc); err != nil {
				// Client write failed; stop pulling from upstream.
				s.metrics.RequestFailed()
				return nil
			}
		}
	}
	if ctx.Err() != nil {
		s.metrics.RequestFailed()
		return nil
	}

	latency := time.Since(start)
	in, out := state.InputTokens, state.OutputTokens
	if in == 0 {
		in = token.EstimateInputTokens(hubReq)
	}
	if out == 0 {
		out = token.Count(state.FullText.String())
	}
	s.metrics.RequestFinished(in, out)
	s.prom.ObserveRequest(kind, model, float64(latency.Milliseconds()), in, out)
	s.promptLog.Log(requestID, kind, model, "response", state.FullText.String())
	s.recordUsage(obs.UsageRecord{
		RequestID:    requestID,
		Kind:         kind,
		ProviderUUID: call.entry.UUID,
		Model:        model,
		Endpoint:     c.FullPath(),
		Stream:       true,
		InputTokens:  in,
		OutputTokens: out,
		CostUSD:      obs.EstimateCost(model, in, out),
		LatencyMS:    latency.Milliseconds(),
	})
	return nil
}

func (s *Server) recordUsage(rec obs.UsageRecord) {
	if s.usage != nil {
		s.usage.Record(rec)
	}
}
