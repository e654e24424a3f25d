package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

// handleChatCompletions serves POST /v1/chat/completions.
func (s *Server) handleChatCompletions(c *gin.Context) {
	var req protocol.ChatCompletionRequest
	if err := parseJSON(c, &req); err != nil {
		renderError(c, protocol.ProtocolOpenAIChat, err)
		return
	}
	if req.Model == "" {
		renderError(c, protocol.ProtocolOpenAIChat, newGatewayError(ErrBadRequest, "model is required"))
		return
	}

	displayModel := req.Model
	kind, model := s.resolveKind(c, req.Model)
	req.Model = model

	if !req.Stream {
		resp, err := s.forwardUnary(c, kind, model, displayModel, &req)
		if err != nil {
			renderError(c, protocol.ProtocolOpenAIChat, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	writer := newSSEWriter(c, false)
	err := s.forwardStream(c, kind, model, displayModel, &req, func(chunk *protocol.ChatCompletionChunk) error {
		return writer.WriteData(chunk)
	})
	if err != nil {
		if !writer.Started() {
			renderError(c, protocol.ProtocolOpenAIChat, err)
			return
		}
		gw := classify(err)
		writer.WriteData(gin.H{
			"error": gin.H{"message": gw.Message, "type": openaiErrorType(gw.Kind)},
		})
	}
	writer.WriteDone()
}

// handleOpenAIModels serves GET /v1/models: the pool's combined, labeled
// model list.
func (s *Server) handleOpenAIModels(c *gin.Context) {
	// Anthropic clients hit the same path; their version header tells
	// them apart.
	if c.GetHeader("anthropic-version") != "" {
		s.handleAnthropicModels(c)
		return
	}
	models := s.poolModels(c)
	c.JSON(http.StatusOK, adaptor.ModelsToOpenAIList(models))
}

// poolModels lists models for the overridden kind if one is set, otherwise
// across every kind in the pool.
func (s *Server) poolModels(c *gin.Context) []adaptor.LabeledModel {
	if kind := c.GetString(ctxKeyKindOverride); kind != "" {
		return s.models.ListKind(c.Request.Context(), kind)
	}
	return s.models.List(c.Request.Context())
}
