package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

// handleMessages serves POST /v1/messages.
func (s *Server) handleMessages(c *gin.Context) {
	var req protocol.MessagesRequest
	if err := parseJSON(c, &req); err != nil {
		renderError(c, protocol.ProtocolAnthropic, err)
		return
	}
	if req.Model == "" {
		renderError(c, protocol.ProtocolAnthropic, newGatewayError(ErrBadRequest, "model is required"))
		return
	}

	displayModel := req.Model
	kind, model := s.resolveKind(c, req.Model)
	req.Model = model
	hubReq := adaptor.AnthropicRequestToOpenAI(&req)

	if !req.Stream {
		resp, err := s.forwardUnary(c, kind, model, displayModel, hubReq)
		if err != nil {
			renderError(c, protocol.ProtocolAnthropic, err)
			return
		}
		c.JSON(http.StatusOK, adaptor.OpenAIResponseToAnthropic(resp, displayModel))
		return
	}

	writer := newSSEWriter(c, false)
	state := adaptor.NewStreamState(displayModel)
	err := s.forwardStream(c, kind, model, displayModel, hubReq, func(chunk *protocol.ChatCompletionChunk) error {
		for _, ev := range adaptor.OpenAIChunkToAnthropicEvents(chunk, state) {
			if err := writer.WriteEvent(ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !writer.Started() {
			renderError(c, protocol.ProtocolAnthropic, err)
			return
		}
		gw := classify(err)
		writer.WriteEvent(adaptor.AnthropicErrorEvent(anthropicErrorType(gw.Kind), gw.Message))
	}
}

// handleAnthropicModels serves GET /v1/messages-style model listing at the
// Anthropic surface.
func (s *Server) handleAnthropicModels(c *gin.Context) {
	models := s.poolModels(c)
	c.JSON(http.StatusOK, adaptor.ModelsToAnthropicList(models))
}
