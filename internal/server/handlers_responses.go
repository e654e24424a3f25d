package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

// handleResponses serves POST /v1/responses.
func (s *Server) handleResponses(c *gin.Context) {
	var req protocol.ResponsesRequest
	if err := parseJSON(c, &req); err != nil {
		renderError(c, protocol.ProtocolOpenAIResponses, err)
		return
	}
	if req.Model == "" {
		renderError(c, protocol.ProtocolOpenAIResponses, newGatewayError(ErrBadRequest, "model is required"))
		return
	}

	displayModel := req.Model
	kind, model := s.resolveKind(c, req.Model)
	req.Model = model
	hubReq := adaptor.ResponsesRequestToOpenAI(&req)

	if !req.Stream {
		resp, err := s.forwardUnary(c, kind, model, displayModel, hubReq)
		if err != nil {
			renderError(c, protocol.ProtocolOpenAIResponses, err)
			return
		}
		c.JSON(http.StatusOK, adaptor.OpenAIResponseToResponses(resp, displayModel))
		return
	}

	writer := newSSEWriter(c, false)
	state := adaptor.NewStreamState(displayModel)
	err := s.forwardStream(c, kind, model, displayModel, hubReq, func(chunk *protocol.ChatCompletionChunk) error {
		for _, ev := range adaptor.OpenAIChunkToResponsesEvents(chunk, state) {
			if err := writer.WriteEvent(ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !writer.Started() {
			renderError(c, protocol.ProtocolOpenAIResponses, err)
			return
		}
		gw := classify(err)
		writer.WriteEvent(adaptor.ResponsesErrorEvent(string(gw.Kind), gw.Message))
	}
}
