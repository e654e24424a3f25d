package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

// geminiAction splits the /v1beta/models/{model}:{action} path parameter.
func geminiAction(c *gin.Context) (model, action string) {
	raw := c.Param("modelAction")
	raw = strings.TrimPrefix(raw, "/")
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return raw, ""
}

// handleGeminiGenerate serves POST /v1beta/models/{model}:generateContent
// and :streamGenerateContent; the action suffix decides streaming.
func (s *Server) handleGeminiGenerate(c *gin.Context) {
	displayModel, action := geminiAction(c)
	switch action {
	case "generateContent", "streamGenerateContent":
	default:
		renderError(c, protocol.ProtocolGemini, newGatewayError(ErrNotFound, "unknown action "+action))
		return
	}

	var req protocol.GenerateContentRequest
	if err := parseJSON(c, &req); err != nil {
		renderError(c, protocol.ProtocolGemini, err)
		return
	}

	kind, model := s.resolveKind(c, displayModel)
	hubReq := adaptor.GeminiRequestToOpenAI(&req, model)

	if action == "generateContent" {
		resp, err := s.forwardUnary(c, kind, model, displayModel, hubReq)
		if err != nil {
			renderError(c, protocol.ProtocolGemini, err)
			return
		}
		c.JSON(http.StatusOK, adaptor.OpenAIResponseToGemini(resp, displayModel))
		return
	}

	writer := newSSEWriter(c, false)
	state := adaptor.NewStreamState(displayModel)
	err := s.forwardStream(c, kind, model, displayModel, hubReq, func(chunk *protocol.ChatCompletionChunk) error {
		if out := adaptor.OpenAIChunkToGeminiChunk(chunk, state); out != nil {
			return writer.WriteData(out)
		}
		return nil
	})
	if err != nil {
		if !writer.Started() {
			renderError(c, protocol.ProtocolGemini, err)
			return
		}
		gw := classify(err)
		writer.WriteData(gin.H{
			"error": gin.H{"code": gw.Status, "message": gw.Message, "status": geminiErrorStatus(gw.Kind)},
		})
	}
}

// handleGeminiModels serves GET /v1beta/models.
func (s *Server) handleGeminiModels(c *gin.Context) {
	models := s.poolModels(c)
	c.JSON(http.StatusOK, adaptor.ModelsToGeminiList(models))
}
