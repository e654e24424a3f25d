package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

// ollamaVersion is what /api/version reports. Recent enough that Ollama
// clients do not refuse the server.
const ollamaVersion = "0.9.0"

// handleOllamaChat serves POST /api/chat. Streaming defaults to true,
// matching Ollama's own behavior.
func (s *Server) handleOllamaChat(c *gin.Context) {
	var req protocol.OllamaChatRequest
	if err := parseJSON(c, &req); err != nil {
		renderError(c, protocol.ProtocolOllama, err)
		return
	}
	if req.Model == "" {
		renderError(c, protocol.ProtocolOllama, newGatewayError(ErrBadRequest, "model is required"))
		return
	}

	displayModel := req.Model
	kind, model := s.resolveKind(c, req.Model)
	hubReq := adaptor.OllamaChatToOpenAI(&req)
	hubReq.Model = model

	if !hubReq.Stream {
		resp, err := s.forwardUnary(c, kind, model, displayModel, hubReq)
		if err != nil {
			renderError(c, protocol.ProtocolOllama, err)
			return
		}
		c.JSON(http.StatusOK, adaptor.OpenAIResponseToOllamaChat(resp, displayModel))
		return
	}

	writer := newSSEWriter(c, true)
	state := adaptor.NewStreamState(displayModel)
	err := s.forwardStream(c, kind, model, displayModel, hubReq, func(chunk *protocol.ChatCompletionChunk) error {
		if out := adaptor.OpenAIChunkToOllamaChat(chunk, state); out != nil {
			return writer.WriteJSONLine(out)
		}
		return nil
	})
	if err != nil {
		if !writer.Started() {
			renderError(c, protocol.ProtocolOllama, err)
			return
		}
		writer.WriteJSONLine(gin.H{"error": classify(err).Message, "done": true})
	}
}

// handleOllamaGenerate serves POST /api/generate.
func (s *Server) handleOllamaGenerate(c *gin.Context) {
	var req protocol.OllamaGenerateRequest
	if err := parseJSON(c, &req); err != nil {
		renderError(c, protocol.ProtocolOllama, err)
		return
	}
	if req.Model == "" {
		renderError(c, protocol.ProtocolOllama, newGatewayError(ErrBadRequest, "model is required"))
		return
	}

	displayModel := req.Model
	kind, model := s.resolveKind(c, req.Model)
	hubReq := adaptor.OllamaGenerateToOpenAI(&req)
	hubReq.Model = model

	if !hubReq.Stream {
		resp, err := s.forwardUnary(c, kind, model, displayModel, hubReq)
		if err != nil {
			renderError(c, protocol.ProtocolOllama, err)
			return
		}
		c.JSON(http.StatusOK, adaptor.OpenAIResponseToOllamaGenerate(resp, displayModel))
		return
	}

	writer := newSSEWriter(c, true)
	state := adaptor.NewStreamState(displayModel)
	err := s.forwardStream(c, kind, model, displayModel, hubReq, func(chunk *protocol.ChatCompletionChunk) error {
		if out := adaptor.OpenAIChunkToOllamaGenerate(chunk, state); out != nil {
			return writer.WriteJSONLine(out)
		}
		return nil
	})
	if err != nil {
		if !writer.Started() {
			renderError(c, protocol.ProtocolOllama, err)
			return
		}
		writer.WriteJSONLine(gin.H{"error": classify(err).Message, "done": true})
	}
}

// handleOllamaTags serves GET /api/tags.
func (s *Server) handleOllamaTags(c *gin.Context) {
	models := s.poolModels(c)
	c.JSON(http.StatusOK, adaptor.ModelsToOllamaTags(models))
}

// handleOllamaShow serves POST /api/show with a synthesized modelfile.
func (s *Server) handleOllamaShow(c *gin.Context) {
	var req protocol.OllamaShowRequest
	if err := parseJSON(c, &req); err != nil {
		renderError(c, protocol.ProtocolOllama, err)
		return
	}
	name := req.Model
	if name == "" {
		name = req.Name
	}
	if name == "" {
		renderError(c, protocol.ProtocolOllama, newGatewayError(ErrBadRequest, "model is required"))
		return
	}
	c.JSON(http.StatusOK, adaptor.SynthesizeOllamaShow(name))
}

// handleOllamaVersion serves GET /api/version.
func (s *Server) handleOllamaVersion(c *gin.Context) {
	c.JSON(http.StatusOK, protocol.OllamaVersionResponse{Version: ollamaVersion})
}
