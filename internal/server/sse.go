package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polygate-dev/polygate/pkg/adaptor"
)

// sseWriter frames stream payloads for one client dialect and flushes
// after every write.
type sseWriter struct {
	c       *gin.Context
	flusher http.Flusher
	started bool
	ndjson  bool
}

func newSSEWriter(c *gin.Context, ndjson bool) *sseWriter {
	flusher, _ := c.Writer.(http.Flusher)
	return &sseWriter{c: c, flusher: flusher, ndjson: ndjson}
}

func (w *sseWriter) header() {
	if w.started {
		return
	}
	w.started = true
	if w.ndjson {
		w.c.Header("Content-Type", "application/x-ndjson")
	} else {
		w.c.Header("Content-Type", "text/event-stream")
		w.c.Header("Cache-Control", "no-cache")
		w.c.Header("Connection", "keep-alive")
	}
	w.c.Status(http.StatusOK)
}

func (w *sseWriter) flush() {
	if w.flusher != nil {
		w.flusher.Flush()
	}
}

// WriteData emits a bare `data:` frame (openai_chat, gemini).
func (w *sseWriter) WriteData(v any) error {
	w.header()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	w.flush()
	return nil
}

// WriteEvent emits an `event:` + `data:` frame (anthropic, responses).
func (w *sseWriter) WriteEvent(ev adaptor.StreamEvent) error {
	w.header()
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.c.Writer, "event: %s\ndata: %s\n\n", ev.Event, data); err != nil {
		return err
	}
	w.flush()
	return nil
}

// WriteJSONLine emits one NDJSON object (ollama).
func (w *sseWriter) WriteJSONLine(v any) error {
	w.header()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.c.Writer, "%s\n", data); err != nil {
		return err
	}
	w.flush()
	return nil
}

// WriteDone emits the openai_chat terminal sentinel.
func (w *sseWriter) WriteDone() {
	w.header()
	fmt.Fprint(w.c.Writer, "data: [DONE]\n\n")
	w.flush()
}

// Started reports whether any frame has been written; once true, errors
// can only be surfaced in-stream.
func (w *sseWriter) Started() bool { return w.started }
