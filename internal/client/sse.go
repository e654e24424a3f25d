package client

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// maxSSELineSize bounds a single SSE line; large base64 image payloads can
// push lines past bufio's 64 KiB default.
const maxSSELineSize = 10 * 1024 * 1024

// readSSE consumes an SSE response body and forwards each data payload on
// the returned channel. The body is closed when the stream ends or ctx is
// cancelled. "[DONE]" sentinels are swallowed; event: lines are dropped
// because every dialect repeats the type inside the JSON payload.
func readSSE(ctx context.Context, body io.ReadCloser) <-chan StreamChunk {
	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		defer body.Close()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 64*1024), maxSSELineSize)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "" || payload == "[DONE]" {
				continue
			}
			select {
			case out <- StreamChunk{Data: []byte(payload)}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			logrus.Debugf("sse scan ended with error: %v", err)
			select {
			case out <- StreamChunk{Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out
}

// drainError turns a non-2xx upstream response into a structured *Error,
// pulling the vendor's message out of the common error envelopes.
func drainError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	message := strings.TrimSpace(string(body))
	code := http.StatusText(resp.StatusCode)

	// openai/anthropic wrap as error.message; gemini as error.message with
	// a status string; some responses bodies are a bare {message}.
	if m := gjson.GetBytes(body, "error.message"); m.Exists() {
		message = m.String()
	} else if m := gjson.GetBytes(body, "message"); m.Exists() {
		message = m.String()
	}
	if c := gjson.GetBytes(body, "error.code"); c.Type == gjson.String && c.String() != "" {
		code = c.String()
	} else if c := gjson.GetBytes(body, "error.type"); c.String() != "" {
		code = c.String()
	}

	return &Error{
		Status:       resp.StatusCode,
		Code:         code,
		Message:      message,
		UpstreamBody: body,
	}
}
