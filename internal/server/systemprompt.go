package server

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/polygate-dev/polygate/internal/config"
	"github.com/polygate-dev/polygate/internal/protocol"
)

// systemPrompt injects the operator's system prompt file into outbound
// requests. The file is re-read at most once per TTL so edits land without
// a restart.
type systemPrompt struct {
	path string
	mode config.SystemPromptMode

	mu       sync.Mutex
	text     string
	loadedAt time.Time
}

const systemPromptTTL = 30 * time.Second

func newSystemPrompt(path string, mode config.SystemPromptMode) *systemPrompt {
	return &systemPrompt{path: path, mode: mode}
}

func (sp *systemPrompt) load() string {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if time.Since(sp.loadedAt) < systemPromptTTL {
		return sp.text
	}
	sp.loadedAt = time.Now()
	data, err := os.ReadFile(sp.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.Warnf("system prompt file read failed: %v", err)
		}
		sp.text = ""
		return ""
	}
	sp.text = strings.TrimSpace(string(data))
	return sp.text
}

// Apply rewrites the hub request's system message per the configured mode.
func (sp *systemPrompt) Apply(req *protocol.ChatCompletionRequest) {
	if sp == nil || sp.mode == config.SystemPromptOff || sp.path == "" {
		return
	}
	prompt := sp.load()
	if prompt == "" {
		return
	}

	sysIdx := -1
	for i, msg := range req.Messages {
		if msg.Role == "system" {
			sysIdx = i
			break
		}
	}

	switch sp.mode {
	case config.SystemPromptOverride:
		if sysIdx >= 0 {
			req.Messages[sysIdx].Content = protocol.TextContent(prompt)
		} else {
			req.Messages = append([]protocol.ChatMessage{{Role: "system", Content: protocol.TextContent(prompt)}}, req.Messages...)
		}
	case config.SystemPromptAppend:
		if sysIdx >= 0 {
			existing := req.Messages[sysIdx].Content.AsText()
			req.Messages[sysIdx].Content = protocol.TextContent(strings.TrimSpace(existing + "\n\n" + prompt))
		} else {
			req.Messages = append([]protocol.ChatMessage{{Role: "system", Content: protocol.TextContent(prompt)}}, req.Messages...)
		}
	}
}
