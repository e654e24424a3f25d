package server

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/polygate-dev/polygate/internal/config"
)

// promptLog records request and response text for debugging, either to a
// rotated file or the console.
type promptLog struct {
	mode config.PromptLogMode
	mu   sync.Mutex
	out  io.Writer
}

func newPromptLog(mode config.PromptLogMode, baseName string) *promptLog {
	pl := &promptLog{mode: mode}
	switch mode {
	case config.PromptLogFile:
		pl.out = &lumberjack.Logger{
			Filename:   baseName + ".log",
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
	case config.PromptLogConsole:
		pl.out = os.Stdout
	}
	return pl
}

type promptLogEntry struct {
	Time      string `json:"time"`
	RequestID string `json:"requestId"`
	Kind      string `json:"kind"`
	Model     string `json:"model"`
	Direction string `json:"direction"`
	Body      any    `json:"body"`
}

// Log writes one entry. Marshals lazily so PromptLogNone costs nothing.
func (pl *promptLog) Log(requestID, kind, model, direction string, body any) {
	if pl.mode == config.PromptLogNone || pl.out == nil {
		return
	}
	entry := promptLogEntry{
		Time:      time.Now().Format(time.RFC3339),
		RequestID: requestID,
		Kind:      kind,
		Model:     model,
		Direction: direction,
		Body:      body,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	pl.mu.Lock()
	defer pl.mu.Unlock()
	fmt.Fprintln(pl.out, string(data))
}
