package adaptor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StreamEvent is one client-bound SSE event. Event is empty for dialects
// that frame with bare "data:" lines (openai_chat, gemini) and set for
// anthropic / openai_responses.
type StreamEvent struct {
	Event string
	Data  map[string]interface{}
}

// ToolCallState accumulates the identity and raw argument fragments of one
// streaming tool call, keyed by its OpenAI delta index.
type ToolCallState struct {
	ID         string
	Name       string
	Args       strings.Builder
	BlockIndex int  // content block index in the client dialect
	Started    bool // opening frame emitted
}

// StreamState carries everything that spans chunks of a single streaming
// request. One instance per request; never shared and never global.
type StreamState struct {
	ID        string
	MsgID     string
	Model     string
	StartedAt time.Time

	SequenceNumber int

	// Accumulated assistant text, needed for output_text.done and for
	// output-token estimation when the upstream omits usage.
	FullText      strings.Builder
	ReasoningText strings.Builder

	Started         bool // response preamble emitted
	TextBlockIndex  int  // -1 until a text block opens
	ThinkBlockIndex int  // -1 until a thinking block opens
	NextBlockIndex  int

	OpenToolCalls map[int]*ToolCallState
	toolOrder     []int

	// blockToTool maps an upstream (anthropic) content block index to the
	// OpenAI tool-call index it was assigned.
	blockToTool map[int]int

	SawToolCall  bool
	FinishReason string // openai form, set once a terminal chunk was seen

	InputTokens     int
	OutputTokens    int
	CachedTokens    int
	ReasoningTokens int

	// responses-dialect bookkeeping
	OutputIndex     int
	ContentPartOpen bool
	MessageItemID   string
}

// NewStreamState allocates the per-request stream state.
func NewStreamState(model string) *StreamState {
	return &StreamState{
		ID:              "resp_" + uuid.NewString(),
		MsgID:           "msg_" + uuid.NewString(),
		Model:           model,
		StartedAt:       time.Now(),
		TextBlockIndex:  -1,
		ThinkBlockIndex: -1,
		OpenToolCalls:   make(map[int]*ToolCallState),
		blockToTool:     make(map[int]int),
	}
}

// toolCall returns the accumulator for an OpenAI tool-call index, creating
// it on first sight.
func (s *StreamState) toolCall(index int) *ToolCallState {
	if tc, ok := s.OpenToolCalls[index]; ok {
		return tc
	}
	tc := &ToolCallState{BlockIndex: -1}
	s.OpenToolCalls[index] = tc
	s.toolOrder = append(s.toolOrder, index)
	return tc
}

// ToolCallOrder returns the tool-call indices in first-seen order.
func (s *StreamState) ToolCallOrder() []int {
	return s.toolOrder
}

// nextSeq returns the next responses-dialect sequence number.
func (s *StreamState) nextSeq() int {
	s.SequenceNumber++
	return s.SequenceNumber
}
