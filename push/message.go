package push

import (
	"time"

	"github.com/tailored-agentic-units/feasibility/observability"
	"github.com/tailored-agentic-units/feasibility/stats"
)

// Message types sent to clients.
const (
	TypeToolStart    = "tool_start"
	TypeToolComplete = "tool_complete"
	TypeToolError    = "tool_error"
	TypeStatsUpdate  = "stats_update"
	TypePong         = "pong"
	TypeError        = "error"
)

// Message is the JSON frame pushed to UI clients.
type Message struct {
	Type            string          `json:"type"`
	InvocationID    string          `json:"invocationId,omitempty"`
	ToolName        string          `json:"toolName,omitempty"`
	Section         string          `json:"section,omitempty"`
	Parameters      map[string]any  `json:"parameters,omitempty"`
	Result          any             `json:"result,omitempty"`
	Error           string          `json:"error,omitempty"`
	DurationSeconds float64         `json:"duration,omitempty"`
	Timestamp       time.Time       `json:"timestamp,omitzero"`
	Stats           *stats.Snapshot `json:"stats,omitempty"`
	Message         string          `json:"message,omitempty"`
}

type inbound struct {
	Type string `json:"type"`
}

func fromEvent(e observability.Event) (Message, bool) {
	msg := Message{
		InvocationID:    e.InvocationID,
		ToolName:        e.Tool,
		Section:         e.Section,
		Parameters:      e.Parameters,
		Timestamp:       e.Timestamp,
		DurationSeconds: e.DurationSeconds(),
	}
	switch e.Type {
	case observability.EventToolStart:
		msg.Type = TypeToolStart
	case observability.EventToolComplete:
		msg.Type = TypeToolComplete
		msg.Result = e.Result
	case observability.EventToolError:
		msg.Type = TypeToolError
		msg.Error = e.Error
	default:
		return Message{}, false
	}
	return msg, true
}
