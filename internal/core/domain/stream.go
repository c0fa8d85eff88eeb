package domain

import "encoding/json"

// StreamDoneSentinel is the data payload that terminates a chat stream.
const StreamDoneSentinel = "[DONE]"

// StreamFrame is one decoded server-sent event from the chat endpoint.
// Each field is optional; presence flags distinguish an empty value
// from an absent one.
type StreamFrame struct {
	// Content is a text delta to append to the answer.
	Content string

	// HasContent is true when the frame carried a content field.
	HasContent bool

	// Sources replaces the answer's sources wholesale.
	Sources []SourceRef

	// HasSources is true when the frame carried a non-null sources field.
	HasSources bool

	// ThreadID is the server-side thread the answer was stored in.
	ThreadID string

	// Done is true for the [DONE] sentinel or a frame with done=true.
	Done bool
}

type streamFrameWire struct {
	Content  *string          `json:"content"`
	Sources  *json.RawMessage `json:"sources"`
	ThreadID string           `json:"thread_id"`
	Done     bool             `json:"done"`
}

// ParseStreamFrame decodes a single SSE data payload.
// The [DONE] sentinel is recognised without JSON parsing.
func ParseStreamFrame(payload string) (StreamFrame, error) {
	if payload == StreamDoneSentinel {
		return StreamFrame{Done: true}, nil
	}

	var wire streamFrameWire
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return StreamFrame{}, &FrameError{Payload: payload, Err: err}
	}

	frame := StreamFrame{ThreadID: wire.ThreadID, Done: wire.Done}
	if wire.Content != nil {
		frame.Content = *wire.Content
		frame.HasContent = true
	}
	if wire.Sources != nil && string(*wire.Sources) != "null" {
		var sources []SourceRef
		if err := json.Unmarshal(*wire.Sources, &sources); err != nil {
			return StreamFrame{}, &FrameError{Payload: payload, Err: err}
		}
		if sources == nil {
			sources = []SourceRef{}
		}
		frame.Sources = sources
		frame.HasSources = true
	}
	return frame, nil
}

// ChatPhase is the user-visible stage of a streaming answer.
type ChatPhase int

const (
	// PhaseIdle means no answer is in flight.
	PhaseIdle ChatPhase = iota

	// PhaseSearching means the request is sent and no frame has arrived.
	PhaseSearching

	// PhaseAnalyzing means sources or the first content have arrived.
	PhaseAnalyzing

	// PhaseGenerating means content is streaming.
	PhaseGenerating

	// PhaseDone means the stream completed.
	PhaseDone

	// PhaseErrored means the stream failed.
	PhaseErrored
)

// String returns the display label for the phase.
func (p ChatPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseGenerating:
		return "generating"
	case PhaseDone:
		return "done"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// CanAdvanceTo reports whether moving from p to next is a forward step.
// Errored is reachable from any in-flight phase and is absorbing.
func (p ChatPhase) CanAdvanceTo(next ChatPhase) bool {
	if p == PhaseErrored {
		return false
	}
	if next == PhaseErrored {
		return p != PhaseIdle
	}
	return next > p
}

// ChatStatus is the observable state of the chat pipeline.
type ChatStatus struct {
	Phase ChatPhase

	// Progress is the simulated progress percentage in [0, 90).
	Progress float64

	// Err is the last stream error, if any.
	Err error
}
