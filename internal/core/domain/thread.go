package domain

import "strings"

// Role identifies who authored a message.
type Role string

const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"

	// RoleAssistant marks a message produced by the notes service.
	RoleAssistant Role = "assistant"
)

// MaxMessageLength is the longest message the chat endpoint accepts.
const MaxMessageLength = 4000

// DefaultThreadTitle is used when a thread is created without a title.
const DefaultThreadTitle = "New Chat"

// threadTitleLength bounds titles derived from a first message.
const threadTitleLength = 50

// SourceRef is a citation attached to an assistant message.
type SourceRef struct {
	// ID is the note identifier.
	ID string `json:"id"`

	// Title is the note title, if known.
	Title string `json:"title,omitempty"`

	// Score is the relevance score in [0, 1].
	Score float64 `json:"score"`

	// MatchedKeywords lists query terms found in the note.
	MatchedKeywords []string `json:"matched_keywords,omitempty"`

	// Content is an excerpt of the matched note.
	Content string `json:"content,omitempty"`
}

// Message is a single turn in a chat thread.
// User messages are immutable once appended. Assistant messages start
// empty and pending, accumulate streamed content, and are sealed when
// their stream ends.
type Message struct {
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	Timestamp Timestamp   `json:"timestamp"`
	Sources   []SourceRef `json:"sources,omitempty"`

	// Pending is true while the message is still receiving stream frames.
	Pending bool `json:"-"`
}

// IsPendingAssistant reports whether m may still be mutated by a stream.
func (m Message) IsPendingAssistant() bool {
	return m.Role == RoleAssistant && m.Pending
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.Sources != nil {
		out.Sources = make([]SourceRef, len(m.Sources))
		for i, s := range m.Sources {
			out.Sources[i] = s
			if s.MatchedKeywords != nil {
				out.Sources[i].MatchedKeywords = append([]string(nil), s.MatchedKeywords...)
			}
		}
	}
	return out
}

// ChatThread is an ordered conversation owned by one user.
type ChatThread struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	CreatedAt   Timestamp `json:"created"`
	LastUpdated Timestamp `json:"last_updated"`
	OwnerID     string    `json:"user_id"`
}

// Clone returns a deep copy of the thread.
func (t ChatThread) Clone() ChatThread {
	out := t
	if t.Messages != nil {
		out.Messages = make([]Message, len(t.Messages))
		for i, m := range t.Messages {
			out.Messages[i] = m.Clone()
		}
	}
	return out
}

// LastMessage returns the final message, if any.
func (t ChatThread) LastMessage() (Message, bool) {
	if len(t.Messages) == 0 {
		return Message{}, false
	}
	return t.Messages[len(t.Messages)-1], true
}

// ThreadTitleFromMessage derives a thread title from the first message.
func ThreadTitleFromMessage(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return DefaultThreadTitle
	}
	runes := []rune(text)
	if len(runes) <= threadTitleLength {
		return text
	}
	return strings.TrimSpace(string(runes[:threadTitleLength])) + "..."
}

// MessageMutation is an edit applied to a pending assistant message.
type MessageMutation struct {
	// AppendContent is appended verbatim to the message content.
	AppendContent string

	// Sources replaces the message's sources when ReplaceSources is set.
	Sources []SourceRef

	// ReplaceSources marks Sources as present.
	ReplaceSources bool
}

// Apply returns m with the mutation applied.
func (mu MessageMutation) Apply(m Message) Message {
	m.Content += mu.AppendContent
	if mu.ReplaceSources {
		m.Sources = append([]SourceRef(nil), mu.Sources...)
	}
	return m
}
