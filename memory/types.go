package memory

import (
	"time"
	"unicode/utf8"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// MessageType identifies the kind of message content.
type MessageType string

const (
	TypeText       MessageType = "text"
	TypeToolCall   MessageType = "tool-call"
	TypeToolResult MessageType = "tool-result"
)

// Valid reports whether the type is one of the known values.
func (t MessageType) Valid() bool {
	switch t {
	case TypeText, TypeToolCall, TypeToolResult:
		return true
	}
	return false
}

// Thread is a single conversation: an ordered message sequence plus metadata.
type Thread struct {
	ID         string         `json:"id"`
	ResourceID string         `json:"resourceId,omitempty"`
	Title      string         `json:"title,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Message is one turn in a thread. Messages are immutable once created;
// processors may annotate copies but annotations are derived view data and
// are not persisted.
type Message struct {
	ID        string         `json:"id"`
	ThreadID  string         `json:"threadId"`
	Role      Role           `json:"role"`
	Type      MessageType    `json:"type"`
	Content   string         `json:"content"`
	Name      string         `json:"name,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Embedding []float32      `json:"embedding,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Clone returns a deep-enough copy for processors to annotate without
// touching the original.
func (m Message) Clone() Message {
	out := m
	if m.Metadata != nil {
		out.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// WorkingMemory is the per-thread persistent scratchpad, independent of the
// message list. Updates overwrite the blob wholesale.
type WorkingMemory struct {
	ThreadID    string    `json:"threadId"`
	Data        string    `json:"data"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// contentPreviewLen bounds how much message content is copied into vector
// index metadata.
const contentPreviewLen = 120

// vectorMetadata builds the vector-index projection of a message.
func vectorMetadata(msg *Message) map[string]any {
	preview := msg.Content
	if len(preview) > contentPreviewLen {
		cut := contentPreviewLen
		// Back off to a rune boundary so the preview stays valid UTF-8
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	return map[string]any{
		"threadId":       msg.ThreadID,
		"role":           string(msg.Role),
		"type":           string(msg.Type),
		"contentPreview": preview,
		"createdAt":      msg.CreatedAt.Format(time.RFC3339Nano),
	}
}
