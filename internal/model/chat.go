package model

// MessageRole identifies who authored a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Integration names a synthesis backend for chat responses.
type Integration string

const (
	IntegrationOpenAI    Integration = "openai"
	IntegrationAnthropic Integration = "anthropic"
	IntegrationGemini    Integration = "gemini"
	IntegrationOllama    Integration = "ollama"
)

// String returns the string representation of the integration.
func (i Integration) String() string {
	return string(i)
}

// IsValid checks whether the integration is a known value.
func (i Integration) IsValid() bool {
	switch i {
	case IntegrationOpenAI, IntegrationAnthropic, IntegrationGemini, IntegrationOllama:
		return true
	}
	return false
}

// MaxIntegrationsPerPrompt caps how many backends a single prompt may fan
// out to.
const MaxIntegrationsPerPrompt = 4

// Chat is a titled conversation. Chats sit outside the realtime
// subsystem: they carry no version and emit no change events.
type Chat struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at_unix_ms"`
	UpdatedAt int64  `json:"updated_at_unix_ms"`
}

// ChatMessage is a single prompt or synthesized response within a chat.
// Integration is empty for user messages.
type ChatMessage struct {
	ID          int64       `json:"id"`
	ChatID      int64       `json:"chat_id"`
	Role        MessageRole `json:"role"`
	Integration Integration `json:"integration,omitempty"`
	Content     string      `json:"content"`
	CreatedAt   int64       `json:"created_at_unix_ms"`
}
