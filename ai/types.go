package ai

// ChatRole identifies the author of a conversation turn.
type ChatRole string

// Roles understood by chat completion backends.
const (
	RoleSystem    ChatRole = "system"
	RoleHuman     ChatRole = "human"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single conversation turn passed to a Generator.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// GenerationRequest carries everything a Generator needs to produce a
// response: an optional system prompt and the conversation so far, ending
// with the turn to respond to.
type GenerationRequest struct {
	// System is the system prompt. Empty means no system turn is sent.
	System string

	// Messages is the ordered conversation, oldest first. The final
	// message is the one the model responds to.
	Messages []ChatMessage
}
