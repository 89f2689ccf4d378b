package voxd

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a conversation's ordered history.
type Message struct {
	Role    Role
	Content string
}
