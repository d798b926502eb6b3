package chat

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// RoleBot is the marker stored on assistant replies.
	RoleBot Role = "bot"
)

// NormalizeRole maps a stored role to user or assistant. Bot markers,
// including the legacy persona name "luna", become assistant; anything else
// is rejected.
func NormalizeRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user":
		return RoleUser, true
	case "assistant", "bot", "luna":
		return RoleAssistant, true
	default:
		return "", false
	}
}
