package domain

import "time"

// UserState is the cached per-user state blob for a tenant.
type UserState struct {
	TenantID  string         `json:"tenant_id"`
	UserID    string         `json:"user_id"`
	Messages  []UserMessage  `json:"messages,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UserMessage is one entry in a user's accumulated message history.
type UserMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
}
