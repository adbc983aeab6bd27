package cli

import "time"

// Mode represents the CLI operation mode
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeHeadless    Mode = "headless"
)

// Request represents a JSON request in headless mode
type Request struct {
	ID      string                 `json:"id,omitempty"`
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Response represents a JSON response in headless mode
type Response struct {
	ID      string      `json:"id,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Event represents a real-time event in headless mode
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ChatInfo represents chat information for responses
type ChatInfo struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Members         []string  `json:"members"`
	Muted           bool      `json:"muted"`
	Pinned          bool      `json:"pinned"`
	LastMessage     string    `json:"last_message,omitempty"`
	LastMessageTime time.Time `json:"last_message_time,omitempty"`
}

// MessageInfo represents message information for responses
type MessageInfo struct {
	ID        string            `json:"id"`
	ChatID    string            `json:"chat_id"`
	SenderID  string            `json:"sender_id"`
	Text      string            `json:"text,omitempty"`
	MediaType string            `json:"media_type,omitempty"`
	ReplyTo   string            `json:"reply_to,omitempty"`
	Edited    bool              `json:"edited,omitempty"`
	Deleted   bool              `json:"deleted,omitempty"`
	Reactions map[string]string `json:"reactions,omitempty"`
	SeenBy    []string          `json:"seen_by,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// StatusInfo represents a status update for responses
type StatusInfo struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text,omitempty"`
	HasImage  bool      `json:"has_image"`
	ViewCount int       `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
}

// CallInfo represents a call-history entry for responses
type CallInfo struct {
	ID           string    `json:"id"`
	CallerName   string    `json:"caller_name"`
	ReceiverName string    `json:"receiver_name"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Duration     int       `json:"duration_seconds"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserInfo represents a user profile for responses
type UserInfo struct {
	UID      string    `json:"uid"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Bio      string    `json:"bio,omitempty"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen,omitempty"`
}

// SessionInfo represents the signed-in session for responses
type SessionInfo struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	SignedIn bool   `json:"signed_in"`
}
