package domain

import "time"

// Session represents a logged conversation
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message represents a logged chat message
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	Metadata  *Metadata `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the request body for POST /chat
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// Metadata describes how a reply was produced
type Metadata struct {
	ProcessingTime     float64   `json:"processing_time"`
	WebSearchPerformed bool      `json:"web_search_performed"`
	Sources            []string  `json:"sources,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// ChatResponse is the response body for POST /chat
type ChatResponse struct {
	SessionID string   `json:"session_id,omitempty"`
	Response  string   `json:"response"`
	Metadata  Metadata `json:"metadata"`
}
