package model

import "time"

// Message senders
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is a single entry in a conversation. Messages are prepended
// to history (newest first) and never mutated after creation, except
// for the loading placeholder which is replaced once the real response
// arrives.
type Message struct {
	ID                   string     `json:"id"`
	Text                 string     `json:"text"`
	Sender               string     `json:"sender"`
	Timestamp            time.Time  `json:"timestamp"`
	RecommendedLocations []Location `json:"recommended_locations,omitempty"`
	IsLoading            bool       `json:"is_loading,omitempty"`
}

// ConversationContext is the intent/city remembered across turns within
// a session. It is passed into and returned from the resolver each turn
// rather than living in ambient mutable state, and it is never
// persisted across sessions.
type ConversationContext struct {
	LastIntent string `json:"last_intent"`
	LastCity   string `json:"last_city"`
}
