package model

// ChatRequest represents a single conversation turn submitted by a client
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// ChatResponse carries the bot reply for one turn
type ChatResponse struct {
	Message Message             `json:"message"`
	Context ConversationContext `json:"context"`
	Took    int64               `json:"took_ms"`
}

// HistoryResponse carries a session's message history, newest first
type HistoryResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// LocationsResponse carries a filtered catalog listing
type LocationsResponse struct {
	Results []Location `json:"results"`
	Total   int        `json:"total"`
}

// CitiesResponse carries the derived known-city set
type CitiesResponse struct {
	Cities []string `json:"cities"`
}

// FeedbackRequest represents a user action on a recommendation card
type FeedbackRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	LocationID int    `json:"location_id" binding:"required"`
	Action     string `json:"action" binding:"required"` // click, view_details, reserve
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// EmbeddingRebuildResponse reports an embedding rebuild run
type EmbeddingRebuildResponse struct {
	Embedded int      `json:"embedded"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}
