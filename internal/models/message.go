package models

// Role tags a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents one chat bubble
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// QuestionRequest is the relay request body
type QuestionRequest struct {
	Question string `json:"question"`
}

// AnswerResponse is the relay response body. Exactly one field is set.
type AnswerResponse struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}
