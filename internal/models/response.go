package models

// Part is a single content part of a generateContent request
type Part struct {
	Text string `json:"text"`
}

// Content is one turn of a generateContent request
type Content struct {
	Parts []Part `json:"parts"`
}

// GenerateRequest is the generateContent request body
type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

// NewGenerateRequest builds a single-turn request whose only part is prompt
func NewGenerateRequest(prompt string) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
	}
}

// Answer is what an upstream backend extracted from a generateContent response
type Answer struct {
	Text         string
	FinishReason string
	BlockReason  string
	// ErrorMessage is the upstream error.message when the body carried one
	ErrorMessage string
	// Status is the upstream HTTP status, 0 when unknown (SDK backend)
	Status int
}

// HasText reports whether the upstream produced usable answer text
func (a *Answer) HasText() bool {
	return a != nil && a.Text != ""
}
