// Package api provides the upstream Gemini generateContent clients.
package api

// GJSON paths for extracting values from generateContent responses.
const (
	// PathCandidateText is the answer text of the first candidate
	PathCandidateText = "candidates.0.content.parts.0.text"

	PathFinishReason = "candidates.0.finishReason"
	PathBlockReason  = "promptFeedback.blockReason"

	// PathErrorMessage is set on non-2xx JSON error bodies
	PathErrorMessage = "error.message"
)
