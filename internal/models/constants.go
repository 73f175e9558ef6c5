// Package models contains data types and constants for the Gemini generateContent API
// and the chat transcript.
package models

import (
	"fmt"
	"strings"
)

// Endpoints for the Gemini API
const (
	EndpointBase     = "https://generativelanguage.googleapis.com"
	EndpointGenerate = EndpointBase + "/v1beta/models/%s:generateContent"
)

// APIKeyHeader carries the credential on every upstream request
const APIKeyHeader = "x-goog-api-key"

// APIKeyEnv is the environment variable holding the credential
const APIKeyEnv = "GEMINI_API_KEY"

// Model represents an upstream generation model
type Model struct {
	Name  string
	Alias string
}

// Available models
var (
	Model25Flash = Model{Name: "gemini-2.5-flash", Alias: "fast"}
	Model25Pro   = Model{Name: "gemini-2.5-pro", Alias: "pro"}
	Model25Lite  = Model{Name: "gemini-2.5-flash-lite", Alias: "lite"}

	// DefaultModel is the model the relay talks to unless configured otherwise
	DefaultModel = Model25Flash
)

// AllModels returns a list of all known models
func AllModels() []Model {
	return []Model{Model25Flash, Model25Pro, Model25Lite}
}

// ModelFromName returns a Model by its name or alias.
// Unknown names are passed through so newer models work without a release.
func ModelFromName(name string) Model {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultModel
	}
	for _, m := range AllModels() {
		if m.Name == name || m.Alias == name {
			return m
		}
	}
	return Model{Name: name}
}

// GenerateURL returns the generateContent URL for a model under base.
// An empty base means the public endpoint.
func GenerateURL(base string, model Model) string {
	if base == "" {
		return fmt.Sprintf(EndpointGenerate, model.Name)
	}
	return strings.TrimRight(base, "/") + fmt.Sprintf("/v1beta/models/%s:generateContent", model.Name)
}

// DefaultHeaders returns the default headers for generateContent requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}
