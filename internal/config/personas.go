package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPersonaName is the persona the relay uses when none is configured
const DefaultPersonaName = "mentor"

// Persona represents a preamble that steers the tone of every answer
type Persona struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
}

// PersonaConfig stores user-defined personas
type PersonaConfig struct {
	Personas []Persona `json:"personas"`
}

const mentorPrompt = `You are a warm, encouraging companion for learners in India. Sound like a
helpful senior or mentor rather than a chatbot.

How to talk:
- Match the user's register: casual when they are casual, careful when they are confused.
- Keep language simple and practical. Light Hinglish is fine when it feels natural.
- Reach for everyday Indian examples (exams, trains, chai, daily routine) when they help.
- Break big ideas into small steps and admit when you are unsure.

Never describe yourself as an AI model or write like documentation or policy text.

Answer the user's question in the most natural, helpful way.`

// DefaultPersonas returns pre-configured personas
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Name:         DefaultPersonaName,
			Description:  "Friendly senior who explains things simply",
			SystemPrompt: mentorPrompt,
		},
		{
			Name:        "concise",
			Description: "Short, direct answers",
			SystemPrompt: `You answer briefly and directly. Prefer a few sentences or a short list.
Skip greetings and filler.`,
		},
		{
			Name:        "teacher",
			Description: "Patient educational assistant",
			SystemPrompt: `You are a patient and thorough teacher. When explaining:
- Break down complex topics into simple parts
- Use analogies and examples
- Encourage questions
- Adapt explanations to the learner's level`,
		},
		{
			Name:         "plain",
			Description:  "No preamble, the question is sent as typed",
			SystemPrompt: "",
		},
	}
}

// GetPersonasPath returns the path to the personas file
func GetPersonasPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "personas.json"), nil
}

// LoadPersonas loads user personas merged over the built-in ones
func LoadPersonas() ([]Persona, error) {
	custom, err := loadCustomPersonas()
	if err != nil {
		return nil, err
	}
	return mergePersonas(DefaultPersonas(), custom), nil
}

func loadCustomPersonas() ([]Persona, error) {
	path, err := GetPersonasPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read personas: %w", err)
	}

	var cfg PersonaConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}

	for _, p := range cfg.Personas {
		if err := ValidatePersona(p); err != nil {
			return nil, fmt.Errorf("persona %q: %w", p.Name, err)
		}
	}
	return cfg.Personas, nil
}

func saveCustomPersonas(personas []Persona) error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := GetPersonasPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(PersonaConfig{Personas: personas}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize personas: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write personas: %w", err)
	}
	return nil
}

// AddPersona stores a new user persona. Names already in use are rejected.
func AddPersona(p Persona) error {
	if err := ValidatePersona(p); err != nil {
		return err
	}

	all, err := LoadPersonas()
	if err != nil {
		return err
	}
	for _, existing := range all {
		if existing.Name == p.Name {
			return fmt.Errorf("persona '%s' already exists", p.Name)
		}
	}

	custom, err := loadCustomPersonas()
	if err != nil {
		return err
	}
	return saveCustomPersonas(append(custom, p))
}

// DeletePersona removes a user persona. Built-in personas cannot be deleted.
func DeletePersona(name string) error {
	custom, err := loadCustomPersonas()
	if err != nil {
		return err
	}

	kept := make([]Persona, 0, len(custom))
	found := false
	for _, p := range custom {
		if p.Name == name {
			found = true
			continue
		}
		kept = append(kept, p)
	}

	if !found {
		for _, p := range DefaultPersonas() {
			if p.Name == name {
				return fmt.Errorf("persona '%s' is built in and cannot be deleted", name)
			}
		}
		return fmt.Errorf("persona '%s' not found", name)
	}
	return saveCustomPersonas(kept)
}

// GetPersona returns a persona by name
func GetPersona(name string) (*Persona, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultPersonaName
	}

	personas, err := LoadPersonas()
	if err != nil {
		return nil, err
	}

	for _, p := range personas {
		if p.Name == name {
			return &p, nil
		}
	}

	return nil, fmt.Errorf("persona '%s' not found", name)
}

func mergePersonas(defaults, custom []Persona) []Persona {
	result := make([]Persona, len(defaults))
	copy(result, defaults)

	for _, cp := range custom {
		found := false
		for i, dp := range result {
			if dp.Name == cp.Name {
				result[i] = cp
				found = true
				break
			}
		}
		if !found {
			result = append(result, cp)
		}
	}

	return result
}

// FormatPrompt wraps the literal question in the persona preamble
func FormatPrompt(persona *Persona, question string) string {
	if persona == nil || persona.SystemPrompt == "" {
		return question
	}

	return fmt.Sprintf("%s\n\nUser: %s\n", persona.SystemPrompt, question)
}

// Validation constants
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 200
	MaxPromptLength      = 32 * 1024
)

// ValidatePersona validates a persona's fields
func ValidatePersona(p Persona) error {
	fieldErrors := make(map[string]string)

	if p.Name == "" {
		fieldErrors["name"] = "name is required"
	} else if len(p.Name) > MaxNameLength {
		fieldErrors["name"] = fmt.Sprintf("name too long (max %d characters)", MaxNameLength)
	} else if !isValidPersonaName(p.Name) {
		fieldErrors["name"] = "name must contain only alphanumeric characters, underscores, and hyphens"
	}

	if len(p.Description) > MaxDescriptionLength {
		fieldErrors["description"] = fmt.Sprintf("description too long (max %d characters)", MaxDescriptionLength)
	}

	if len(p.SystemPrompt) > MaxPromptLength {
		fieldErrors["system_prompt"] = fmt.Sprintf("system prompt too long (max %d characters)", MaxPromptLength)
	}

	if len(fieldErrors) > 0 {
		return fmt.Errorf("validation failed: %v", fieldErrors)
	}

	return nil
}

func isValidPersonaName(name string) bool {
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-') {
			return false
		}
	}
	return true
}
