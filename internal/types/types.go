package types

import "strings"

// Ingredient is a detected or user-added food item. PossibleAlternates holds
// candidate corrected names offered by the detection model; accepting one
// replaces Name, the list itself is never mutated after detection.
type Ingredient struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	PossibleAlternates []string `json:"possible_alternates,omitempty"`
}

// Difficulty is the recipe difficulty enumeration.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// NormalizeDifficulty maps free-text model output onto the enumeration.
// Unknown values fall back to Medium.
func NormalizeDifficulty(raw string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy", "beginner", "simple":
		return DifficultyEasy
	case "hard", "difficult", "advanced", "expert":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Recipe is a structured meal suggestion returned by the generation model.
type Recipe struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	PrepTime     string     `json:"prep_time"`
	Difficulty   Difficulty `json:"difficulty"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
}

// CapturedImage is one encoded image payload from the capture source.
// ObjectKey replaces Data when the payload has been offloaded to the
// image store.
type CapturedImage struct {
	Data      []byte `json:"data,omitempty"`
	MIMEType  string `json:"mime_type"`
	ObjectKey string `json:"object_key,omitempty"`
}
