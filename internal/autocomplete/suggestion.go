package autocomplete

import (
	"encoding/json"
	"fmt"
)

// Source identifies which vocabulary produced a suggestion
type Source int

const (
	// SourceHabit marks words promoted from the user's own typing
	SourceHabit Source = iota
	// SourceDictionary marks words from the static word list
	SourceDictionary
)

// String returns the wire name of the source
func (s Source) String() string {
	switch s {
	case SourceHabit:
		return "habit"
	case SourceDictionary:
		return "dictionary"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the source by name
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a source name
func (s *Source) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "habit":
		*s = SourceHabit
	case "dictionary":
		*s = SourceDictionary
	default:
		return fmt.Errorf("unknown suggestion source %q", name)
	}
	return nil
}

// Suggestion is one candidate completion
type Suggestion struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}
