// Package export writes and reads portable snapshots of the word frequency
// mapping in JSON, YAML or TOML.
package export

// Snapshot is the portable form of the frequency mapping
type Snapshot struct {
	Metadata Metadata    `json:"metadata" yaml:"metadata" toml:"metadata"`
	Words    []WordCount `json:"words" yaml:"words" toml:"words"`
}

// Metadata describes when and how a snapshot was produced
type Metadata struct {
	Generated  string `json:"generated" yaml:"generated" toml:"generated"` // RFC 3339
	Version    string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Threshold  int    `json:"threshold" yaml:"threshold" toml:"threshold"`
	WordCount  int    `json:"wordCount" yaml:"wordCount" toml:"wordCount"`
	TotalCount uint64 `json:"totalCount" yaml:"totalCount" toml:"totalCount"`
}

// WordCount is one entry of the mapping
type WordCount struct {
	Word  string `json:"word" yaml:"word" toml:"word"`
	Count uint64 `json:"count" yaml:"count" toml:"count"`
	// Habit marks words at or above the promotion threshold
	Habit bool `json:"habit" yaml:"habit" toml:"habit"`
}
