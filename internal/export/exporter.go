package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	wserrors "wordsmith/internal/errors"
)

// Format is a snapshot encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", wserrors.New(wserrors.UnsupportedFormat,
		fmt.Sprintf("unsupported export format %q", name), nil).
		WithDetails("supported: json, yaml, toml")
}

// FormatFromPath picks a format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", wserrors.New(wserrors.UnsupportedFormat,
			fmt.Sprintf("cannot infer format of %q without an extension", path), nil)
	}
	return ParseFormat(ext)
}

// NewSnapshot builds a snapshot of counts. Words are ordered by descending
// count, then alphabetically.
func NewSnapshot(counts map[string]uint64, threshold int, version string, generated time.Time) *Snapshot {
	words := make([]WordCount, 0, len(counts))
	var total uint64
	for w, n := range counts {
		words = append(words, WordCount{
			Word:  w,
			Count: n,
			Habit: threshold > 0 && n >= uint64(threshold),
		})
		total += n
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	return &Snapshot{
		Metadata: Metadata{
			Generated:  generated.UTC().Format(time.RFC3339),
			Version:    version,
			Threshold:  threshold,
			WordCount:  len(words),
			TotalCount: total,
		},
		Words: words,
	}
}

// Counts returns the snapshot as a word -> count mapping. Repeated words are
// summed and zero counts dropped.
func (s *Snapshot) Counts() map[string]uint64 {
	out := make(map[string]uint64, len(s.Words))
	for _, wc := range s.Words {
		if wc.Word == "" || wc.Count == 0 {
			continue
		}
		out[wc.Word] += wc.Count
	}
	return out
}

// Encode writes s to w in format f
func Encode(w io.Writer, s *Snapshot, f Format) error {
	f, err := ParseFormat(string(f))
	if err != nil {
		return err
	}

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	}
	return nil
}

// Decode reads a snapshot in format f. A JSON document that is a bare
// word -> count object, as stored by the host, is accepted too.
func Decode(r io.Reader, f Format) (*Snapshot, error) {
	f, err := ParseFormat(string(f))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var s Snapshot
	switch f {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, invalid("yaml", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &s); err != nil {
			return nil, invalid("toml", err)
		}
	}
	return &s, nil
}

func decodeJSON(data []byte) (*Snapshot, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, invalid("json", err)
	}

	if _, ok := probe["words"]; ok {
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, invalid("json", err)
		}
		return &s, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]json.Number
	if err := dec.Decode(&raw); err != nil {
		return nil, invalid("json", err)
	}
	counts := make(map[string]uint64, len(raw))
	for w, num := range raw {
		n, err := num.Int64()
		if err != nil || n < 1 {
			continue
		}
		counts[w] = uint64(n)
	}
	return NewSnapshot(counts, 0, "", time.Now()), nil
}

func invalid(format string, err error) error {
	return wserrors.New(wserrors.InvalidInput, "parse "+format+" snapshot", err)
}
