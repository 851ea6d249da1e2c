// Package dictionary bulk-loads newline-delimited word lists into a trie.
package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	wserrors "wordsmith/internal/errors"
)

// maxLineBytes bounds a single dictionary line
const maxLineBytes = 1 << 20

// Inserter receives normalized words
type Inserter interface {
	Insert(word string)
}

// Stats summarizes one load
type Stats struct {
	Source   string        `json:"source"`
	Lines    int           `json:"lines"`
	Words    int           `json:"words"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Load reads r line by line, trims and lower-cases each line and inserts
// non-empty results into dst. Lines that are not valid UTF-8 (a Latin-1
// list, for example) are counted as skipped. Lines may end in \n or \r\n. On a read error
// the words read so far stay inserted and the error is returned.
func Load(r io.Reader, dst Inserter) (Stats, error) {
	start := time.Now()
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		stats.Lines++
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || !utf8.ValidString(word) {
			stats.Skipped++
			continue
		}
		dst.Insert(word)
		stats.Words++
	}

	stats.Duration = time.Since(start)
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read word list: %w", err)
	}
	return stats, nil
}

// LoadSource opens src (a file path or an http(s) URL) and loads it into dst.
// Failures are returned as DICTIONARY_UNAVAILABLE errors.
func LoadSource(ctx context.Context, src string, dst Inserter, client *http.Client) (Stats, error) {
	rc, err := Open(ctx, src, client)
	if err != nil {
		return Stats{Source: src}, wserrors.New(wserrors.DictionaryUnavailable, "open dictionary "+src, err)
	}
	defer rc.Close()

	stats, err := Load(rc, dst)
	stats.Source = src
	if err != nil {
		return stats, wserrors.New(wserrors.DictionaryUnavailable, "load dictionary "+src, err)
	}
	return stats, nil
}

// Open returns a reader over the decompressed contents of src.
// Sources ending in .gz are gunzipped and .zst sources are zstd-decoded.
func Open(ctx context.Context, src string, client *http.Client) (io.ReadCloser, error) {
	if src == "" {
		return nil, fmt.Errorf("no dictionary source configured")
	}

	raw, name, err := openRaw(ctx, src, client)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(raw)
		if err != nil {
			_ = raw.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, raw}}, nil
	case ".zst":
		dec, err := zstd.NewReader(raw)
		if err != nil {
			_ = raw.Close()
			return nil, fmt.Errorf("zstd: %w", err)
		}
		zr := dec.IOReadCloser()
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, raw}}, nil
	default:
		return raw, nil
	}
}

func openRaw(ctx context.Context, src string, client *http.Client) (io.ReadCloser, string, error) {
	if u, err := url.Parse(src); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, "", err
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, "", fmt.Errorf("fetch %s: unexpected status %s", src, resp.Status)
		}
		return resp.Body, u.Path, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, "", err
	}
	return f, src, nil
}

// stackedCloser closes a decompressor and then its source
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
