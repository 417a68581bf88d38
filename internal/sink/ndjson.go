// Package sink writes accepted documents to newline-delimited JSON files.
package sink

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
)

// Shape selects the fields written per line.
type Shape int

const (
	// TextOnly writes url, title, text and the counts.
	TextOnly Shape = iota
	// WithMarkup adds the page markup under "html". The field is always
	// present, even when empty.
	WithMarkup
)

// Record is the on-disk shape of a TextOnly document.
type Record struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	Text           string `json:"text"`
	WordCount      int    `json:"word_count"`
	ParagraphCount int    `json:"paragraph_count"`
}

// MarkupRecord is the on-disk shape of a WithMarkup document.
type MarkupRecord struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	Text           string `json:"text"`
	HTML           string `json:"html"`
	WordCount      int    `json:"word_count"`
	ParagraphCount int    `json:"paragraph_count"`
}

// RecordFromDocument converts a Document to its TextOnly record.
func RecordFromDocument(doc crawler.Document) Record {
	return Record{
		URL:            doc.URL,
		Title:          doc.Title,
		Text:           doc.Text,
		WordCount:      doc.WordCount,
		ParagraphCount: doc.ParagraphCount,
	}
}

// MarkupRecordFromDocument converts a Document to its WithMarkup record.
func MarkupRecordFromDocument(doc crawler.Document) MarkupRecord {
	return MarkupRecord{
		URL:            doc.URL,
		Title:          doc.Title,
		Text:           doc.Text,
		HTML:           doc.RawMarkup,
		WordCount:      doc.WordCount,
		ParagraphCount: doc.ParagraphCount,
	}
}

func (s Shape) record(doc crawler.Document) any {
	if s == WithMarkup {
		return MarkupRecordFromDocument(doc)
	}
	return RecordFromDocument(doc)
}

// NDJSONSink appends one JSON object per line to a file truncated on open.
type NDJSONSink struct {
	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	enc    *json.Encoder
	count  int64
	shape  Shape
	path   string
	logger *zap.Logger
}

// Open truncates (or creates) path and returns a sink writing records of the
// given shape to it.
func Open(path string, shape Shape, logger *zap.Logger) (*NDJSONSink, error) {
	if path == "" {
		return nil, errors.New("sink path is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create sink dir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("open sink %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &NDJSONSink{file: f, buf: buf, enc: enc, shape: shape, path: path, logger: logger.Named("sink")}, nil
}

// Write appends doc as one line and flushes it.
func (s *NDJSONSink) Write(doc crawler.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("write %s: sink closed", s.path)
	}
	if err := s.enc.Encode(s.shape.record(doc)); err != nil {
		return fmt.Errorf("encode record %s: %w", doc.URL, err)
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("flush sink %s: %w", s.path, err)
	}
	s.count++
	return nil
}

// Count returns the number of lines written.
func (s *NDJSONSink) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Path returns the output file path.
func (s *NDJSONSink) Path() string {
	return s.path
}

// Close flushes and closes the file. It is safe to call more than once.
func (s *NDJSONSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	s.file = nil
	s.logger.Info("sink closed", zap.String("path", s.path), zap.Int64("records", s.count))
	if flushErr != nil {
		return fmt.Errorf("flush sink %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close sink %s: %w", s.path, closeErr)
	}
	return nil
}
