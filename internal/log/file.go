package log

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

const latestLink = "latest"

// FileWriter appends to dir/YYYY-MM-DD.jsonl and points dir/latest at it.
// The date is fixed when the writer is created; runs are short.
type FileWriter struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewFileWriter opens today's debug file in dir, creating dir if needed.
func NewFileWriter(dir string) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating debug log dir: %w", err)
	}

	name := time.Now().Format(time.DateOnly) + ".jsonl"
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening debug log: %w", err)
	}

	linkLatest(dir, name)
	return &FileWriter{file: f, path: path}, nil
}

// Path returns the file being written.
func (fw *FileWriter) Path() string {
	return fw.path
}

// Write implements io.Writer.
func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.file == nil {
		return 0, os.ErrClosed
	}
	return fw.file.Write(p)
}

// Close closes the file. Later writes fail with os.ErrClosed.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.file == nil {
		return nil
	}
	err := fw.file.Close()
	fw.file = nil
	return err
}

// linkLatest replaces dir/latest with a symlink to name. Failures are ignored.
func linkLatest(dir, name string) {
	link := filepath.Join(dir, latestLink)
	tmp := link + ".tmp"
	os.Remove(tmp)
	if err := os.Symlink(name, tmp); err != nil {
		return
	}
	_ = os.Rename(tmp, link)
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.jsonl$`)

// Cleanup deletes debug files in dir older than retentionDays.
func Cleanup(dir string, retentionDays int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !datePattern.MatchString(name) {
			continue
		}
		day, err := time.Parse(time.DateOnly, name[:10])
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}
