package sink

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Layouts of the transcript file name and of the per-line time stamp.
const (
	fileNameLayout  = "chat-02-01-2006-1504.log"
	timeStampLayout = "02/01/2006 03:04:05 PM - "
)

// DefaultDir is the directory transcripts are written to when none is given.
const DefaultDir = "logs"

// File appends transcript lines to a file named after the time it was
// created, inside a directory created on first write.
type File struct {
	dir  string
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewFile creates a file sink writing into dir.
func NewFile(dir string) *File {
	return newFile(dir, time.Now)
}

func newFile(dir string, now func() time.Time) *File {
	if dir == "" {
		dir = DefaultDir
	}
	return &File{
		dir:  dir,
		path: filepath.Join(dir, now().Format(fileNameLayout)),
		now:  now,
	}
}

// Path returns the transcript file path.
func (f *File) Path() string {
	return f.path
}

// Log appends line prefixed with the current time. Failures are reported to
// the default slog logger.
func (f *File) Log(line string) {
	if err := f.append(line); err != nil {
		slog.Error("transcript write failed", "path", f.path, "error", err)
	}
}

func (f *File) append(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	_, err = file.WriteString(f.now().Format(timeStampLayout) + line + "\n")
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}
