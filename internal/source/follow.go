package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Follower re-reads newly appended bytes from a log file on an
// interval, feeding complete lines to a sink. Only whole lines are
// consumed; a partial trailing line stays in the file until the writer
// finishes it. Truncation (log rotation in place) resets the offset to
// the start of the file.
type Follower struct {
	path     string
	interval time.Duration
	offset   int64
}

// NewFollower creates a follower for the given log file.
func NewFollower(path string, interval time.Duration) *Follower {
	return &Follower{path: path, interval: interval}
}

// Run drains the file immediately, then once per interval until ctx is
// done. The sink receives each batch of new lines; a batch may be
// empty when nothing was appended. A sink error stops the loop.
func (f *Follower) Run(ctx context.Context, sink func(lines []string) error) error {
	if err := f.drain(sink); err != nil {
		return err
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := f.drain(sink); err != nil {
				return err
			}
		}
	}
}

// drain reads all complete lines appended since the last drain and
// passes them to the sink.
func (f *Follower) drain(sink func(lines []string) error) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("source: failed to open followed log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("source: failed to stat followed log: %w", err)
	}
	if info.Size() < f.offset {
		// Truncated underneath us; start over.
		f.offset = 0
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return fmt.Errorf("source: failed to seek followed log: %w", err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("source: failed to read followed log: %w", err)
	}

	// Consume only through the last newline.
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return sink(nil)
	}
	f.offset += int64(end + 1)

	var lines []string
	for _, raw := range bytes.Split(data[:end], []byte{'\n'}) {
		lines = append(lines, string(bytes.TrimSuffix(raw, []byte{'\r'})))
	}
	return sink(lines)
}
