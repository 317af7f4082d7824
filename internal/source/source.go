// Package source supplies access-log lines to the extraction pipeline.
// It reads local files, standard input, and s3:// locations, with
// transparent decoding of gzip and snappy compressed logs.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
)

// Stdin is the access-log name that selects standard input.
const Stdin = "STDIN"

// maxLineSize bounds a single log line. Lines beyond this are a sign
// of a wrong format, not a real access log.
const maxLineSize = 1024 * 1024

// Open returns a reader for the named access log. Stdin reads standard
// input, s3:// locations are fetched from object storage, and .gz and
// .sz suffixes are decoded transparently.
func Open(ctx context.Context, accessLog string, s3opts S3Options) (io.ReadCloser, error) {
	if accessLog == Stdin {
		return io.NopCloser(os.Stdin), nil
	}

	if strings.HasPrefix(accessLog, "s3://") {
		return openS3(ctx, accessLog, s3opts)
	}

	file, err := os.Open(accessLog)
	if err != nil {
		return nil, fmt.Errorf("source: failed to open access log: %w", err)
	}
	return decode(accessLog, file)
}

// decode wraps rc with the decompressor its name calls for.
func decode(name string, rc io.ReadCloser) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("source: failed to open gzip log %s: %w", name, err)
		}
		return &decodedReader{Reader: zr, close: func() error {
			zr.Close()
			return rc.Close()
		}}, nil
	case strings.HasSuffix(name, ".sz"):
		return &decodedReader{Reader: snappy.NewReader(rc), close: rc.Close}, nil
	}
	return rc, nil
}

// decodedReader pairs a decompressing reader with the close of its
// underlying source.
type decodedReader struct {
	io.Reader
	close func() error
}

func (d *decodedReader) Close() error {
	return d.close()
}

// EachLine feeds every line of r to fn, stopping at end of input or on
// the first error fn returns.
func EachLine(r io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("source: failed to read input: %w", err)
	}
	return nil
}
