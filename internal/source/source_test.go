package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func readAllLines(t *testing.T, path string) []string {
	t.Helper()
	rc, err := Open(context.Background(), path, S3Options{})
	require.NoError(t, err)
	defer rc.Close()

	var lines []string
	require.NoError(t, EachLine(rc, func(line string) error {
		lines = append(lines, line)
		return nil
	}))
	return lines
}

func TestOpenPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0644))

	require.Equal(t, []string{"one", "two"}, readAllLines(t, path))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.log"), S3Options{})
	require.Error(t, err)
}

func TestOpenGzipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log.gz")
	file, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(file)
	_, err = zw.Write([]byte("gzipped line\nanother\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	require.Equal(t, []string{"gzipped line", "another"}, readAllLines(t, path))
}

func TestOpenSnappyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log.sz")
	file, err := os.Create(path)
	require.NoError(t, err)
	sw := snappy.NewBufferedWriter(file)
	_, err = sw.Write([]byte("snappy line\n"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())
	require.NoError(t, file.Close())

	require.Equal(t, []string{"snappy line"}, readAllLines(t, path))
}

func TestEachLineStopsOnError(t *testing.T) {
	input := strings.NewReader("a\nb\nc\n")
	var seen []string
	err := EachLine(input, func(line string) error {
		seen = append(seen, line)
		if line == "b" {
			return os.ErrClosed
		}
		return nil
	})
	require.ErrorIs(t, err, os.ErrClosed)
	require.Equal(t, []string{"a", "b"}, seen)
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://logs/nginx/access.log")
	require.NoError(t, err)
	require.Equal(t, "logs", bucket)
	require.Equal(t, "nginx/access.log", key)

	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/"} {
		_, _, err := parseS3URL(bad)
		require.Error(t, err, bad)
	}
}

func TestFollowerDrainsOnlyCompleteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte("first\nsecond\npart"), 0644))

	follower := NewFollower(path, 0)

	var got [][]string
	sink := func(lines []string) error {
		got = append(got, lines)
		return nil
	}

	require.NoError(t, follower.drain(sink))
	require.Equal(t, [][]string{{"first", "second"}}, got)

	// Finish the partial line and append another.
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = file.WriteString("ial\nthird\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, follower.drain(sink))
	require.Equal(t, []string{"partial", "third"}, got[1])
}

func TestFollowerHandlesTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte("old one\nold two\n"), 0644))

	follower := NewFollower(path, 0)
	var batches [][]string
	sink := func(lines []string) error {
		batches = append(batches, lines)
		return nil
	}

	require.NoError(t, follower.drain(sink))

	// Rotate in place: the file shrinks, reading restarts at zero.
	require.NoError(t, os.WriteFile(path, []byte("fresh\n"), 0644))
	require.NoError(t, follower.drain(sink))

	require.Equal(t, []string{"fresh"}, batches[1])
}

func TestFollowerRunStopsOnContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte("line\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	follower := NewFollower(path, time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- follower.Run(ctx, func([]string) error { return nil })
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("follower did not stop after cancellation")
	}
}
