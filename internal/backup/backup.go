// Package backup stores admin state documents outside the local database,
// either as a file or as an object in an S3-compatible bucket.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink is a place a state document can be written to and read back from.
type Sink interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context) ([]byte, error)
	String() string
}

// Open returns the sink for target: "s3://bucket/key" or a file path.
func Open(ctx context.Context, target string, cfg S3Config) (Sink, error) {
	rest, ok := strings.CutPrefix(target, "s3://")
	if !ok {
		if target == "" {
			return nil, fmt.Errorf("backup target is empty")
		}
		return &FileSink{Path: target}, nil
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("backup target %q: want s3://bucket/key", target)
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewS3Sink(client, bucket, key), nil
}

// FileSink keeps the document in a local file.
type FileSink struct {
	Path string
}

// Write replaces the file atomically.
func (f *FileSink) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".backup-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.Path, err)
	}
	return nil
}

// Read returns the file's contents.
func (f *FileSink) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	return data, nil
}

func (f *FileSink) String() string {
	return f.Path
}
