package objectclient

import (
	"context"
	"errors"
	"testing"

	"github.com/markdave123-py/newsprint/internal/config"
	"github.com/markdave123-py/newsprint/internal/logger"
)

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{"aws", "", "https://papers.s3.us-east-2.amazonaws.com/runs/j1/chunk_1.txt"},
		{"minio", "http://localhost:9000", "http://localhost:9000/papers/runs/j1/chunk_1.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ObjectURL(tt.endpoint, "papers", "us-east-2", "runs/j1/chunk_1.txt")
			if got != tt.want {
				t.Errorf("ObjectURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArchiveKey(t *testing.T) {
	if got := ArchiveKey("job-7", "/tmp/out/chunks/chunk_2.txt"); got != "runs/job-7/chunk_2.txt" {
		t.Errorf("ArchiveKey = %q", got)
	}
}

func TestNewS3Client_DisabledWithoutBucket(t *testing.T) {
	_, err := NewS3Client(context.Background(), &config.Config{AwsRegion: "us-east-2"}, logger.Discard())
	if !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("err = %v, want ErrArchiveDisabled", err)
	}
}
