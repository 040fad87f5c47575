package storage

import (
	"testing"

	"quiz-portal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Client(t *testing.T) {
	client, err := NewS3Client(&config.S3Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "user-files",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-files", client.Bucket())
}

func TestNewS3ClientRejectsBadEndpoint(t *testing.T) {
	_, err := NewS3Client(&config.S3Config{Endpoint: "http://localhost:9000/path"})
	assert.Error(t, err)
}
