package storage

import (
	"testing"

	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint   string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"localhost:9000", false, "localhost:9000", false},
		{"localhost:9000", true, "localhost:9000", true},
		{"https://s3.example.com/", false, "s3.example.com", true},
		{"http://minio:9000", true, "minio:9000", false},
		{"//minio:9000", false, "minio:9000", false},
	}
	for _, tt := range tests {
		host, secure := normalizeEndpoint(tt.endpoint, tt.useSSL)
		assert.Equal(t, tt.wantHost, host, tt.endpoint)
		assert.Equal(t, tt.wantSecure, secure, tt.endpoint)
	}
}

func TestNewMinioClientValidation(t *testing.T) {
	_, err := NewMinioClient(config.StorageConfig{})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "credentials")

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "bucket")

	c, err := NewMinioClient(config.StorageConfig{Endpoint: "http://localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "datasets"})
	require.NoError(t, err)
	assert.Equal(t, "datasets", c.bucket)
	assert.Equal(t, "us-east-1", c.region)
}
