package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rigbuilder.build.json", ObjectKey("", "rigbuilder.build"))
	assert.Equal(t, "builds/rigbuilder.build.json", ObjectKey("/builds/", "rigbuilder.build"))
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{Endpoint: "minio:9000", Bucket: "b"})
	require.Error(t, err)

	_, err = New(Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s"})
	require.Error(t, err)

	store, err := New(Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s", Bucket: "builds"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", store.region)
}
