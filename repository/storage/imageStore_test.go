package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewImageStore_Validation(t *testing.T) {
	_, err := NewImageStore(Config{AccessKey: "a", SecretKey: "b", Bucket: "c"})
	require.ErrorContains(t, err, "endpoint")

	_, err = NewImageStore(Config{Endpoint: "localhost:9000", Bucket: "c"})
	require.ErrorContains(t, err, "access key")

	_, err = NewImageStore(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	require.ErrorContains(t, err, "bucket")

	s, err := NewImageStore(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "covers"})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/covers/", s.baseURL)
	require.Equal(t, "us-east-1", s.region)
}

func TestBaseURL(t *testing.T) {
	require.Equal(t, "https://s3.local/covers/", baseURL("", "s3.local", true, "covers"))
	require.Equal(t, "https://cdn.example.com/covers/", baseURL("https://cdn.example.com/", "s3.local", true, "covers"))
}

func TestKeyFromURL(t *testing.T) {
	base := "http://localhost:9000/covers/"

	key, ok := keyFromURL(base, base+"books/1/a.png")
	require.True(t, ok)
	require.Equal(t, "books/1/a.png", key)

	key, ok = keyFromURL(base, base+"books/1/a.png?X-Amz-Expires=60")
	require.True(t, ok)
	require.Equal(t, "books/1/a.png", key)

	_, ok = keyFromURL(base, "https://elsewhere.com/covers/books/1/a.png")
	require.False(t, ok)

	_, ok = keyFromURL(base, base)
	require.False(t, ok)
}
