package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kyc-hub/config"
)

var namePattern = regexp.MustCompile(`^uploads/[0-9a-f-]{36}_\d+\.(png|pdf|jpeg)$`)

func TestObjectName(t *testing.T) {
	assert.Regexp(t, namePattern, objectName("uploads", "card.PNG", "image/png"))
	assert.Regexp(t, namePattern, objectName("/uploads/", "scan.pdf", ""))
	assert.Regexp(t, namePattern, objectName("uploads", "noext", "image/jpeg"))
	assert.True(t, strings.HasSuffix(objectName("", "x", "text/plain"), ".bin"))
}

func TestValidKey(t *testing.T) {
	assert.True(t, validKey("aadhaar/abc.png"))
	assert.False(t, validKey(""))
	assert.False(t, validKey("/etc/passwd"))
	assert.False(t, validKey("../secret"))
	assert.False(t, validKey("a//b"))
	assert.False(t, validKey(`a\b`))
}

func TestLocalSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "http://localhost:8080/files/")
	require.NoError(t, err)

	obj, err := store.Save(context.Background(), strings.NewReader("hello"), "image/png", "aadhaar", "front.png")
	require.NoError(t, err)
	assert.Equal(t, int64(5), obj.Size)
	assert.True(t, strings.HasPrefix(obj.Key, "aadhaar/"))
	assert.Equal(t, "http://localhost:8080/files/"+obj.Key, obj.URL)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(obj.Key)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(context.Background(), obj.Key))
	assert.NoFileExists(t, filepath.Join(dir, filepath.FromSlash(obj.Key)))

	// deleting twice is not an error
	assert.NoError(t, store.Delete(context.Background(), obj.Key))
	assert.ErrorIs(t, store.Delete(context.Background(), "../outside"), ErrInvalidKey)
}

func TestLocalSaveHonoursCancelledContext(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, strings.NewReader("x"), "", "pan", "a.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Backend: "local", LocalDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Local{}, s)

	_, err = New(context.Background(), config.StorageConfig{Backend: "ftp"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}

func TestNewS3BuildsClient(t *testing.T) {
	s, err := NewS3(context.Background(), S3Config{
		Bucket:       "kyc",
		Endpoint:     "http://localhost:9000",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		UsePathStyle: true,
	}, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, "kyc", s.bucket)
	assert.ErrorIs(t, s.Delete(context.Background(), "/abs"), ErrInvalidKey)
}
