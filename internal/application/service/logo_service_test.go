package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/sangkips/invoicer/internal/infrastructure/storage"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func jpegBytes() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)
}

func newLogoService(t *testing.T, max int64) *LogoService {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return NewLogoService(store, max, zaptest.NewLogger(t))
}

func TestLogoService_Upload(t *testing.T) {
	svc := newLogoService(t, 0)
	ctx := context.Background()
	assert.EqualValues(t, DefaultLogoMaxSize, svc.MaxSize())

	_, ok := svc.Path("alice")
	assert.False(t, ok)

	path, err := svc.Upload(ctx, "alice", "Company Logo.PNG", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "alice_logo.png"))

	got, ok := svc.Path("alice")
	require.True(t, ok)
	assert.Equal(t, path, got)
}

func TestLogoService_UploadRejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		max      int64
		filename string
		data     []byte
	}{
		{"extension", 0, "logo.gif", []byte("GIF89a")},
		{"content", 0, "logo.png", []byte("definitely not an image")},
		{"size", 16, "logo.png", nil},
		{"jpeg named png", 0, "logo.png", jpegBytes()},
		{"png named jpg", 0, "logo.jpg", []byte("\x89PNG\r\n\x1a\n0000")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newLogoService(t, tt.max)
			data := tt.data
			if data == nil {
				data = pngBytes(t)
			}
			_, err := svc.Upload(ctx, "alice", tt.filename, bytes.NewReader(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrInputValidation))

			_, ok := svc.Path("alice")
			assert.False(t, ok)
		})
	}
}

func TestLogoService_ReplacesOtherExtension(t *testing.T) {
	svc := newLogoService(t, 0)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "alice", "a.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	path, err := svc.Upload(ctx, "alice", "b.jpg", bytes.NewReader(jpegBytes()))
	require.NoError(t, err)

	got, ok := svc.Path("alice")
	require.True(t, ok)
	assert.Equal(t, path, got)
	assert.True(t, strings.HasSuffix(got, "alice_logo.jpg"))
}
