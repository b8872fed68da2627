package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sangkips/invoicer/internal/infrastructure/storage"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/sangkips/invoicer/pkg/utils"
	"go.uber.org/zap"
)

// DefaultLogoMaxSize is the upload limit when none is configured
const DefaultLogoMaxSize = 5 << 20

var logoExtensions = []string{".png", ".jpg", ".jpeg"}

// content type each extension must carry
var logoContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// LogoService stores one logo per user for use on generated invoices
type LogoService struct {
	store   *storage.LocalStore
	maxSize int64
	log     *zap.Logger
}

// NewLogoService creates a new logo service
func NewLogoService(store *storage.LocalStore, maxSize int64, log *zap.Logger) *LogoService {
	if maxSize <= 0 {
		maxSize = DefaultLogoMaxSize
	}
	return &LogoService{store: store, maxSize: maxSize, log: log}
}

// MaxSize returns the upload limit in bytes
func (s *LogoService) MaxSize() int64 {
	return s.maxSize
}

func logoName(username, ext string) string {
	return utils.SafeFileComponent(username) + "_logo" + ext
}

// Upload validates and stores a logo as {user}_logo{ext}, replacing any previous one
func (s *LogoService) Upload(ctx context.Context, username, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := logoContentTypes[ext]
	if !ok {
		return "", apperror.NewValidationError([]apperror.FieldError{
			{Field: "logo", Message: "must be a png, jpg or jpeg file"},
		})
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", apperror.NewBadRequestError("Failed to read upload")
	}
	if int64(len(data)) > s.maxSize {
		return "", apperror.NewValidationError([]apperror.FieldError{
			{Field: "logo", Message: fmt.Sprintf("must not exceed %d bytes", s.maxSize)},
		})
	}

	kind := http.DetectContentType(data)
	if kind != "image/png" && kind != "image/jpeg" {
		return "", apperror.NewValidationError([]apperror.FieldError{
			{Field: "logo", Message: "content is not a png or jpeg image"},
		})
	}
	if kind != want {
		return "", apperror.NewValidationError([]apperror.FieldError{
			{Field: "logo", Message: fmt.Sprintf("%s content does not match the %s extension", kind, ext)},
		})
	}

	path, err := s.store.Save(ctx, logoName(username, ext), data)
	if err != nil {
		return "", err
	}

	for _, other := range logoExtensions {
		if other != ext && s.store.Exists(logoName(username, other)) {
			_ = s.store.Delete(ctx, s.store.Path(logoName(username, other)))
		}
	}

	s.log.Info("logo uploaded", zap.String("username", username), zap.Int("bytes", len(data)))
	return path, nil
}

// Path returns the user's logo file, if one was uploaded
func (s *LogoService) Path(username string) (string, bool) {
	for _, ext := range logoExtensions {
		name := logoName(username, ext)
		if s.store.Exists(name) {
			return s.store.Path(name), true
		}
	}
	return "", false
}
