package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/multibrand-site/internal/domain"
	"github.com/multibrand-site/internal/pkg/id"
)

const defaultFolder = "misc"

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type Input struct {
	Reader   io.Reader
	Filename string
	Size     int64
	Folder   string
}

// Result locates a stored image.
type Result struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type Service interface {
	UploadImage(ctx context.Context, input Input) (*Result, error)
	ReplaceGatedAsset(ctx context.Context, input Input) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PublicURL(key string) string
}

type service struct {
	store    objectStore
	gatedKey string
	maxBytes int64
}

func NewService(store objectStore, gatedKey string, maxBytes int64) Service {
	return &service{store: store, gatedKey: gatedKey, maxBytes: maxBytes}
}

func (s *service) UploadImage(ctx context.Context, input Input) (*Result, error) {
	body, contentType, err := s.sniff(input)
	if err != nil {
		return nil, err
	}
	if !imageTypes[contentType] {
		return nil, fmt.Errorf("unsupported image type %s: %w", contentType, domain.ErrBadRequest)
	}
	key := fmt.Sprintf("images/%s/%s-%s", sanitizeFolder(input.Folder), strings.ToLower(id.New()), sanitizeFilename(input.Filename))
	if err := s.store.Upload(ctx, key, body, contentType); err != nil {
		return nil, err
	}
	return &Result{URL: s.store.PublicURL(key), Key: key}, nil
}

func (s *service) ReplaceGatedAsset(ctx context.Context, input Input) error {
	body, contentType, err := s.sniff(input)
	if err != nil {
		return err
	}
	if contentType != "application/pdf" {
		return fmt.Errorf("gated asset must be a PDF, got %s: %w", contentType, domain.ErrBadRequest)
	}
	return s.store.Upload(ctx, s.gatedKey, body, contentType)
}

// sniff detects the content type from the first bytes and returns a reader
// replaying the whole body, capped at maxBytes.
func (s *service) sniff(input Input) (io.Reader, string, error) {
	if input.Size > s.maxBytes {
		return nil, "", fmt.Errorf("file exceeds %d bytes: %w", s.maxBytes, domain.ErrBadRequest)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(input.Reader, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return nil, "", fmt.Errorf("empty file: %w", domain.ErrBadRequest)
		}
		return nil, "", err
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(input.Reader, s.maxBytes-int64(n)))
	return body, contentType, nil
}

func sanitizeFolder(folder string) string {
	folder = strings.ToLower(strings.TrimSpace(folder))
	var b strings.Builder
	for _, r := range folder {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return defaultFolder
	}
	return b.String()
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
