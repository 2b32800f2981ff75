// Package media stores payment-proof screenshots on local disk.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmpty           = errors.New("image is empty")
	ErrTooLarge        = errors.New("image too large")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrBadDataURI      = errors.New("malformed data URI")
)

var extByType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type ProofStore struct {
	dir      string
	maxBytes int
}

func NewProofStore(dir string, maxBytes int) (*ProofStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("media dir %s: %w", abs, err)
	}
	return &ProofStore{dir: abs, maxBytes: maxBytes}, nil
}

func (s *ProofStore) Dir() string { return s.dir }

func (s *ProofStore) MaxBytes() int { return s.maxBytes }

// Save sniffs the image type from its bytes, never from a client-supplied
// name, and returns the stored file name relative to Dir.
func (s *ProofStore) Save(kind, id string, img []byte) (string, error) {
	if len(img) == 0 {
		return "", ErrEmpty
	}
	if len(img) > s.maxBytes {
		return "", fmt.Errorf("%d bytes, limit %d: %w", len(img), s.maxBytes, ErrTooLarge)
	}
	ct := http.DetectContentType(img)
	ext, ok := extByType[ct]
	if !ok {
		return "", fmt.Errorf("%s: %w", ct, ErrUnsupportedType)
	}
	name := fmt.Sprintf("%s-%s-%s%s", safe(kind), safe(id), uuid.NewString()[:8], ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), img, 0o640); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes a stored proof; a missing file is not an error.
func (s *ProofStore) Remove(ref string) error {
	if ref == "" || ref != filepath.Base(ref) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func safe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// DecodeDataURI decodes "data:image/<type>;base64,<payload>".
func DecodeDataURI(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, ErrBadDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") || !strings.HasPrefix(meta, "image/") {
		return nil, ErrBadDataURI
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return b, nil
}
