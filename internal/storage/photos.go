package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PhotoBucket stores ticket photos under a local root, one directory per
// ticket, and derives public URLs from the configured base. The stored name is
// prefixed with a fresh uuid so repeated uploads of the same file never
// collide.
type PhotoBucket struct {
	root          string
	publicBaseURL string
}

func NewPhotoBucket(root, publicBaseURL string) (*PhotoBucket, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &PhotoBucket{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Root returns the bucket root for static file serving.
func (b *PhotoBucket) Root() string { return b.root }

func (b *PhotoBucket) Put(ticketID uuid.UUID, fileName string, content io.Reader) (string, int64, error) {
	safeName := sanitize(filepath.Base(fileName))
	if safeName == "" {
		return "", 0, fmt.Errorf("invalid file name %q", fileName)
	}
	storedName := fmt.Sprintf("%s-%s", uuid.New().String(), safeName)

	dir := filepath.Join(b.root, ticketID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}

	path := filepath.Join(dir, storedName)
	file, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}

	size, err := io.Copy(file, content)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}

	publicURL := fmt.Sprintf("%s/%s/%s", b.publicBaseURL, ticketID.String(), storedName)
	return publicURL, size, nil
}

func sanitize(name string) string {
	result := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_', r == '.':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-.")
}
