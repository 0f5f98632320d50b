package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestPutStoresFileAndBuildsURL(t *testing.T) {
	bucket, err := NewPhotoBucket(t.TempDir(), "http://localhost:7090/uploads/")
	if err != nil {
		t.Fatalf("new bucket: %v", err)
	}

	ticketID := uuid.New()
	content := "fake jpeg bytes"
	url, size, err := bucket.Put(ticketID, "before repair (wide).jpg", strings.NewReader(content))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}
	if !strings.HasPrefix(url, "http://localhost:7090/uploads/"+ticketID.String()+"/") {
		t.Errorf("url = %q, want base + ticket dir prefix", url)
	}
	if strings.Contains(url, " ") || strings.Contains(url, "(") {
		t.Errorf("url %q should not contain unsanitized characters", url)
	}

	// the file actually landed under the ticket directory
	entries, err := os.ReadDir(filepath.Join(bucket.Root(), ticketID.String()))
	if err != nil {
		t.Fatalf("read ticket dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 stored file, got %d", len(entries))
	}
	stored, err := os.ReadFile(filepath.Join(bucket.Root(), ticketID.String(), entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if string(stored) != content {
		t.Errorf("stored content mismatch")
	}
}

func TestPutUniqueNames(t *testing.T) {
	bucket, err := NewPhotoBucket(t.TempDir(), "http://files.local")
	if err != nil {
		t.Fatal(err)
	}

	ticketID := uuid.New()
	first, _, err := bucket.Put(ticketID, "photo.jpg", strings.NewReader("a"))
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := bucket.Put(ticketID, "photo.jpg", strings.NewReader("b"))
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("repeated uploads of the same file name must not collide")
	}
}

func TestPutRejectsUnusableName(t *testing.T) {
	bucket, err := NewPhotoBucket(t.TempDir(), "http://files.local")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := bucket.Put(uuid.New(), "...", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for a name that sanitizes to nothing")
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"before repair.jpg", "before-repair.jpg"},
		{"unit#3 (roof).png", "unit-3--roof-.png"},
		{"../../etc/passwd", "passwd"},
		{"--..", ""},
	}
	for _, tc := range cases {
		if got := sanitize(filepath.Base(tc.in)); got != tc.want {
			t.Errorf("sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
