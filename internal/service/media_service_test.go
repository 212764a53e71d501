package service

import (
	"bytes"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stemsi/acequiz-backend/internal/config"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func openUpload(t *testing.T, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f, &multipart.FileHeader{Filename: "photo", Size: int64(len(content))}
}

func TestSavePhoto(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadBytes: 1024})

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 100)...)
	f, h := openUpload(t, content)

	uri, err := svc.SavePhoto(f, h)
	if err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}
	if !strings.HasPrefix(uri, "/uploads/") || !strings.HasSuffix(uri, ".png") {
		t.Fatalf("uri = %q", uri)
	}

	saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(uri, "/uploads/")))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(saved, content) {
		t.Errorf("saved %d bytes, want %d", len(saved), len(content))
	}
}

func TestSavePhotoRejects(t *testing.T) {
	svc := NewMediaService(&config.Config{UploadDir: t.TempDir(), MaxUploadBytes: 64})

	t.Run("not an image", func(t *testing.T) {
		f, h := openUpload(t, []byte("hello, plain text"))
		if _, err := svc.SavePhoto(f, h); !errors.Is(err, ErrUnsupportedFileType) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("declared too large", func(t *testing.T) {
		f, h := openUpload(t, pngHeader)
		h.Size = 65
		if _, err := svc.SavePhoto(f, h); !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("content larger than declared", func(t *testing.T) {
		f, h := openUpload(t, append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 100)...))
		h.Size = 10
		if _, err := svc.SavePhoto(f, h); !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("err = %v", err)
		}
	})
}
