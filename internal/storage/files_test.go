package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
)

func fileHeader(t *testing.T, field, filename, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File[field][0]
}

func TestSaveStoresFileUnderUniqueName(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	header := fileHeader(t, "spec_file", "pump spec (rev2).pdf", "spec sheet body")
	name, err := fs.Save(header)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(name, "_pump_spec__rev2_.pdf") {
		t.Errorf("unexpected stored name %q", name)
	}

	rc, err := fs.Open(name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	stored, _ := io.ReadAll(rc)
	if string(stored) != "spec sheet body" {
		t.Errorf("stored content mismatch: %q", stored)
	}
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	header := fileHeader(t, "spec_file", "malware.exe", "nope")
	if _, err := fs.Save(header); err != ErrBadExtension {
		t.Fatalf("expected ErrBadExtension, got %v", err)
	}
}

func TestOpenRejectsPathTraversal(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"", "../secrets.txt", "a/b.png"} {
		if _, err := fs.Open(name); err != ErrInvalidName {
			t.Errorf("Open(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
}
