// Package storage persists uploaded files under generated unique names.
package storage

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// MaxUploadSize caps a single uploaded file at 16 MiB.
const MaxUploadSize = 16 << 20

var (
	ErrFileTooLarge   = errors.New("file exceeds the maximum upload size")
	ErrBadExtension   = errors.New("file type is not allowed")
	ErrInvalidName    = errors.New("invalid file name")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".pdf":  true, // enquiry specification sheets
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save persists an uploaded file verbatim under a timestamped unique name and
// returns that name.
func (fs *FileStore) Save(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxUploadSize {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", ErrBadExtension
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uniqueName(header.Filename)
	dst, err := os.Create(filepath.Join(fs.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// SaveImage normalizes png/jpeg uploads to an 800px-wide jpeg before storing
// them; other allowed image formats are stored verbatim via Save.
func (fs *FileStore) SaveImage(header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return fs.Save(header)
	}
	if header.Size > MaxUploadSize {
		return "", ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	var img image.Image
	if ext == ".png" {
		img, err = png.Decode(src)
	} else {
		img, err = jpeg.Decode(src)
	}
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	resized := resize.Resize(800, 0, img, resize.Lanczos3)

	name := uuid.New().String() + ".jpg"
	dst, err := os.Create(filepath.Join(fs.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if err := jpeg.Encode(dst, resized, &jpeg.Options{Quality: 80}); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// Open reads a stored file back, rejecting names that try to escape the
// upload directory.
func (fs *FileStore) Open(name string) (io.ReadCloser, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, ErrInvalidName
	}
	return os.Open(filepath.Join(fs.dir, name))
}

func (fs *FileStore) Path(name string) string {
	return filepath.Join(fs.dir, name)
}

// uniqueName builds "<utc timestamp>_<sanitized original>" the way the upload
// folder has always been laid out; a uuid stands in when sanitising leaves
// nothing usable.
func uniqueName(original string) string {
	base := unsafeChars.ReplaceAllString(filepath.Base(original), "_")
	if strings.Trim(base, "._-") == "" {
		base = uuid.New().String() + strings.ToLower(filepath.Ext(original))
	}
	return time.Now().UTC().Format("20060102_150405") + "_" + base
}
