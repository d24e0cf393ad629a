package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

// allowedImageTypes maps accepted inspiration image types to their extension
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// UploadedImage is a validated upload, read fully into memory
type UploadedImage struct {
	FileName  string
	MimeType  string
	Extension string
	Data      []byte
}

// Size returns the image length in bytes
func (u *UploadedImage) Size() int64 {
	return int64(len(u.Data))
}

// Reader returns a fresh reader over the image bytes
func (u *UploadedImage) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

// IsAllowedImageType reports whether mime names a supported inspiration image type
func IsAllowedImageType(mime string) bool {
	_, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(mime))]
	return ok
}

// ValidateImageFile checks the declared size of an upload before it is read
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size <= 0 {
		return &FileUploadError{Code: "EMPTY_FILE", Message: "Uploaded file is empty"}
	}
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}
	return nil
}

// ReadImageFile validates an upload and detects its type from the content,
// ignoring the client-supplied extension and Content-Type header.
func ReadImageFile(fileHeader *multipart.FileHeader) (*UploadedImage, error) {
	if err := ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	return DetectImage(filepath.Base(fileHeader.Filename), data)
}

// DetectImage sniffs data and accepts it when it is a supported image type
func DetectImage(fileName string, data []byte) (*UploadedImage, error) {
	detected := mimetype.Detect(data)
	mime := detected.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}

	ext, ok := allowedImageTypes[mime]
	if !ok {
		return nil, &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only PNG, JPEG and WebP images are allowed",
		}
	}

	return &UploadedImage{
		FileName:  fileName,
		MimeType:  mime,
		Extension: ext,
		Data:      data,
	}, nil
}

// NewStorageName builds a collision-free object name for an upload
func NewStorageName(ext string) string {
	return uuid.NewString() + ext
}

// SafeJoin resolves key below baseDir, refusing keys that escape it
func SafeJoin(baseDir, key string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(key))
	if cleaned == string(filepath.Separator) {
		return "", &FileUploadError{Code: "INVALID_KEY", Message: "Invalid file key"}
	}
	return filepath.Join(baseDir, cleaned), nil
}

// SaveFile writes data to key below uploadDir, creating directories as needed
func SaveFile(uploadDir, key string, data []byte) error {
	fullPath, err := SafeJoin(uploadDir, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// GetImageURL returns the URL path for accessing a locally stored image
func GetImageURL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", strings.TrimPrefix(key, "/"))
}
