package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var (
	ErrInvalidContentType = errors.New("content type must be video/*")
	ErrForeignURL         = errors.New("url does not point into the bucket")
)

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// ObjectURL is the permanent URL of objectKey, stored on the exercise.
	ObjectURL(objectKey string) string

	// ObjectKeyFromURL reverses ObjectURL. It fails with ErrForeignURL for
	// links that live elsewhere (e.g. YouTube).
	ObjectKeyFromURL(url string) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// VideoObjectKey builds the key of a new demonstration video for a routine,
// keeping the extension of fileName.
func VideoObjectKey(routineID, fileName, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "video/") {
		return "", ErrInvalidContentType
	}
	ext := strings.ToLower(path.Ext(fileName))
	return path.Join("routines", routineID, "videos", uuid.NewString()+ext), nil
}
