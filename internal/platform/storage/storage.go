// Package storage persists uploaded and generated files in an object
// store and resolves their public URLs.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
)

// ObjectStore writes byte blobs addressed by object names and exposes
// retrievable URLs.
type ObjectStore interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// ObjectName builds the canonical object key for a user-scoped file.
func ObjectName(userID, scope, accountID, filename string) string {
	return path.Join("users", userID, scope, accountID, filename)
}

// DetectContentType sniffs the MIME type of the payload, correcting
// office formats that sniff as zip archives.
func DetectContentType(objectName string, data []byte) string {
	mimeType := http.DetectContentType(data)
	if mimeType == "application/zip" {
		switch {
		case strings.HasSuffix(objectName, ".docx"):
			mimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		case strings.HasSuffix(objectName, ".xlsx"):
			mimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
	}
	return mimeType
}

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
}

// ValidateContentType rejects payloads outside the accepted document
// and image formats.
func ValidateContentType(contentType string) error {
	if !allowedContentTypes[contentType] {
		return fmt.Errorf("storage: unsupported file type %s", contentType)
	}
	return nil
}
