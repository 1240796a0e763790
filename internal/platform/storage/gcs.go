package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore implements ObjectStore on a Google Cloud Storage bucket.
type GCSStore struct {
	client        *gcs.Client
	bucket        string
	publicBaseURL string
}

// NewGCSStore dials GCS and binds the store to a bucket. Credentials
// come from ADC, or from credentialsJSON when non-empty.
func NewGCSStore(ctx context.Context, bucket, publicBaseURL, credentialsJSON string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("storage: bucket name required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: new client: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: bucket %q not accessible: %w", bucket, err)
	}

	return &GCSStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Put uploads the payload and returns its public URL.
func (s *GCSStore) Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = DetectContentType(objectName, data)
	}
	if err := ValidateContentType(contentType); err != nil {
		return "", err
	}

	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	wc.Metadata = map[string]string{
		"x-goog-acl": "public-read",
	}
	if _, err := wc.Write(data); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("storage: close %s: %w", objectName, err)
	}

	return s.PublicURL(objectName), nil
}

// Delete removes an object. Missing objects are not an error.
func (s *GCSStore) Delete(ctx context.Context, objectName string) error {
	err := s.client.Bucket(s.bucket).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: delete %s: %w", objectName, err)
	}
	return nil
}

// PublicURL resolves the retrievable URL for an object name.
func (s *GCSStore) PublicURL(objectName string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + objectName
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName)
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
