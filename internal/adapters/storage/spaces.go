package storage

import (
	"DriverHelper/internal/core/ports"
	"DriverHelper/internal/shared/config"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// spacesStorage implements DocumentStorage against any S3-compatible
// endpoint (DigitalOcean Spaces in production).
type spacesStorage struct {
	client *minio.Client
	bucket string
	// publicBase is the URL prefix objects are reachable under.
	publicBase string
	log        zerolog.Logger
}

var _ ports.DocumentStorage = (*spacesStorage)(nil) // Ensure compliance

// NewSpacesStorage connects to the configured bucket.
func NewSpacesStorage(cfg *config.StorageConfig, baseLogger *zerolog.Logger) (ports.DocumentStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object storage: %w", err)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	return &spacesStorage{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
		log:        baseLogger.With().Str("component", "spaces_storage").Logger(),
	}, nil
}

// Upload stores the document under a random key and returns its public
// URL. The hint keeps keys human-readable when browsing the bucket.
func (s *spacesStorage) Upload(ctx context.Context, data []byte, keyHint string, contentType string) (string, error) {
	key := fmt.Sprintf("drivers/%s-%s", uuid.NewString(), keyHint)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to upload document")
		return "", err
	}

	url := s.publicBase + "/" + key
	s.log.Info().Str("key", key).Int("size", len(data)).Msg("Document uploaded")
	return url, nil
}

// Delete removes a previously uploaded document. Unknown URLs are a
// no-op.
func (s *spacesStorage) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicBase+"/")
	if !ok {
		s.log.Warn().Str("url", url).Msg("Delete called with a URL outside our bucket")
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to delete document")
		return err
	}
	return nil
}
