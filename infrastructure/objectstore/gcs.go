package objectstore

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/storage/v1"

	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
)

// GCSMediaStore deletes uploaded media objects from a Cloud Storage bucket.
type GCSMediaStore struct {
	service *storage.Service
	bucket  string
}

func NewGCSMediaStore(ctx context.Context, bucket string) (repository.IMediaStore, error) {
	service, err := storage.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage service: %w", err)
	}
	return &GCSMediaStore{service: service, bucket: bucket}, nil
}

// Delete removes the object at mediaRef. An already-absent object counts as
// success: the caller only cares that the object is gone.
func (s *GCSMediaStore) Delete(ctx context.Context, mediaRef string) error {
	err := s.service.Objects.Delete(s.bucket, mediaRef).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 404 {
			logger.GetLogger().WithField("object", mediaRef).Info("media object already absent")
			return nil
		}
		return fmt.Errorf("delete media object %s: %w", mediaRef, err)
	}
	return nil
}
