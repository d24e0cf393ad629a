package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/utils"
	"go.uber.org/zap"
)

// ImageService stores inspiration images ahead of order creation
type ImageService interface {
	// UploadInspiration validates and stores an image for ownerID and returns
	// the reference an order can attach
	UploadInspiration(ctx context.Context, ownerID string, fileHeader *multipart.FileHeader) (*InspirationRef, error)

	// OwnsImage reports whether key was uploaded by ownerID
	OwnsImage(ownerID, key string) bool

	// GetImageURL generates a URL for accessing an uploaded image
	GetImageURL(ctx context.Context, key string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, key string) error
}

// StoredImageService implements ImageService over an ObjectStore
type StoredImageService struct {
	store ObjectStore
}

var imageServiceInstance ImageService

// InitImageService initializes the image service over the given storage backend
func InitImageService(store ObjectStore) ImageService {
	imageServiceInstance = &StoredImageService{store: store}
	return imageServiceInstance
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

func inspirationPrefix(ownerID string) string {
	return fmt.Sprintf("inspirations/%s/", ownerID)
}

func (s *StoredImageService) UploadInspiration(ctx context.Context, ownerID string, fileHeader *multipart.FileHeader) (*InspirationRef, error) {
	image, err := utils.ReadImageFile(fileHeader)
	if err != nil {
		return nil, err
	}

	key := inspirationPrefix(ownerID) + utils.NewStorageName(image.Extension)
	if err := s.store.Put(ctx, key, image.MimeType, image.Reader()); err != nil {
		logger.Log.Error("failed to store inspiration image", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	logger.Log.Info("inspiration image stored",
		zap.String("key", key),
		zap.String("mime_type", image.MimeType),
		zap.Int64("size_bytes", image.Size()),
	)
	return &InspirationRef{
		Path:      key,
		FileName:  image.FileName,
		SizeBytes: image.Size(),
		MimeType:  image.MimeType,
	}, nil
}

func (s *StoredImageService) OwnsImage(ownerID, key string) bool {
	return ownerID != "" && strings.HasPrefix(key, inspirationPrefix(ownerID)) && !strings.Contains(key, "..")
}

func (s *StoredImageService) GetImageURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.store.URL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

func (s *StoredImageService) DeleteImage(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
