package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub-api/internal/pkg/imaging"
	"github.com/deskhub/deskhub-api/internal/pkg/storage"
)

// OfficeRef is the slice of office state the image guards need
type OfficeRef struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	FeaturedImageID uuid.NullUUID
}

// OfficeProvider resolves office references for ownership and guard checks
type OfficeProvider interface {
	OfficeRef(ctx context.Context, id uuid.UUID) (*OfficeRef, error)
}

// Service handles image business logic
type Service struct {
	repo      Repository
	offices   OfficeProvider
	store     storage.Storage
	processor *imaging.Processor
	maxBytes  int64
}

// NewService creates image service
func NewService(repo Repository, offices OfficeProvider, store storage.Storage, processor *imaging.Processor, maxBytes int64) *Service {
	return &Service{
		repo:      repo,
		offices:   offices,
		store:     store,
		processor: processor,
		maxBytes:  maxBytes,
	}
}

// Upload validates, downsizes and stores an image under the office
func (s *Service) Upload(ctx context.Context, userID, officeID uuid.UUID, filename string, size int64, file io.Reader) (*Image, error) {
	office, err := s.offices.OfficeRef(ctx, officeID)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, ErrOfficeNotFound
	}
	if office.OwnerID != userID {
		return nil, ErrNotOfficeOwner
	}

	if !imaging.ValidateType(filename) {
		return nil, ErrInvalidImageType
	}
	if !imaging.ValidateSize(size, s.maxBytes) {
		return nil, ErrImageTooLarge
	}

	processed, err := s.processor.Process(file)
	if err != nil {
		return nil, ErrInvalidImageType
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("offices/%s/%s%s", officeID, uuid.New(), ext)

	if err := s.store.Put(ctx, key, bytes.NewReader(processed.Data), processed.ContentType); err != nil {
		return nil, err
	}

	img := &Image{
		ID:           uuid.New(),
		ResourceType: ResourceOffice,
		ResourceID:   officeID,
		Path:         key,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, img); err != nil {
		// Don't leave an orphaned object behind.
		if derr := s.store.Delete(ctx, key); derr != nil {
			log.Warn().Err(derr).Str("key", key).Msg("failed to clean up stored image")
		}
		return nil, err
	}

	img.URL = s.store.GetURL(key)
	return img, nil
}

// Delete removes an office image, enforcing the last-image and
// featured-image guards.
func (s *Service) Delete(ctx context.Context, userID, officeID, imageID uuid.UUID) error {
	office, err := s.offices.OfficeRef(ctx, officeID)
	if err != nil {
		return err
	}
	if office == nil {
		return ErrOfficeNotFound
	}
	if office.OwnerID != userID {
		return ErrNotOfficeOwner
	}

	img, err := s.repo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img == nil || img.ResourceType != ResourceOffice || img.ResourceID != officeID {
		return ErrImageNotFound
	}

	count, err := s.repo.CountByResource(ctx, ResourceOffice, officeID)
	if err != nil {
		return err
	}
	if count == 1 {
		return ErrOnlyImage
	}

	if office.FeaturedImageID.Valid && office.FeaturedImageID.UUID == imageID {
		return ErrFeaturedImage
	}

	if err := s.store.Delete(ctx, img.Path); err != nil {
		return err
	}
	return s.repo.Delete(ctx, imageID)
}

// ListByOffice returns an office's images with URLs populated
func (s *Service) ListByOffice(ctx context.Context, officeID uuid.UUID) ([]*Image, error) {
	images, err := s.repo.ListByResource(ctx, ResourceOffice, officeID)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		img.URL = s.store.GetURL(img.Path)
	}
	return images, nil
}

// PurgeByOffice deletes all of an office's images from storage and the
// database. Invoked when the office itself is removed.
func (s *Service) PurgeByOffice(ctx context.Context, officeID uuid.UUID) error {
	images, err := s.repo.ListByResource(ctx, ResourceOffice, officeID)
	if err != nil {
		return err
	}
	for _, img := range images {
		if err := s.store.Delete(ctx, img.Path); err != nil {
			log.Warn().Err(err).Str("key", img.Path).Msg("failed to delete image from storage")
		}
	}
	return s.repo.DeleteByResource(ctx, ResourceOffice, officeID)
}
