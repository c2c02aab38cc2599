package image

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deskhub/deskhub-api/internal/pkg/imaging"
)

type fakeOffices struct {
	ref *OfficeRef
}

func (f *fakeOffices) OfficeRef(ctx context.Context, id uuid.UUID) (*OfficeRef, error) {
	if f.ref != nil && f.ref.ID == id {
		return f.ref, nil
	}
	return nil, nil
}

type fakeRepo struct {
	images  map[uuid.UUID]*Image
	deleted []uuid.UUID
}

func newFakeRepo(images ...*Image) *fakeRepo {
	m := make(map[uuid.UUID]*Image)
	for _, img := range images {
		m[img.ID] = img
	}
	return &fakeRepo{images: m}
}

func (f *fakeRepo) Create(ctx context.Context, img *Image) error {
	f.images[img.ID] = img
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	return f.images[id], nil
}

func (f *fakeRepo) ListByResource(ctx context.Context, rt ResourceType, resourceID uuid.UUID) ([]*Image, error) {
	var out []*Image
	for _, img := range f.images {
		if img.ResourceType == rt && img.ResourceID == resourceID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountByResource(ctx context.Context, rt ResourceType, resourceID uuid.UUID) (int, error) {
	list, _ := f.ListByResource(ctx, rt, resourceID)
	return len(list), nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.images, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) DeleteByResource(ctx context.Context, rt ResourceType, resourceID uuid.UUID) error {
	for id, img := range f.images {
		if img.ResourceType == rt && img.ResourceID == resourceID {
			delete(f.images, id)
			f.deleted = append(f.deleted, id)
		}
	}
	return nil
}

type fakeStore struct {
	deletedKeys []string
}

func (f *fakeStore) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deletedKeys = append(f.deletedKeys, key)
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) { return true, nil }
func (f *fakeStore) GetURL(key string) string                             { return "http://cdn.test/" + key }

func officeImage(officeID uuid.UUID, path string) *Image {
	return &Image{
		ID:           uuid.New(),
		ResourceType: ResourceOffice,
		ResourceID:   officeID,
		Path:         path,
		CreatedAt:    time.Now(),
	}
}

func newTestService(repo Repository, offices OfficeProvider, store *fakeStore) *Service {
	return NewService(repo, offices, store, imaging.NewProcessor(imaging.DefaultConfig()), 5_000_000)
}

func TestDeleteRejectsImageOfAnotherOffice(t *testing.T) {
	owner := uuid.New()
	officeID := uuid.New()
	otherOffice := uuid.New()
	img := officeImage(otherOffice, "other.jpg")

	svc := newTestService(newFakeRepo(img), &fakeOffices{ref: &OfficeRef{ID: officeID, OwnerID: owner}}, &fakeStore{})

	err := svc.Delete(context.Background(), owner, officeID, img.ID)
	if err != ErrImageNotFound {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestDeleteRejectsOnlyImage(t *testing.T) {
	owner := uuid.New()
	officeID := uuid.New()
	img := officeImage(officeID, "only.jpg")

	svc := newTestService(newFakeRepo(img), &fakeOffices{ref: &OfficeRef{ID: officeID, OwnerID: owner}}, &fakeStore{})

	err := svc.Delete(context.Background(), owner, officeID, img.ID)
	if err != ErrOnlyImage {
		t.Fatalf("expected ErrOnlyImage, got %v", err)
	}
}

func TestDeleteRejectsFeaturedImage(t *testing.T) {
	owner := uuid.New()
	officeID := uuid.New()
	img := officeImage(officeID, "featured.jpg")
	other := officeImage(officeID, "second.jpg")

	offices := &fakeOffices{ref: &OfficeRef{
		ID:              officeID,
		OwnerID:         owner,
		FeaturedImageID: uuid.NullUUID{UUID: img.ID, Valid: true},
	}}
	svc := newTestService(newFakeRepo(img, other), offices, &fakeStore{})

	err := svc.Delete(context.Background(), owner, officeID, img.ID)
	if err != ErrFeaturedImage {
		t.Fatalf("expected ErrFeaturedImage, got %v", err)
	}
}

func TestDeleteRejectsNonOwner(t *testing.T) {
	owner := uuid.New()
	officeID := uuid.New()
	img := officeImage(officeID, "a.jpg")

	svc := newTestService(newFakeRepo(img), &fakeOffices{ref: &OfficeRef{ID: officeID, OwnerID: owner}}, &fakeStore{})

	err := svc.Delete(context.Background(), uuid.New(), officeID, img.ID)
	if err != ErrNotOfficeOwner {
		t.Fatalf("expected ErrNotOfficeOwner, got %v", err)
	}
}

func TestDeleteRemovesImageAndStoredFile(t *testing.T) {
	owner := uuid.New()
	officeID := uuid.New()
	img := officeImage(officeID, "a.jpg")
	other := officeImage(officeID, "b.jpg")

	repo := newFakeRepo(img, other)
	store := &fakeStore{}
	svc := newTestService(repo, &fakeOffices{ref: &OfficeRef{ID: officeID, OwnerID: owner}}, store)

	if err := svc.Delete(context.Background(), owner, officeID, img.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(store.deletedKeys) != 1 || store.deletedKeys[0] != "a.jpg" {
		t.Fatalf("expected storage delete of a.jpg, got %v", store.deletedKeys)
	}
	if repo.images[img.ID] != nil {
		t.Fatal("expected image row removed")
	}
}

func TestPurgeByOfficeRemovesAllImages(t *testing.T) {
	officeID := uuid.New()
	a := officeImage(officeID, "a.jpg")
	b := officeImage(officeID, "b.jpg")

	repo := newFakeRepo(a, b)
	store := &fakeStore{}
	svc := newTestService(repo, &fakeOffices{}, store)

	if err := svc.PurgeByOffice(context.Background(), officeID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(store.deletedKeys) != 2 {
		t.Fatalf("expected 2 storage deletes, got %d", len(store.deletedKeys))
	}
	if len(repo.images) != 0 {
		t.Fatalf("expected all rows removed, got %d", len(repo.images))
	}
}
