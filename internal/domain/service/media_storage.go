package service

import (
	"context"

	"storefront/internal/domain/entity"
)

// MediaStorage stores uploaded assets and returns stable references to them.
type MediaStorage interface {
	// Upload validates file against the rules for kind and stores it under folder.
	Upload(ctx context.Context, folder string, file entity.MediaFile, kind entity.MediaKind) (entity.MediaRef, error)

	// Delete removes an asset by its storage ID. Missing assets are not an error.
	Delete(ctx context.Context, id string) error
}
