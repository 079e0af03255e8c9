package impl

import (
	"context"
	"log/slog"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"

	"github.com/pkg/errors"
)

// Storage folders per owning entity.
const (
	mediaFolderProducts = "products"
	mediaFolderContacts = "contacts"
	mediaFolderHero     = "hero"
)

// mediaBatch tracks the uploads of one operation so they can be rolled back together.
type mediaBatch struct {
	storage  service.MediaStorage
	folder   string
	uploaded []string
	logger   *slog.Logger
}

func newMediaBatch(storage service.MediaStorage, folder string, logger *slog.Logger) *mediaBatch {
	return &mediaBatch{storage: storage, folder: folder, logger: logger}
}

func (b *mediaBatch) upload(ctx context.Context, file entity.MediaFile, kind entity.MediaKind) (entity.MediaRef, error) {
	ref, err := b.storage.Upload(ctx, b.folder, file, kind)
	if err != nil {
		return entity.MediaRef{}, errors.Wrapf(err, "failed to upload %s", file.Filename)
	}
	b.uploaded = append(b.uploaded, ref.ID)

	return ref, nil
}

// rollback deletes everything uploaded so far. Failures leave orphans and are logged.
func (b *mediaBatch) rollback(ctx context.Context) {
	releaseMedia(context.WithoutCancel(ctx), b.storage, b.uploaded, b.logger)
	b.uploaded = nil
}

// releaseMedia deletes assets best-effort.
func releaseMedia(ctx context.Context, storage service.MediaStorage, ids []string, logger *slog.Logger) {
	for _, id := range ids {
		if err := storage.Delete(ctx, id); err != nil {
			logger.Error("Failed to delete media, asset orphaned", slog.String("mediaID", id), slog.Any("error", err))
		}
	}
}

// deleteOwnedMedia removes the assets of an entity about to be deleted. The first
// failure aborts so the record keeps pointing at what is left.
func deleteOwnedMedia(ctx context.Context, storage service.MediaStorage, ids []string) error {
	for _, id := range ids {
		if err := storage.Delete(ctx, id); err != nil {
			if errors.Is(err, domainerrors.ErrMediaUploadFailed) {
				return errors.Wrapf(err, "failed to delete media %s", id)
			}

			return domainerrors.ErrMediaUploadFailed.WrapMessage(err.Error())
		}
	}

	return nil
}
