package impl

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// heroService implements the HeroUsecase interface.
type heroService struct {
	heroRepo repository.HeroImageRepository
	storage  service.MediaStorage
	logger   *slog.Logger
}

// HeroServiceParams holds dependencies for HeroService, injected by Fx.
type HeroServiceParams struct {
	fx.In

	HeroRepo repository.HeroImageRepository
	Storage  service.MediaStorage
	Logger   *slog.Logger
}

// NewHeroService is the constructor for heroService.
func NewHeroService(params HeroServiceParams) usecase.HeroUsecase {
	return &heroService{
		heroRepo: params.HeroRepo,
		storage:  params.Storage,
		logger:   params.Logger,
	}
}

func (srv *heroService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// List returns the carousel in display order.
func (srv *heroService) List(ctx context.Context) ([]*entity.HeroImage, error) {
	heroes, err := srv.heroRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list hero images")
	}

	return heroes, nil
}

// Create uploads the slide image and stores the slide.
func (srv *heroService) Create(ctx context.Context, input *usecase.HeroImageInput, image *entity.MediaFile) (*entity.HeroImage, error) {
	if image == nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("an image is required")
	}

	hero := &entity.HeroImage{ID: uuid.New()}
	if err := applyHeroInput(hero, input); err != nil {
		return nil, err
	}

	batch := newMediaBatch(srv.storage, mediaFolderHero, srv.log(ctx))
	ref, err := batch.upload(ctx, *image, entity.MediaKindImage)
	if err != nil {
		return nil, err
	}
	hero.Image = ref

	if err := srv.heroRepo.Create(ctx, hero); err != nil {
		batch.rollback(ctx)

		return nil, errors.Wrap(err, "failed to create hero image")
	}

	srv.log(ctx).Info("Hero image created", slog.Any("heroID", hero.ID))

	return hero, nil
}

// Update edits a slide and swaps its image when a new one is sent.
func (srv *heroService) Update(ctx context.Context, id uuid.UUID, input *usecase.HeroImageInput, image *entity.MediaFile) (*entity.HeroImage, error) {
	current, err := srv.heroRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find hero image")
	}

	updated := *current
	if err := applyHeroInput(&updated, input); err != nil {
		return nil, err
	}

	batch := newMediaBatch(srv.storage, mediaFolderHero, srv.log(ctx))
	var released []string
	if image != nil {
		ref, err := batch.upload(ctx, *image, entity.MediaKindImage)
		if err != nil {
			return nil, err
		}
		updated.Image = ref
		if current.Image.ID != "" {
			released = append(released, current.Image.ID)
		}
	}

	if err := srv.heroRepo.Update(ctx, &updated); err != nil {
		batch.rollback(ctx)

		return nil, errors.Wrap(err, "failed to update hero image")
	}

	releaseMedia(context.WithoutCancel(ctx), srv.storage, released, srv.log(ctx))

	return &updated, nil
}

// Delete releases the slide image and then removes the slide.
func (srv *heroService) Delete(ctx context.Context, id uuid.UUID) error {
	hero, err := srv.heroRepo.FindByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to find hero image")
	}

	var ids []string
	if hero.Image.ID != "" {
		ids = append(ids, hero.Image.ID)
	}
	if err := deleteOwnedMedia(ctx, srv.storage, ids); err != nil {
		return err
	}

	if err := srv.heroRepo.Delete(ctx, id); err != nil {
		srv.log(ctx).Error("Hero image released but record remains", slog.Any("heroID", id), slog.Any("error", err))

		return errors.Wrap(err, "failed to delete hero image")
	}

	return nil
}

func applyHeroInput(hero *entity.HeroImage, input *usecase.HeroImageInput) error {
	title := strings.TrimSpace(input.Title)
	if n := utf8.RuneCountInString(title); n < 1 || n > 120 {
		return domainerrors.ErrValidationFailed.WrapMessage("title must be between 1 and 120 characters")
	}
	if input.DisplayOrder < 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("display order must not be negative")
	}

	hero.Title = title
	hero.Subtitle = strings.TrimSpace(input.Subtitle)
	hero.Category = strings.TrimSpace(input.Category)
	hero.Link = strings.TrimSpace(input.Link)
	hero.DisplayOrder = input.DisplayOrder

	return nil
}
