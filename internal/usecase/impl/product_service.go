package impl

import (
	"context"
	"log/slog"
	"strings"

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

// productService implements the ProductUsecase interface.
type productService struct {
	productRepo repository.ProductRepository
	storage     service.MediaStorage
	logger      *slog.Logger
}

// ProductServiceParams holds dependencies for ProductService, injected by Fx.
type ProductServiceParams struct {
	fx.In

	ProductRepo repository.ProductRepository
	Storage     service.MediaStorage
	Logger      *slog.Logger
}

// NewProductService is the constructor for productService.
func NewProductService(params ProductServiceParams) usecase.ProductUsecase {
	return &productService{
		productRepo: params.ProductRepo,
		storage:     params.Storage,
		logger:      params.Logger,
	}
}

func (srv *productService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListProducts returns the catalog, featured first.
func (srv *productService) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	products, err := srv.productRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return products, nil
}

// GetProduct returns one product.
func (srv *productService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find product")
	}

	return product, nil
}

// CreateProduct uploads the media and stores the product. Uploads are deleted again
// when anything after them fails.
func (srv *productService) CreateProduct(ctx context.Context, input *usecase.ProductInput, media *usecase.ProductMedia) (*entity.Product, error) {
	if media == nil || media.Image == nil {
		return nil, domainerrors.ErrInvalidProduct.WrapMessage("a primary image is required")
	}

	product := &entity.Product{ID: uuid.New()}
	applyProductInput(product, input)
	product.AdditionalImages = make([]entity.MediaRef, len(media.AdditionalImages))

	if err := product.Validate(); err != nil {
		return nil, errors.WithStack(domainerrors.ErrInvalidProduct.WithDetails(err.Error()))
	}

	batch := newMediaBatch(srv.storage, mediaFolderProducts, srv.log(ctx))
	if err := srv.uploadProductMedia(ctx, batch, product, media); err != nil {
		batch.rollback(ctx)

		return nil, err
	}

	if err := srv.productRepo.Create(ctx, product); err != nil {
		batch.rollback(ctx)

		return nil, errors.Wrap(err, "failed to create product")
	}

	srv.log(ctx).Info("Product created", slog.Any("productID", product.ID), slog.String("name", product.Name))

	return product, nil
}

// UpdateProduct edits a product, swapping any media sent with the request. Replaced
// assets are released only after the record points at the new ones.
func (srv *productService) UpdateProduct(ctx context.Context, id uuid.UUID, input *usecase.ProductInput, media *usecase.ProductMedia) (*entity.Product, error) {
	if media == nil {
		media = &usecase.ProductMedia{}
	}

	current, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find product")
	}

	updated := *current
	applyProductInput(&updated, input)
	if len(media.AdditionalImages) > 0 {
		updated.AdditionalImages = make([]entity.MediaRef, len(media.AdditionalImages))
	}

	if err := updated.Validate(); err != nil {
		return nil, errors.WithStack(domainerrors.ErrInvalidProduct.WithDetails(err.Error()))
	}

	var released []string
	if media.Image != nil && current.Image.ID != "" {
		released = append(released, current.Image.ID)
	}
	if len(media.AdditionalImages) > 0 {
		for _, img := range current.AdditionalImages {
			if img.ID != "" {
				released = append(released, img.ID)
			}
		}
	}
	if (media.Video != nil || media.RemoveVideo) && current.Video != nil && current.Video.ID != "" {
		released = append(released, current.Video.ID)
	}
	if media.Video == nil && media.RemoveVideo {
		updated.Video = nil
	}

	batch := newMediaBatch(srv.storage, mediaFolderProducts, srv.log(ctx))
	if err := srv.uploadProductMedia(ctx, batch, &updated, media); err != nil {
		batch.rollback(ctx)

		return nil, err
	}

	if err := srv.productRepo.Update(ctx, &updated); err != nil {
		batch.rollback(ctx)

		return nil, errors.Wrap(err, "failed to update product")
	}

	releaseMedia(context.WithoutCancel(ctx), srv.storage, released, srv.log(ctx))
	srv.log(ctx).Info("Product updated", slog.Any("productID", id), slog.Int("releasedMedia", len(released)))

	return &updated, nil
}

// DeleteProduct releases the product's media and then removes the record.
func (srv *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to find product")
	}

	if err := deleteOwnedMedia(ctx, srv.storage, product.MediaIDs()); err != nil {
		srv.log(ctx).Error("Failed to release product media", slog.Any("productID", id), slog.Any("error", err))

		return err
	}

	if err := srv.productRepo.Delete(ctx, id); err != nil {
		srv.log(ctx).Error("Product media released but record remains", slog.Any("productID", id), slog.Any("error", err))

		return errors.Wrap(err, "failed to delete product")
	}

	srv.log(ctx).Info("Product deleted", slog.Any("productID", id))

	return nil
}

// uploadProductMedia stores every file in media and points product at the results.
func (srv *productService) uploadProductMedia(ctx context.Context, batch *mediaBatch, product *entity.Product, media *usecase.ProductMedia) error {
	if media.Image != nil {
		ref, err := batch.upload(ctx, *media.Image, entity.MediaKindImage)
		if err != nil {
			return err
		}
		product.Image = ref
	}

	if len(media.AdditionalImages) > 0 {
		refs := make([]entity.MediaRef, 0, len(media.AdditionalImages))
		for _, file := range media.AdditionalImages {
			ref, err := batch.upload(ctx, file, entity.MediaKindImage)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}
		product.AdditionalImages = refs
	}

	if media.Video != nil {
		ref, err := batch.upload(ctx, *media.Video, entity.MediaKindVideo)
		if err != nil {
			return err
		}
		product.Video = &ref
	}

	return nil
}

func applyProductInput(product *entity.Product, input *usecase.ProductInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price
	product.DiscountPrice = input.DiscountPrice
	product.Category = input.Category
	product.InStock = input.InStock
	product.Featured = input.Featured
}
