package handler

import (
	"net/http"
	"strings"

	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Multipart fields of a product create or update.
const (
	fieldImage            = "image"
	fieldAdditionalImages = "additional_images"
	fieldVideo            = "video"
)

// ProductHandler serves the catalog and its administration.
type ProductHandler struct {
	uc usecase.ProductUsecase
}

// NewProductHandler is the constructor for ProductHandler, injected by Fx.
func NewProductHandler(uc usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// ListProducts supports ?category=, ?featured= and ?in_stock= filters.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	var filter entity.ProductFilter

	if raw := strings.TrimSpace(c.QueryParam("category")); raw != "" {
		category := entity.Category(raw)
		if !category.IsValid() {
			return domainerrors.ErrValidationFailed.WithDetails("category is not a known category")
		}
		filter.Category = &category
	}

	featured, err := boolQuery(c, "featured")
	if err != nil {
		return err
	}
	filter.Featured = featured

	inStock, err := boolQuery(c, "in_stock")
	if err != nil {
		return err
	}
	filter.InStock = inStock

	products, err := h.uc.ListProducts(c.Request().Context(), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProductResponses(products))
}

// GetProduct returns one catalog entry.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProductResponse(product))
}

// CreateProduct accepts a multipart form with the product fields and its media.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	input, err := productInputFromForm(c)
	if err != nil {
		return err
	}

	media, err := productMediaFromForm(c)
	if err != nil {
		return err
	}

	product, err := h.uc.CreateProduct(c.Request().Context(), input, media)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toProductResponse(product))
}

// UpdateProduct replaces the product fields. Media parts are optional.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	input, err := productInputFromForm(c)
	if err != nil {
		return err
	}

	media, err := productMediaFromForm(c)
	if err != nil {
		return err
	}

	product, err := h.uc.UpdateProduct(c.Request().Context(), id, input, media)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProductResponse(product))
}

// DeleteProduct removes a product and its media.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func productInputFromForm(c echo.Context) (*usecase.ProductInput, error) {
	price, err := moneyField(c, "price", true)
	if err != nil {
		return nil, err
	}

	discount, err := moneyField(c, "discount_price", false)
	if err != nil {
		return nil, err
	}

	inStock, err := boolField(c, "in_stock")
	if err != nil {
		return nil, err
	}

	featured, err := boolField(c, "featured")
	if err != nil {
		return nil, err
	}

	return &usecase.ProductInput{
		Name:          strings.TrimSpace(c.FormValue("name")),
		Description:   strings.TrimSpace(c.FormValue("description")),
		Price:         *price,
		DiscountPrice: discount,
		Category:      entity.Category(strings.TrimSpace(c.FormValue("category"))),
		InStock:       inStock,
		Featured:      featured,
	}, nil
}

func productMediaFromForm(c echo.Context) (*usecase.ProductMedia, error) {
	image, err := formFile(c, fieldImage)
	if err != nil {
		return nil, err
	}

	additional, err := formFiles(c, fieldAdditionalImages)
	if err != nil {
		return nil, err
	}

	video, err := formFile(c, fieldVideo)
	if err != nil {
		return nil, err
	}

	removeVideo, err := boolField(c, "remove_video")
	if err != nil {
		return nil, err
	}

	return &usecase.ProductMedia{
		Image:            image,
		AdditionalImages: additional,
		Video:            video,
		RemoveVideo:      removeVideo,
	}, nil
}
