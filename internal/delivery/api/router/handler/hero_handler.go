package handler

import (
	"net/http"

	"storefront/internal/delivery/api/response"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type heroImageRequest struct {
	Title        string `form:"title" validate:"required,min=2,max=120"`
	Subtitle     string `form:"subtitle" validate:"max=200"`
	Category     string `form:"category" validate:"max=60"`
	Link         string `form:"link" validate:"max=500"`
	DisplayOrder int    `form:"display_order" validate:"min=0,max=1000"`
}

func (r *heroImageRequest) toInput() *usecase.HeroImageInput {
	return &usecase.HeroImageInput{
		Title:        r.Title,
		Subtitle:     r.Subtitle,
		Category:     r.Category,
		Link:         r.Link,
		DisplayOrder: r.DisplayOrder,
	}
}

// HeroHandler serves the landing-page carousel.
type HeroHandler struct {
	uc usecase.HeroUsecase
}

// NewHeroHandler is the constructor for HeroHandler, injected by Fx.
func NewHeroHandler(uc usecase.HeroUsecase) *HeroHandler {
	return &HeroHandler{uc: uc}
}

// List returns the slides in display order.
func (h *HeroHandler) List(c echo.Context) error {
	heroes, err := h.uc.List(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]*HeroImageResponse, 0, len(heroes))
	for _, hero := range heroes {
		out = append(out, toHeroImageResponse(hero))
	}

	return response.Success(c, http.StatusOK, out)
}

// Create stores a slide. The "image" part is required.
func (h *HeroHandler) Create(c echo.Context) error {
	var req heroImageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	image, err := formFile(c, fieldImage)
	if err != nil {
		return err
	}

	hero, err := h.uc.Create(c.Request().Context(), req.toInput(), image)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toHeroImageResponse(hero))
}

// Update edits a slide and replaces its image when one is sent.
func (h *HeroHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req heroImageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	image, err := formFile(c, fieldImage)
	if err != nil {
		return err
	}

	hero, err := h.uc.Update(c.Request().Context(), id, req.toInput(), image)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toHeroImageResponse(hero))
}

// Delete removes a slide and its image.
func (h *HeroHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
