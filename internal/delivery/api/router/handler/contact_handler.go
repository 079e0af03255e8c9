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

type contactRequest struct {
	Name    string `form:"name" validate:"required,min=2,max=80"`
	Email   string `form:"email" validate:"required,email"`
	Subject string `form:"subject" validate:"required,oneof=general order commission collaboration feedback"`
	Message string `form:"message" validate:"required,min=10,max=2000"`
}

type contactStatusRequest struct {
	Status entity.ContactStatus `json:"status" validate:"required,oneof=read replied resolved"`
}

// ContactHandler serves the public contact form and its back-office queue.
type ContactHandler struct {
	uc usecase.ContactUsecase
}

// NewContactHandler is the constructor for ContactHandler, injected by Fx.
func NewContactHandler(uc usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{uc: uc}
}

// Submit accepts the contact form with up to three images under "images".
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	images, err := formFiles(c, "images")
	if err != nil {
		return err
	}

	contact, err := h.uc.Submit(c.Request().Context(), &usecase.ContactInput{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: entity.ContactSubject(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}, images)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toContactResponse(contact))
}

// List returns contacts, optionally narrowed by ?status=.
func (h *ContactHandler) List(c echo.Context) error {
	var status *entity.ContactStatus
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		s := entity.ContactStatus(raw)
		if !s.IsValid() {
			return domainerrors.ErrValidationFailed.WithDetails("status is not a known contact status")
		}
		status = &s
	}

	contacts, err := h.uc.List(c.Request().Context(), status)
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]*ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, toContactResponse(contact))
	}

	return response.Success(c, http.StatusOK, out)
}

// UpdateStatus moves a contact forward. Resolved contacts are deleted.
func (h *ContactHandler) UpdateStatus(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req contactStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	contact, err := h.uc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toContactResponse(contact))
}
