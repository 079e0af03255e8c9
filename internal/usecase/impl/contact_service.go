package impl

import (
	"context"
	"fmt"
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

// contactService implements the ContactUsecase interface.
type contactService struct {
	contactRepo repository.ContactRepository
	storage     service.MediaStorage
	logger      *slog.Logger
}

// ContactServiceParams holds dependencies for ContactService, injected by Fx.
type ContactServiceParams struct {
	fx.In

	ContactRepo repository.ContactRepository
	Storage     service.MediaStorage
	Logger      *slog.Logger
}

// NewContactService is the constructor for contactService.
func NewContactService(params ContactServiceParams) usecase.ContactUsecase {
	return &contactService{
		contactRepo: params.ContactRepo,
		storage:     params.Storage,
		logger:      params.Logger,
	}
}

func (srv *contactService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Submit stores a contact-form message with up to MaxContactImages attachments.
func (srv *contactService) Submit(ctx context.Context, input *usecase.ContactInput, images []entity.MediaFile) (*entity.Contact, error) {
	contact := &entity.Contact{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(input.Name),
		Email:   normalizeEmail(input.Email),
		Subject: input.Subject,
		Message: strings.TrimSpace(input.Message),
		Status:  entity.ContactStatusNew,
	}
	if err := validateContact(contact, len(images)); err != nil {
		return nil, err
	}

	batch := newMediaBatch(srv.storage, mediaFolderContacts, srv.log(ctx))
	for _, file := range images {
		ref, err := batch.upload(ctx, file, entity.MediaKindImage)
		if err != nil {
			batch.rollback(ctx)

			return nil, err
		}
		contact.Images = append(contact.Images, ref)
	}

	if err := srv.contactRepo.Create(ctx, contact); err != nil {
		batch.rollback(ctx)

		return nil, errors.Wrap(err, "failed to create contact")
	}

	srv.log(ctx).Info("Contact request received", slog.Any("contactID", contact.ID), slog.String("subject", string(contact.Subject)))

	return contact, nil
}

func validateContact(contact *entity.Contact, imageCount int) error {
	if n := utf8.RuneCountInString(contact.Name); n < 2 || n > 100 {
		return domainerrors.ErrValidationFailed.WrapMessage("name must be between 2 and 100 characters")
	}
	if !contact.Subject.IsValid() {
		return domainerrors.ErrValidationFailed.WrapMessage(fmt.Sprintf("unknown subject %q", contact.Subject))
	}
	if n := utf8.RuneCountInString(contact.Message); n < 10 || n > 2000 {
		return domainerrors.ErrValidationFailed.WrapMessage("message must be between 10 and 2000 characters")
	}
	if imageCount > entity.MaxContactImages {
		return domainerrors.ErrValidationFailed.WrapMessage(fmt.Sprintf("at most %d images are allowed", entity.MaxContactImages))
	}

	return nil
}

// List returns contact requests newest first.
func (srv *contactService) List(ctx context.Context, status *entity.ContactStatus) ([]*entity.Contact, error) {
	if status != nil && !status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage(fmt.Sprintf("unknown status %q", *status))
	}

	contacts, err := srv.contactRepo.List(ctx, status)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list contacts")
	}

	return contacts, nil
}

// UpdateStatus moves a contact forward. Resolved contacts are removed along with their images.
func (srv *contactService) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ContactStatus) (*entity.Contact, error) {
	contact, err := srv.contactRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find contact")
	}
	if !contact.Status.CanTransitionTo(status) {
		return nil, domainerrors.ErrInvalidStatusTransition.WrapMessage(
			fmt.Sprintf("cannot move contact from %s to %s", contact.Status, status))
	}

	if status == entity.ContactStatusResolved {
		return srv.resolve(ctx, contact)
	}

	ok, err := srv.contactRepo.UpdateStatus(ctx, id, contact.Status, status)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update contact status")
	}
	if !ok {
		return nil, domainerrors.ErrConflict.WrapMessage("contact status changed concurrently")
	}

	contact.Status = status
	srv.log(ctx).Info("Contact status updated", slog.Any("contactID", id), slog.String("status", string(status)))

	return contact, nil
}

func (srv *contactService) resolve(ctx context.Context, contact *entity.Contact) (*entity.Contact, error) {
	if err := deleteOwnedMedia(ctx, srv.storage, contact.MediaIDs()); err != nil {
		srv.log(ctx).Error("Failed to release contact images", slog.Any("contactID", contact.ID), slog.Any("error", err))

		return nil, err
	}

	if err := srv.contactRepo.Delete(ctx, contact.ID); err != nil {
		srv.log(ctx).Error("Contact images released but record remains", slog.Any("contactID", contact.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to delete contact")
	}

	contact.Status = entity.ContactStatusResolved
	contact.Images = nil
	srv.log(ctx).Info("Contact resolved and deleted", slog.Any("contactID", contact.ID))

	return contact, nil
}
