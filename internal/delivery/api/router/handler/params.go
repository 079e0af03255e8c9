package handler

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// bindAndValidate decodes the request into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("request body is malformed")
	}

	return errors.WithStack(c.Validate(req))
}

func currentUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return uuid.Nil, domainerrors.ErrUnauthorized.WrapMessage("no authenticated user on request")
	}

	return userID, nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails(name + " must be a valid UUID")
	}

	return id, nil
}

func clientInfo(c echo.Context) usecase.ClientInfo {
	return usecase.ClientInfo{
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	}
}

// boolQuery returns nil when the parameter is absent.
func boolQuery(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(name + " must be true or false")
	}

	return &v, nil
}

func limitQuery(c echo.Context, fallback, ceiling int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		return fallback, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > ceiling {
		return 0, domainerrors.ErrValidationFailed.WithDetails("limit must be between 1 and " + strconv.Itoa(ceiling))
	}

	return limit, nil
}

func moneyField(c echo.Context, name string, required bool) (*entity.Money, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		if required {
			return nil, domainerrors.ErrValidationFailed.WithDetails(name + " is required")
		}

		return nil, nil
	}

	amount, err := entity.ParseMoney(raw)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(name + " must be an amount with at most two decimals")
	}

	return &amount, nil
}

func boolField(c echo.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return false, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domainerrors.ErrValidationFailed.WithDetails(name + " must be true or false")
	}

	return v, nil
}

// formFiles reads every upload sent under field. A request that is not multipart yields none.
func formFiles(c echo.Context, field string) ([]entity.MediaFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	headers := form.File[field]
	files := make([]entity.MediaFile, 0, len(headers))
	for _, header := range headers {
		file, err := readUpload(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, nil
}

// formFile reads the first upload sent under field, or nil.
func formFile(c echo.Context, field string) (*entity.MediaFile, error) {
	files, err := formFiles(c, field)
	if err != nil || len(files) == 0 {
		return nil, err
	}

	return &files[0], nil
}

func readUpload(header *multipart.FileHeader) (entity.MediaFile, error) {
	src, err := header.Open()
	if err != nil {
		return entity.MediaFile{}, domainerrors.ErrInvalidMedia.WrapMessage("cannot open " + header.Filename)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return entity.MediaFile{}, domainerrors.ErrInvalidMedia.WrapMessage("cannot read " + header.Filename)
	}

	return entity.MediaFile{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  content,
	}, nil
}
