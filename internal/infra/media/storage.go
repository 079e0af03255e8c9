// Package media stores uploaded images and videos in a gocloud.dev blob bucket.
package media

import (
	"context"
	"io"
	"log/slog"
	"path"
	"strings"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"
	"storefront/internal/util"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

const cacheControl = "public, max-age=31536000, immutable"

var allowedTypes = map[entity.MediaKind][]string{
	entity.MediaKindImage: {"image/jpeg", "image/png", "image/webp", "image/gif"},
	entity.MediaKindVideo: {"video/mp4", "video/webm", "video/quicktime"},
}

// deniedExtensions are rejected wherever they appear in a filename, so
// "cat.php.jpg" is refused as well as "cat.php".
var deniedExtensions = map[string]bool{
	"exe": true, "bat": true, "cmd": true, "sh": true, "js": true, "php": true, "py": true,
	"jar": true, "msi": true, "dll": true, "com": true, "scr": true, "vbs": true, "ps1": true,
}

// Limits are the per-kind size ceilings in bytes.
type Limits struct {
	MaxImageSize int64
	MaxVideoSize int64
}

func (l Limits) forKind(kind entity.MediaKind) int64 {
	if kind == entity.MediaKindVideo {
		return l.MaxVideoSize
	}

	return l.MaxImageSize
}

// Storage implements service.MediaStorage on a blob bucket.
type Storage struct {
	bucket        *blob.Bucket
	publicBaseURL string
	limits        Limits
	logger        *slog.Logger
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured bucket and closes it on shutdown.
func New(params Params) (*Storage, error) {
	cfg := params.Config.Media
	if cfg == nil || cfg.BucketURL == "" {
		return nil, errors.New("media.bucketUrl is required")
	}

	bucket, err := blob.OpenBucket(context.Background(), cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open media bucket %s", cfg.BucketURL)
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return errors.WithStack(bucket.Close())
		},
	})

	params.Logger.Info("Media storage ready", slog.String("bucket", cfg.BucketURL))

	return NewStorage(bucket, cfg.PublicBaseURL, Limits{MaxImageSize: cfg.MaxImageSize, MaxVideoSize: cfg.MaxVideoSize}, params.Logger), nil
}

// NewStorage wraps an already opened bucket.
func NewStorage(bucket *blob.Bucket, publicBaseURL string, limits Limits, logger *slog.Logger) *Storage {
	return &Storage{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		limits:        limits,
		logger:        logger,
	}
}

// Upload validates file for kind and writes it under folder with a random name.
func (s *Storage) Upload(ctx context.Context, folder string, file entity.MediaFile, kind entity.MediaKind) (entity.MediaRef, error) {
	allowed, ok := allowedTypes[kind]
	if !ok {
		return entity.MediaRef{}, domainerrors.ErrInvalidMedia.WrapMessage("unknown media kind " + string(kind))
	}
	if len(file.Content) == 0 {
		return entity.MediaRef{}, domainerrors.ErrInvalidMedia.WrapMessage("file is empty")
	}
	if hasDeniedExtension(file.Filename) {
		return entity.MediaRef{}, domainerrors.ErrInvalidMedia.WrapMessage("file name is not allowed")
	}

	size := max(file.Size, int64(len(file.Content)))
	if limit := s.limits.forKind(kind); limit > 0 && size > limit {
		return entity.MediaRef{}, domainerrors.ErrMediaTooLarge.WithDetails(file.Filename + " is larger than " + util.FormatBytes(limit))
	}

	mtype := mimetype.Detect(file.Content)
	if !isAnyOf(mtype, allowed) {
		return entity.MediaRef{}, domainerrors.ErrInvalidMedia.WrapMessage("content type " + mtype.String() + " is not accepted")
	}

	key := path.Join(sanitizeFolder(folder), uuid.NewString()+mtype.Extension())
	err := s.bucket.WriteAll(ctx, key, file.Content, &blob.WriterOptions{
		ContentType:  mtype.String(),
		CacheControl: cacheControl,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Media upload failed", slog.String("key", key), slog.Any("error", err))

		return entity.MediaRef{}, domainerrors.ErrMediaUploadFailed.WrapMessage(err.Error())
	}

	return entity.MediaRef{URL: s.publicBaseURL + "/" + key, ID: key}, nil
}

// Delete removes an object. Unknown IDs are ignored.
func (s *Storage) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	if err := s.bucket.Delete(ctx, id); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}

		return errors.Wrapf(err, "delete media %s", id)
	}

	return nil
}

// Open streams a stored object; callers must close the reader.
func (s *Storage) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	r, err := s.bucket.NewReader(ctx, id, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, "", errors.WithStack(domainerrors.ErrNotFound)
		}

		return nil, "", errors.Wrapf(err, "open media %s", id)
	}

	return r, r.ContentType(), nil
}

func isAnyOf(mtype *mimetype.MIME, types []string) bool {
	for _, t := range types {
		if mtype.Is(t) {
			return true
		}
	}

	return false
}

func hasDeniedExtension(filename string) bool {
	parts := strings.Split(strings.ToLower(path.Base(filename)), ".")
	for _, ext := range parts[1:] {
		if deniedExtensions[strings.TrimSpace(ext)] {
			return true
		}
	}

	return false
}

func sanitizeFolder(folder string) string {
	cleaned := strings.Trim(path.Clean("/"+folder), "/")
	if cleaned == "" {
		return "misc"
	}

	return cleaned
}
