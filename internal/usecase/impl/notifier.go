package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/service"

	"github.com/pkg/errors"
)

const defaultNotifyTimeout = 10 * time.Second

// notifier sends transactional email and integration events on behalf of the services.
// Both run detached from the request's cancellation but keep its values.
type notifier struct {
	mailer    service.Mailer
	publisher service.EventPublisher
	timeout   time.Duration
	logger    *slog.Logger
}

func newNotifier(mailer service.Mailer, publisher service.EventPublisher, timeout time.Duration, logger *slog.Logger) *notifier {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}

	return &notifier{
		mailer:    mailer,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger,
	}
}

func (n *notifier) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, n.logger)
}

// sendWithRetry makes at most two attempts, each bounded by the notifier timeout.
func (n *notifier) sendWithRetry(ctx context.Context, template service.MailTemplate, recipient string, data map[string]any) error {
	if n.mailer == nil {
		return errors.New("mailer is not configured")
	}

	detached := context.WithoutCancel(ctx)

	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		attemptCtx, cancel := context.WithTimeout(detached, n.timeout)
		err = n.mailer.Send(attemptCtx, template, recipient, data)
		cancel()
		if err == nil {
			return nil
		}

		n.log(ctx).Warn("Email attempt failed",
			slog.String("template", string(template)),
			slog.Int("attempt", attempt),
			slog.Any("error", err))
	}

	return errors.Wrapf(err, "failed to send %s email", template)
}

// notifyWithRetry is the best-effort form of sendWithRetry. It reports whether the
// email went out and only logs failures.
func (n *notifier) notifyWithRetry(ctx context.Context, template service.MailTemplate, recipient string, data map[string]any) bool {
	if err := n.sendWithRetry(ctx, template, recipient, data); err != nil {
		n.log(ctx).Error("Failed to send notification",
			slog.String("template", string(template)),
			slog.Any("error", err))

		return false
	}

	return true
}

// publish emits an integration event. Failures are logged only.
func (n *notifier) publish(ctx context.Context, event *service.OrderEvent) {
	if n.publisher == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.publisher.PublishOrderEvent(publishCtx, event); err != nil {
		n.log(ctx).Error("Failed to publish order event",
			slog.String("type", event.Type),
			slog.String("orderID", event.OrderID),
			slog.Any("error", err))
	}
}
