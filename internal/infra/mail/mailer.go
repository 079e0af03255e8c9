// Package mail sends the transactional emails of the storefront.
package mail

import (
	"context"
	"log/slog"

	"storefront/config"
	"storefront/internal/domain/constants"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/fx"
)

// sender delivers a rendered message.
type sender interface {
	send(ctx context.Context, recipient, subject, htmlBody string) error
}

type mailer struct {
	renderer *renderer
	sender   sender
	logger   *slog.Logger
}

// Params holds dependencies for the mailer, injected by Fx.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// New picks the delivery provider from mail.provider.
func New(params Params) (service.Mailer, error) {
	cfg := params.Config.Mail
	if cfg == nil {
		cfg = &config.MailConfig{Provider: constants.MailProviderLog}
	}

	r, err := newRenderer()
	if err != nil {
		return nil, err
	}

	var s sender
	switch cfg.Provider {
	case constants.MailProviderSMTP:
		s, err = newSMTPSender(cfg)
		if err != nil {
			return nil, err
		}
		params.Logger.Info("Using SMTP mailer",
			slog.String("host", cfg.Host),
			slog.Int("port", cfg.Port),
		)
	case constants.MailProviderLog, "":
		s = &logSender{logger: params.Logger}
		params.Logger.Info("Using log mailer, emails will not be delivered")
	default:
		return nil, errors.Errorf("unknown mail provider: %s", cfg.Provider)
	}

	return &mailer{renderer: r, sender: s, logger: params.Logger}, nil
}

// Send renders template with data and delivers it to recipient.
func (m *mailer) Send(ctx context.Context, template service.MailTemplate, recipient string, data map[string]any) error {
	subject, body, err := m.renderer.render(template, data)
	if err != nil {
		return err
	}

	if err := m.sender.send(ctx, recipient, subject, body); err != nil {
		return errors.Wrapf(err, "send %s mail", template)
	}

	return nil
}

type smtpSender struct {
	client   *gomail.Client
	from     string
	fromName string
}

func newSMTPSender(cfg *config.MailConfig) (*smtpSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("mail.host and mail.from are required for smtp provider")
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create smtp client")
	}

	return &smtpSender{client: client, from: cfg.From, fromName: cfg.FromName}, nil
}

func (s *smtpSender) send(ctx context.Context, recipient, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return errors.Wrap(err, "set sender")
	}
	if err := msg.To(recipient); err != nil {
		return errors.Wrap(err, "set recipient")
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	return errors.WithStack(s.client.DialAndSendWithContext(ctx, msg))
}

// logSender writes messages to the log instead of delivering them.
type logSender struct {
	logger *slog.Logger
}

func (s *logSender) send(ctx context.Context, recipient, subject, htmlBody string) error {
	s.logger.InfoContext(ctx, "Mail not delivered (log provider)",
		slog.String("to", recipient),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(htmlBody)),
	)

	return nil
}
