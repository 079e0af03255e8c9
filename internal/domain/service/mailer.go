package service

import "context"

// MailTemplate names a transactional email.
type MailTemplate string

const (
	MailTemplateVerificationCode  MailTemplate = "verification-code"
	MailTemplateWelcome           MailTemplate = "welcome"
	MailTemplateOrderConfirmation MailTemplate = "order-confirmation"
	MailTemplateDelivery          MailTemplate = "delivery"
	MailTemplateAdminOrderAlert   MailTemplate = "admin-order-alert"
)

// Mailer sends transactional email rendered from a named template.
type Mailer interface {
	Send(ctx context.Context, template MailTemplate, recipient string, data map[string]any) error
}
