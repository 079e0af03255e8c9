package mail

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"storefront/internal/domain/service"
	"storefront/internal/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

var knownTemplates = []service.MailTemplate{
	service.MailTemplateVerificationCode,
	service.MailTemplateWelcome,
	service.MailTemplateOrderConfirmation,
	service.MailTemplateDelivery,
	service.MailTemplateAdminOrderAlert,
}

// renderer turns a named template and its data into a subject and HTML body.
type renderer struct {
	templates map[service.MailTemplate]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{templates: make(map[service.MailTemplate]*template.Template, len(knownTemplates))}

	for _, name := range knownTemplates {
		tmpl, err := template.New(string(name)).
			Option("missingkey=zero").
			ParseFS(templateFS, "templates/"+string(name)+".html")
		if err != nil {
			return nil, errors.Wrapf(err, "parse mail template %s", name)
		}
		r.templates[name] = tmpl
	}

	return r, nil
}

func (r *renderer) render(name service.MailTemplate, data map[string]any) (subject, body string, err error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", "", errors.Errorf("unknown mail template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "subject", data); err != nil {
		return "", "", errors.Wrapf(err, "render %s subject", name)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := tmpl.ExecuteTemplate(&buf, "body", data); err != nil {
		return "", "", errors.Wrapf(err, "render %s body", name)
	}

	return subject, buf.String(), nil
}
