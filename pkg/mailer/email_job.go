package mailer

import (
	"context"

	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

// EmailJob is a templated mail to a single recipient.
type EmailJob struct {
	To       string
	Template string // base name, e.g. templates.Welcome
	Data     templates.EmailData
}

// Sender delivers a rendered message. *Mailgun implements it.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Deliver renders job and hands it to s.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	subject, text, html, err := templates.Render(job.Template, job.Data)
	if err != nil {
		return err
	}
	return s.Send(ctx, job.To, subject, text, html)
}
