package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

type captureSender struct {
	to, subject, text, html string
	err                     error
}

func (c *captureSender) Send(_ context.Context, to, subject, text, html string) error {
	c.to, c.subject, c.text, c.html = to, subject, text, html
	return c.err
}

func TestDeliver(t *testing.T) {
	s := &captureSender{}
	job := EmailJob{
		To:       "lee@example.com",
		Template: templates.Welcome,
		Data:     templates.NewEmailData(templates.Brand{MarketplaceName: "CodeMarket"}, "Lee", "lee@example.com"),
	}
	if err := Deliver(context.Background(), s, job); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if s.to != "lee@example.com" || s.subject != "Welcome to CodeMarket" {
		t.Fatalf("sent to=%q subject=%q", s.to, s.subject)
	}
	if !strings.Contains(s.html, "Welcome, Lee!") {
		t.Fatalf("html = %q", s.html)
	}
}

func TestDeliver_Errors(t *testing.T) {
	s := &captureSender{}
	if err := Deliver(context.Background(), s, EmailJob{To: "x@example.com", Template: "missing"}); err == nil {
		t.Fatal("expected render error")
	}
	if s.to != "" {
		t.Fatal("nothing should be sent when rendering fails")
	}

	boom := errors.New("mailgun down")
	s = &captureSender{err: boom}
	err := Deliver(context.Background(), s, EmailJob{To: "x@example.com", Template: templates.PasswordChanged})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
