package templates

import (
	"strings"
	"time"
)

// Brand is the marketplace identity stamped on every mail.
type Brand struct {
	MarketplaceName string
	SupportURL      string
}

type Option func(*EmailData)

func WithRole(role string) Option { return func(d *EmailData) { d.Role = role } }

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04 MST")
	}
}

// NewEmailData fills the brand fields, then applies opts.
func NewEmailData(b Brand, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:            strings.TrimSpace(name),
		Email:           email,
		MarketplaceName: b.MarketplaceName,
		SupportURL:      b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
