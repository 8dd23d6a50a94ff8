package templates

import (
	"time"

	"github.com/oksasatya/go-social-crud/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// NewBaseEmailData fills the shared fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		RecipientEmail: recipient,
		Type:           typ,
		CompanyName:    cfg.CompanyName,
		AppName:        cfg.AppName,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewNotificationData(cfg *config.Config, name, recipient, content string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, Notification, name, recipient, opts...)
	d.Content = content
	return ToMap(d)
}
