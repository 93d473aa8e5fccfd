package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// NotificationEmailData holds data for the event_match and event_reminder emails.
type NotificationEmailData struct {
	Email     string
	Username  string
	EventName string
	EventDate string
	Location  string
	Message   string
	Score     float64
}

// EmailService sends notification emails to volunteers.
type EmailService interface {
	SendNotification(ctx context.Context, kind NotificationKind, data *NotificationEmailData) error
}
