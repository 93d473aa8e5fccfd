package services

import (
	"context"
	"fmt"
	"log/slog"

	"volunteermatching/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendNotification renders the template named after kind ("event_match" or
// "event_reminder") and sends it to data.Email.
func (s *emailService) SendNotification(ctx context.Context, kind domain.NotificationKind, data *domain.NotificationEmailData) error {
	if data == nil {
		return fmt.Errorf("notification email data is nil")
	}
	if data.Email == "" {
		return fmt.Errorf("volunteer %q has no contact address", data.Username)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(string(kind), data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", kind, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	s.logger.DebugContext(ctx, "notification email sent", "kind", kind, "to", data.Email, "event", data.EventName)
	return nil
}
