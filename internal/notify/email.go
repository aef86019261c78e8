package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
)

// SendGridSender отправляет письма через SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

func NewSendGridSender(cfg config.EmailConfig, logger *zap.Logger) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: ошибка отправки письма: %v", domain.ErrExternalService, err)
	}

	if response.StatusCode >= 400 {
		s.logger.Warn("почтовый сервис вернул ошибку",
			zap.Int("status", response.StatusCode),
			zap.String("to", toEmail),
		)
		return fmt.Errorf("%w: почтовый сервис вернул статус %d", domain.ErrExternalService, response.StatusCode)
	}

	return nil
}
