// Package services отправляет email-напоминания об истекающих подписках,
// полученные из очереди.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	smtptransport "github.com/ottmanager/subscription-tracker/internal/lib/smtp"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

// Transport описывает подключение к SMTP-серверу.
type Transport interface {
	Connect() (smtptransport.Client, error)
	GetSMTPUser() string
}

// SenderService превращает сообщения очереди напоминаний в письма.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport Transport, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendExpiryReminder разбирает сообщение очереди и отправляет напоминание
// об истекающей подписке на почту владельца.
func (s *SenderService) SendExpiryReminder(body []byte) error {
	var message models.ReminderInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if message.Email == "" {
		s.log.Warn("reminder without email, skipping",
			slog.String("service_name", message.ServiceName))
		return nil
	}

	var when string
	switch {
	case message.DaysLeft <= 0:
		when = "today"
	case message.DaysLeft == 1:
		when = "tomorrow"
	default:
		when = fmt.Sprintf("in %d days", message.DaysLeft)
	}

	to := []string{message.Email}
	subject := fmt.Sprintf("Your %s subscription expires %s", message.ServiceName, when)
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour %s subscription expires %s (%s).\n\nPlease renew it in advance.",
		message.Username, message.ServiceName, when, message.ExpiryDate.Format("2006-01-02"))

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
