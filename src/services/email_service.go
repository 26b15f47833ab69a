package services

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"cryptotracker/src/config"
)

// EmailSender delivers transactional mail. There is exactly one kind today,
// the password reset link.
type EmailSender interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// NewEmailSender picks the SMTP sender when a host is configured and a
// log-only sender otherwise, so development setups work without mail
// credentials.
func NewEmailSender(cfg *config.Config, logger *logrus.Logger) EmailSender {
	if cfg.Email.Host != "" {
		return &SMTPEmailService{cfg: cfg.Email}
	}
	return &LogEmailSender{logger: logger}
}

// SMTPEmailService sends mail over plain SMTP. No mail library is used; the
// single message shape does not justify one.
type SMTPEmailService struct {
	cfg config.EmailConfig
}

func (s *SMTPEmailService) SendPasswordReset(_ context.Context, to, resetURL string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Password Reset Request\r\n\r\n"+
		"You requested a password reset.\r\n\r\n"+
		"Click the link below to reset your password (valid for 1 hour):\r\n%s\r\n\r\n"+
		"If you did not request this, you can ignore this email.\r\n",
		s.cfg.From, to, resetURL)
	addr := s.cfg.Host + ":" + s.cfg.Port
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

// LogEmailSender writes the reset link to the log instead of delivering it.
type LogEmailSender struct {
	logger *logrus.Logger
}

func (s *LogEmailSender) SendPasswordReset(_ context.Context, to, resetURL string) error {
	s.logger.WithFields(logrus.Fields{"to": to, "url": resetURL}).
		Info("SMTP not configured, logging password reset link")
	return nil
}
