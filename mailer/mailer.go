// Package mailer delivers password reset links.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Mailer sends the reset link for an account.
type Mailer interface {
	SendPasswordReset(to, link string) error
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTP sends mail through an SMTP relay.
type SMTP struct {
	cfg    SMTPConfig
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSMTP creates a new SMTP mailer
func NewSMTP(cfg SMTPConfig, logger *logrus.Logger) *SMTP {
	return &SMTP{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (s *SMTP) SendPasswordReset(to, link string) error {
	e := resetEmail(s.cfg.From, to, link)

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send password reset email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// Log writes reset links to the log instead of mailing them.
type Log struct {
	Logger *logrus.Logger
}

func (l Log) SendPasswordReset(to, link string) error {
	l.Logger.WithFields(logrus.Fields{"to": to, "link": link}).Info("password reset requested (mail disabled)")
	return nil
}

func resetEmail(from, to, link string) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = "Reset your password on 3D Plasticity"
	e.Text = []byte(fmt.Sprintf(
		"You are receiving this email because you (or someone else) have requested the reset of the password for your account.\n\n"+
			"Please click on the following link, or paste this into your browser to complete the process:\n\n"+
			"%s\n\n"+
			"If you did not request this, please ignore this email and your password will remain unchanged.\n",
		link,
	))
	return e
}
