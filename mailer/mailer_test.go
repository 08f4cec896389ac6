package mailer

import (
	"errors"
	"io"
	"net/smtp"
	"strings"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSMTPSendPasswordReset(t *testing.T) {
	m := NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: "2525", Username: "u", Password: "p", From: "no-reply@example.com"}, quietLogger())

	var gotAddr string
	var gotMail *email.Email
	var gotAuth smtp.Auth
	m.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		gotMail, gotAddr, gotAuth = e, addr, auth
		return nil
	}

	require.NoError(t, m.SendPasswordReset("maker@example.com", "http://localhost:3000/reset/abc"))
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, []string{"maker@example.com"}, gotMail.To)
	assert.Equal(t, "no-reply@example.com", gotMail.From)
	assert.True(t, strings.Contains(string(gotMail.Text), "http://localhost:3000/reset/abc"))
}

func TestSMTPSendFailure(t *testing.T) {
	m := NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: "25"}, quietLogger())
	m.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		assert.Nil(t, auth) // No credentials configured
		return errors.New("connection refused")
	}

	assert.Error(t, m.SendPasswordReset("maker@example.com", "http://x/reset/abc"))
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, Log{Logger: quietLogger()}.SendPasswordReset("maker@example.com", "http://x/reset/abc"))
}
