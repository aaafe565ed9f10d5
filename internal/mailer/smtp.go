package mailer

import (
	"fmt"

	"secure-login/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers one-time codes over SMTP. It satisfies
// usecase.Notifier.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func NewSMTPMailer(config utils.EmailConfig, log *zap.Logger) *SMTPMailer {
	dialer := gomail.NewDialer(config.Host, config.Port, config.User, config.Password)
	return &SMTPMailer{
		dialer: dialer,
		from:   config.From,
		log:    log.With(zap.String("component", "mailer")),
	}
}

// SendOTP emails the plaintext code to the user's registered address.
func (m *SMTPMailer) SendOTP(email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your Login OTP")
	msg.SetBody("text/plain", fmt.Sprintf("Your OTP is: %s. It expires in 5 minutes.", code))

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error("Failed to send OTP email",
			zap.Error(err),
			zap.String("email", email),
		)
		return fmt.Errorf("send OTP email to %s: %w", email, err)
	}

	m.log.Info("OTP email sent", zap.String("email", email))
	return nil
}
