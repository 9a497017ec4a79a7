package email

import (
	"fmt"
	"net/smtp"
)

// Sender sends plain text email over SMTP.
type Sender struct {
	From     string
	Password string
	Host     string
	Port     string
}

func NewSender(from, password, host, port string) *Sender {
	return &Sender{From: from, Password: password, Host: host, Port: port}
}

// Send delivers a single message. Each call is independent; the caller
// decides whether a failure matters.
func (s *Sender) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := s.Host + ":" + s.Port

	if err := smtp.SendMail(address, auth, s.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
