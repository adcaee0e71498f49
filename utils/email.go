package utils

import (
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional HTML email over SMTP.
type Mailer struct {
	Host string
	Port string
	User string
	Pass string
}

func (m *Mailer) SendEmail(to, subject, body string) error {
	port, _ := strconv.Atoi(m.Port)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.User)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.Host, port, m.User, m.Pass)
	return d.DialAndSend(msg)
}
