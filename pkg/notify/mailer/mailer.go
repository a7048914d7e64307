// pkg/notify/mailer/mailer.go

package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"soilwatch/entities"
)

// Client is the transactional email transport. One instance is built at
// process start and shared by reference; it is never reconstructed.
type Client interface {
	Configured() bool
	Send(to, subject, htmlBody, textBody string) error
}

type smtpMailer struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	timeout time.Duration
}

func NewSMTP(host, port, user, pass, from string) Client {
	return &smtpMailer{host: host, port: port, user: user, pass: pass, from: from, timeout: 10 * time.Second}
}

func (m *smtpMailer) Configured() bool { return m.host != "" && m.from != "" }

// Send runs the whole SMTP exchange under one connection deadline so a
// stalled server cannot hang the dispatching request.
func (m *smtpMailer) Send(to, subject, htmlBody, textBody string) error {
	if !m.Configured() {
		return errors.New("mailer not configured")
	}
	msg := buildMessage(m.from, to, subject, htmlBody, textBody)

	addr := net.JoinHostPort(m.host, m.port)
	conn, err := net.DialTimeout("tcp", addr, m.timeout)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(m.timeout)); err != nil {
		conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.user != "" {
		if err := c.Auth(smtp.PlainAuth("", m.user, m.pass, m.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage assembles a multipart/alternative body so clients without
// HTML still get the plain-text fallback.
func buildMessage(from, to, subject, htmlBody, textBody string) string {
	const boundary = "soilwatch-alt"
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(textBody + "\r\n\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody + "\r\n\r\n")

	b.WriteString("--" + boundary + "--\r\n")
	return b.String()
}

// Subject and body templates keyed by alert severity.

func Subject(severity, fieldName string) string {
	if severity == entities.SeveritySevere {
		return fmt.Sprintf("URGENT: %s is critically dry", fieldName)
	}
	return fmt.Sprintf("Moisture warning for %s", fieldName)
}

func Bodies(n *entities.Notification, fieldName string) (html, text string) {
	urgency := "has dropped below your alert threshold"
	if n.Severity == entities.SeveritySevere {
		urgency = "is far below your alert threshold"
	}
	text = fmt.Sprintf("%s\n\nThe vegetation index for %s %s.\n%s\n", n.Title, fieldName, urgency, n.Message)
	html = fmt.Sprintf(
		"<h2>%s</h2><p>The vegetation index for <strong>%s</strong> %s.</p><p>%s</p>",
		n.Title, fieldName, urgency, n.Message)
	return html, text
}
