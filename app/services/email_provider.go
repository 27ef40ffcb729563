package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/freightdeck/campaign-engine/config"
)

// SMTPEmailProvider sends campaign email through a configured SMTP relay
type SMTPEmailProvider struct {
	cfg *config.EmailConfig
}

// NewSMTPEmailProvider creates an SMTP-backed email provider
func NewSMTPEmailProvider(cfg *config.EmailConfig) EmailProvider {
	return &SMTPEmailProvider{cfg: cfg}
}

func (p *SMTPEmailProvider) SendEmail(email, subject, htmlBody, textBody string) error {
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	var auth smtp.Auth
	if p.cfg.Username != "" {
		auth = smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	}

	msg := p.buildMessage(email, subject, htmlBody, textBody)

	if !p.cfg.UseTLS {
		return smtp.SendMail(addr, auth, p.cfg.FromEmail, []string{email}, msg)
	}

	// SendMail only upgrades via STARTTLS; implicit TLS needs an explicit dial
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: p.cfg.Host})
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}

	client, err := smtp.NewClient(conn, p.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}
	if err := client.Mail(p.cfg.FromEmail); err != nil {
		return err
	}
	if err := client.Rcpt(email); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func (p *SMTPEmailProvider) buildMessage(email, subject, htmlBody, textBody string) []byte {
	var b strings.Builder

	from := p.cfg.FromEmail
	if p.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", p.cfg.FromName, p.cfg.FromEmail)
	}

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + email + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if htmlBody != "" {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(htmlBody)
	} else {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(textBody)
	}

	return []byte(b.String())
}
