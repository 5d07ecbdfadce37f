package utils

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrMailNotConfigured = errors.New("smtp is not configured")

type EmailData struct {
	Name      string
	Message   string
	Details   map[string]string
	ActionURL string
	LogoURL   string
}

type MailConfig struct {
	From     string
	Password string
	Host     string
	Address  string
}

func (c MailConfig) Enabled() bool {
	return c.From != "" && c.Address != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer renders one of the embedded templates and sends it as an HTML
// e-mail.
type SMTPMailer struct {
	cfg       MailConfig
	templates *template.Template
	send      sendFunc
}

func NewSMTPMailer(cfg MailConfig) (*SMTPMailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}
	return &SMTPMailer{cfg: cfg, templates: tmpl, send: smtp.SendMail}, nil
}

func (m *SMTPMailer) SendEmail(emailTo string, emailSubject string, data EmailData, templateName string) error {
	if !m.cfg.Enabled() {
		return ErrMailNotConfigured
	}

	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.From,
		emailTo,
		emailSubject,
		body.String(),
	)

	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(m.cfg.Address, auth, m.cfg.From, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
