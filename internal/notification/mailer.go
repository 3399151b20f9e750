// Package notification delivers best-effort email about request lifecycle
// transitions. Delivery failures are reported to the caller, which logs and
// swallows them; a broken SMTP relay must never fail a workflow operation.
package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"os"
	"strings"
	"time"

	"aprobaciones/internal/model"
)

// Config holds SMTP settings. The mailer is disabled when any field is
// missing, mirroring how the rest of the system degrades instead of
// failing.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	FromName string
}

// ConfigFromEnv reads MAIL_* variables.
func ConfigFromEnv() Config {
	return Config{
		Host:     os.Getenv("MAIL_HOST"),
		Port:     os.Getenv("MAIL_PORT"),
		User:     os.Getenv("MAIL_USER"),
		Password: os.Getenv("MAIL_PASS"),
		From:     os.Getenv("MAIL_FROM"),
		FromName: os.Getenv("MAIL_FROM_NAME"),
	}
}

// Enabled reports whether the configuration is complete enough to send.
func (c Config) Enabled() bool {
	return c.Host != "" && c.Port != "" && c.User != "" && c.Password != "" && c.From != ""
}

// Mailer sends lifecycle notification emails over SMTP with STARTTLS.
type Mailer struct {
	cfg Config
}

// NewMailer builds a Mailer. A disabled configuration is valid; sends are
// then skipped with a log line.
func NewMailer(cfg Config) *Mailer {
	if !cfg.Enabled() {
		log.Println("[mail] incomplete MAIL_* configuration, notifications disabled")
	}
	return &Mailer{cfg: cfg}
}

// NotifyNewRequest emails the responsible party about a newly created
// request.
func (m *Mailer) NotifyNewRequest(ctx context.Context, req *model.Request) error {
	if !m.cfg.Enabled() {
		log.Printf("[mail] skipped new request notification (mailer disabled, request=%s)", req.PublicID)
		return nil
	}
	if req.Responsible == nil || req.Responsible.Email == "" {
		return fmt.Errorf("request %s has no responsible email", req.PublicID)
	}

	subject, text, html := buildNewRequestEmail(req)
	return m.send(req.Responsible.Email, subject, text, html)
}

// NotifyStatusChange emails the applicant about a decision on their
// request.
func (m *Mailer) NotifyStatusChange(ctx context.Context, req *model.Request, comment *string) error {
	if !m.cfg.Enabled() {
		log.Printf("[mail] skipped status change notification (mailer disabled, request=%s)", req.PublicID)
		return nil
	}
	if req.Applicant == nil || req.Applicant.Email == "" {
		return fmt.Errorf("request %s has no applicant email", req.PublicID)
	}

	subject, text, html := buildStatusChangeEmail(req, comment)
	return m.send(req.Applicant.Email, subject, text, html)
}

func (m *Mailer) send(to, subject, text, html string) error {
	fromHeader := m.cfg.From
	if m.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	boundary := "np-aprobaciones-boundary"
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		fmt.Sprintf(`Content-Type: multipart/alternative; boundary="%s"`, boundary),
		"",
		"--" + boundary,
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		text,
		"--" + boundary,
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		html,
		"--" + boundary + "--",
	}, "\r\n")

	log.Printf("[mail] sending to=%s via=%s:%s", to, m.cfg.Host, m.cfg.Port)
	if err := m.sendWithTimeout(to, []byte(msg)); err != nil {
		return err
	}
	log.Printf("[mail] sent to=%s", to)
	return nil
}

// sendWithTimeout dials with a TCP timeout and puts a deadline on the whole
// connection so a stalled relay cannot hang a request handler.
func (m *Mailer) sendWithTimeout(to string, msg []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	if err := c.Auth(auth); err != nil {
		return err
	}

	if err := c.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
