package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"shopledger/internal/domain/notifications"
	"shopledger/internal/platform/config"
)

const (
	dialTimeout     = 10 * time.Second
	implicitTLSPort = 465
)

var ErrInvalidAddress = errors.New("invalid email address")

type discard struct{}

func (discard) Send(context.Context, string, string, string, string) error { return nil }

// Relay delivers plain-text notification mail through a single SMTP server.
type Relay struct {
	Host     string
	Port     int
	Username string
	Password string
	// StartTLS upgrades a plain connection. Port 465 always uses implicit TLS.
	StartTLS bool

	now func() time.Time
}

// New returns a Relay when mail is enabled and a host is configured, otherwise a sender that drops everything.
func New(cfg config.Config) notifications.Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return discard{}
	}
	return &Relay{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		StartTLS: cfg.SMTPUseTLS,
		now:      time.Now,
	}
}

func (r *Relay) Send(ctx context.Context, from, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	sender, err := mail.ParseAddress(from)
	if err != nil {
		return fmt.Errorf("%w: from %q", ErrInvalidAddress, from)
	}
	rcpt, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("%w: to %q", ErrInvalidAddress, to)
	}

	conn, err := r.dial(ctx)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	client, err := smtp.NewClient(conn, r.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer client.Close()

	stamp := time.Now
	if r.now != nil {
		stamp = r.now
	}
	msg := compose(sender, rcpt, subject, body, stamp())
	return r.deliver(client, sender.Address, rcpt.Address, msg)
}

func (r *Relay) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
	if r.Port == implicitTLSPort {
		d := tls.Dialer{NetDialer: &net.Dialer{Timeout: dialTimeout}, Config: &tls.Config{ServerName: r.Host}}
		return d.DialContext(ctx, "tcp", addr)
	}
	d := net.Dialer{Timeout: dialTimeout}
	return d.DialContext(ctx, "tcp", addr)
}

func (r *Relay) deliver(client *smtp.Client, from, to string, msg []byte) error {
	if r.StartTLS && r.Port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: r.Host}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}
	if r.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", r.Username, r.Password, r.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if err := writeAll(w, msg); err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	return client.Quit()
}

func writeAll(w io.WriteCloser, msg []byte) error {
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func compose(from, to *mail.Address, subject, body string, at time.Time) []byte {
	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", from.String())
	header("To", to.String())
	header("Subject", oneLine(subject))
	header("Date", at.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="UTF-8"`)
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}

// oneLine keeps user-controlled text such as product names inside a single header.
func oneLine(value string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(value)), " ")
}
