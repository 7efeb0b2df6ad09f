package email

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"
)

// ErrAuth marks a delivery failure caused by rejected credentials
var ErrAuth = errors.New("SMTP authentication failed")

// sessionDeadline bounds a whole SMTP conversation after connecting
const sessionDeadline = time.Minute

// Transport delivers an already rendered message
type Transport interface {
	Name() string
	Deliver(ctx context.Context, from string, to []string, msg []byte) error
}

type smtpTransport struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	startTLS bool
	rootCAs  *x509.CertPool // nil uses the system pool
}

// NewSSLTransport connects with implicit TLS (SMTPS, usually port 465)
func NewSSLTransport(host string, port int, username, password string, timeout time.Duration) Transport {
	return &smtpTransport{host: host, port: port, username: username, password: password, timeout: timeout}
}

// NewStartTLSTransport connects in plain text and upgrades with STARTTLS (usually port 587)
func NewStartTLSTransport(host string, port int, username, password string, timeout time.Duration) Transport {
	return &smtpTransport{host: host, port: port, username: username, password: password, timeout: timeout, startTLS: true}
}

func (t *smtpTransport) Name() string {
	if t.startTLS {
		return "starttls:" + strconv.Itoa(t.port)
	}
	return "ssl:" + strconv.Itoa(t.port)
}

func (t *smtpTransport) Deliver(ctx context.Context, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))
	tlsConfig := &tls.Config{ServerName: t.host, RootCAs: t.rootCAs}
	netDialer := &net.Dialer{Timeout: t.timeout}

	var (
		conn net.Conn
		err  error
	)
	if t.startTLS {
		conn, err = netDialer.DialContext(ctx, "tcp", addr)
	} else {
		dialer := &tls.Dialer{NetDialer: netDialer, Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Now().Add(sessionDeadline))

	c, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer c.Close()

	if t.startTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return fmt.Errorf("server %s does not support STARTTLS", addr)
		}
		if err := c.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	if err := c.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
		if isAuthError(err) {
			return fmt.Errorf("%w: %w", ErrAuth, err)
		}
		return fmt.Errorf("SMTP AUTH failed: %w", err)
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s rejected: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("message not accepted: %w", err)
	}

	return c.Quit()
}

// isAuthError recognises the reply codes servers use for bad credentials
func isAuthError(err error) bool {
	var tpErr *textproto.Error
	if !errors.As(err, &tpErr) {
		return false
	}
	switch tpErr.Code {
	case 530, 534, 535:
		return true
	}
	return false
}
