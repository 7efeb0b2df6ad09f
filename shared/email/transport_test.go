package email

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTPS is a minimal implicit-TLS SMTP server answering every AUTH
// with authReply.
type fakeSMTPS struct {
	listener  net.Listener
	authReply string
	pool      *x509.CertPool

	mu       sync.Mutex
	commands []string
	data     string
}

func startFakeSMTPS(t *testing.T, authReply string) *fakeSMTPS {
	t.Helper()

	// Borrow httptest's self-signed certificate, valid for 127.0.0.1
	hts := httptest.NewTLSServer(http.NotFoundHandler())
	t.Cleanup(hts.Close)

	pool := x509.NewCertPool()
	pool.AddCert(hts.Certificate())

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: hts.TLS.Certificates})
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	f := &fakeSMTPS{listener: ln, authReply: authReply, pool: pool}
	go f.serve()
	return f
}

func (f *fakeSMTPS) port() int {
	return f.listener.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTPS) transport() Transport {
	tr := NewSSLTransport("127.0.0.1", f.port(), "digest@example.com", "app-password", 5*time.Second).(*smtpTransport)
	tr.rootCAs = f.pool
	return tr
}

func (f *fakeSMTPS) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeSMTPS) handle(conn net.Conn) {
	defer conn.Close()
	tp := textproto.NewConn(conn)

	_ = tp.PrintfLine("220 127.0.0.1 ESMTP ready")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.Fields(line + " ")[0])

		f.mu.Lock()
		f.commands = append(f.commands, verb)
		f.mu.Unlock()

		switch verb {
		case "EHLO":
			_ = tp.PrintfLine("250-127.0.0.1")
			_ = tp.PrintfLine("250 AUTH PLAIN")
		case "AUTH":
			_ = tp.PrintfLine("%s", f.authReply)
		case "*":
			_ = tp.PrintfLine("501 5.7.0 authentication cancelled")
		case "DATA":
			_ = tp.PrintfLine("354 go ahead")
			body, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.data = string(body)
			f.mu.Unlock()
			_ = tp.PrintfLine("250 2.0.0 queued")
		case "QUIT":
			_ = tp.PrintfLine("221 2.0.0 bye")
			return
		default:
			_ = tp.PrintfLine("250 2.0.0 ok")
		}
	}
}

func (f *fakeSMTPS) seen() ([]string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...), f.data
}

func TestDeliverWrapsRejectedCredentials(t *testing.T) {
	server := startFakeSMTPS(t, "535 5.7.8 Authentication credentials invalid")

	err := server.transport().Deliver(context.Background(), "digest@example.com", []string{"reader@example.com"}, []byte("Subject: x\r\n\r\nhi\r\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)

	var tpErr *textproto.Error
	require.True(t, errors.As(err, &tpErr))
	assert.Equal(t, 535, tpErr.Code)

	commands, _ := server.seen()
	assert.NotContains(t, commands, "MAIL")
}

func TestDeliverOverImplicitTLS(t *testing.T) {
	server := startFakeSMTPS(t, "235 2.7.0 accepted")

	msg := []byte("Subject: digest\r\n\r\n<html>ok</html>\r\n")
	err := server.transport().Deliver(context.Background(), "digest@example.com", []string{"a@example.com", "b@example.com"}, msg)
	require.NoError(t, err)

	commands, data := server.seen()
	assert.Equal(t, []string{"EHLO", "AUTH", "MAIL", "RCPT", "RCPT", "DATA", "QUIT"}, commands)
	assert.Contains(t, data, "<html>ok</html>")
}

func TestDeliverNonAuthFailureIsNotErrAuth(t *testing.T) {
	server := startFakeSMTPS(t, "454 4.7.0 temporary authentication failure")

	err := server.transport().Deliver(context.Background(), "digest@example.com", []string{"reader@example.com"}, []byte("x"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuth)
	assert.Contains(t, err.Error(), strconv.Itoa(454))
}
