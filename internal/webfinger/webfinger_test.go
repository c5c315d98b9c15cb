package webfinger

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

func hostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse %q: %v", rawURL, err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("port of %q: %v", rawURL, err)
	}
	return u.Hostname(), port
}

func TestFingerprintDetectsFromHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "nginx/1.18.0")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer ts.Close()

	f, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	host, port := hostPort(t, ts.URL)
	techs, tlsInfo := f.Fingerprint(context.Background(), host, port)

	if tlsInfo != nil {
		t.Fatalf("plain HTTP fetch produced TLS details: %+v", tlsInfo)
	}
	found := false
	for _, tech := range techs {
		if strings.Contains(strings.ToLower(tech), "nginx") {
			found = true
		}
	}
	if !found {
		t.Fatalf("nginx not detected from Server header, got %v", techs)
	}
}

func TestFingerprintFailureDegrades(t *testing.T) {
	f, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// reserve a port and release it so nothing answers there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	techs, tlsInfo := f.Fingerprint(context.Background(), "127.0.0.1", port)
	if techs != nil || tlsInfo != nil {
		t.Fatalf("unreachable host returned %v / %+v, want nil enrichment", techs, tlsInfo)
	}
}

func TestTLSDetails(t *testing.T) {
	if tlsDetails(nil) != nil {
		t.Fatal("nil handshake state mapped to non-nil details")
	}

	info := tlsDetails(&tls.ConnectionState{
		Version:     tls.VersionTLS13,
		CipherSuite: tls.TLS_AES_128_GCM_SHA256,
		PeerCertificates: []*x509.Certificate{{
			Issuer:  pkix.Name{CommonName: "Example CA"},
			Subject: pkix.Name{CommonName: "example.com"},
		}},
	})
	if info.Version != "TLS 1.3" {
		t.Errorf("version = %q, want TLS 1.3", info.Version)
	}
	if info.CipherSuite != "0x1301" {
		t.Errorf("cipherSuite = %q, want 0x1301", info.CipherSuite)
	}
	if info.CertIssuer != "Example CA" || info.CertSubject != "example.com" {
		t.Errorf("cert details = %q / %q", info.CertIssuer, info.CertSubject)
	}

	old := tlsDetails(&tls.ConnectionState{
		Version:     tls.VersionTLS12,
		CipherSuite: tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	})
	if old.Version != "TLS 1.2" {
		t.Errorf("version = %q, want TLS 1.2", old.Version)
	}
	if old.CertIssuer != "" || old.CertSubject != "" {
		t.Errorf("cert details without peer certificates: %q / %q", old.CertIssuer, old.CertSubject)
	}
}
