package webfinger

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	wappalyzer "github.com/projectdiscovery/wappalyzergo"
)

const bodyReadLimit = 512 * 1024

// TLSInfo holds TLS and certificate details from the fetch.
type TLSInfo struct {
	Version     string `json:"version"`
	CipherSuite string `json:"cipherSuite"`
	CertIssuer  string `json:"certIssuer,omitempty"`
	CertSubject string `json:"certSubject,omitempty"`
}

// Fingerprinter identifies web technologies behind an HTTP service by
// feeding one response's headers and body to the wappalyzer ruleset.
type Fingerprinter struct {
	client *http.Client
	wapp   *wappalyzer.Wappalyze
}

// New builds a Fingerprinter. The client skips certificate verification:
// recon targets routinely present self-signed or mismatched certs.
func New() (*Fingerprinter, error) {
	wapp, err := wappalyzer.New()
	if err != nil {
		return nil, fmt.Errorf("error loading wappalyzer fingerprints: %w", err)
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}
	return &Fingerprinter{
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		wapp: wapp,
	}, nil
}

// Fingerprint fetches one page from host:port and returns the sorted
// technology names detected in it plus the TLS handshake details when
// the fetch went over HTTPS. Any failure degrades to nil results; the
// scan result simply carries no enrichment for that port.
func (f *Fingerprinter) Fingerprint(ctx context.Context, host string, port int) ([]string, *TLSInfo) {
	scheme := "http"
	if port == 443 || port == 8443 {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s:%d/", scheme, host, port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("User-Agent", "CyberX-Recon/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	tlsInfo := tlsDetails(resp.TLS)

	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyReadLimit))
	if err != nil {
		body = nil
	}

	matches := f.wapp.Fingerprint(resp.Header, body)
	if len(matches) == 0 {
		return nil, tlsInfo
	}
	techs := make([]string, 0, len(matches))
	for name := range matches {
		techs = append(techs, name)
	}
	sort.Strings(techs)
	return techs, tlsInfo
}

// tlsDetails maps a handshake state into TLSInfo; plain-HTTP responses
// carry no state and map to nil.
func tlsDetails(state *tls.ConnectionState) *TLSInfo {
	if state == nil {
		return nil
	}
	info := &TLSInfo{}
	switch state.Version {
	case tls.VersionTLS10:
		info.Version = "TLS 1.0"
	case tls.VersionTLS11:
		info.Version = "TLS 1.1"
	case tls.VersionTLS12:
		info.Version = "TLS 1.2"
	case tls.VersionTLS13:
		info.Version = "TLS 1.3"
	default:
		info.Version = "Unknown"
	}
	info.CipherSuite = fmt.Sprintf("0x%x", state.CipherSuite)
	if len(state.PeerCertificates) > 0 {
		cert := state.PeerCertificates[0]
		info.CertIssuer = cert.Issuer.CommonName
		info.CertSubject = cert.Subject.CommonName
	}
	return info
}
