package servicedetect

import (
	"context"
	"strings"
	"time"
)

// bannerReadCap bounds how many bytes one banner read may accumulate.
const bannerReadCap = 1024

// probes maps a port to the bytes sent after connecting. A nil entry
// means the service banners on its own and must not be poked (SSH, FTP,
// POP3, IMAP, MySQL, PostgreSQL). Ports not in the table get a bare CRLF.
var probes = map[int][]byte{
	80:   []byte("GET / HTTP/1.0\r\n\r\n"),
	8080: []byte("GET / HTTP/1.0\r\n\r\n"),
	25:   []byte("EHLO recon.local\r\n"),
	21:   nil,
	22:   nil,
	110:  nil,
	143:  nil,
	3306: nil,
	5432: nil,
}

var defaultProbe = []byte("\r\n")

// probeFor returns the probe bytes for a port, which may be empty.
func probeFor(port int) []byte {
	if b, ok := probes[port]; ok {
		return b
	}
	return defaultProbe
}

// grabBanner opens a second connection to an already-confirmed-open port
// and collects whatever the service says, up to bannerReadCap bytes or
// the banner timeout, whichever comes first. An empty return is the
// normal "no banner" outcome, not a failure.
func (s *Scanner) grabBanner(ctx context.Context, addr string, port int) string {
	timeout := s.bannerTimeout()
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	conn, err := s.dial(dialCtx, "tcp", addr)
	cancel()
	if err != nil {
		return ""
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(timeout))

	if probe := probeFor(port); len(probe) > 0 {
		if _, err := conn.Write(probe); err != nil {
			return ""
		}
	}

	collected := make([]byte, 0, bannerReadCap)
	buf := make([]byte, 256)
	for len(collected) < bannerReadCap {
		n, err := conn.Read(buf)
		if n > 0 {
			collected = append(collected, buf[:n]...)
		}
		if err != nil {
			break
		}
	}
	if len(collected) > bannerReadCap {
		collected = collected[:bannerReadCap]
	}
	return strings.TrimSpace(string(collected))
}
