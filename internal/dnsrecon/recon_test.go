package dnsrecon

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/miekg/dns"
)

var errNoRecords = errors.New("no such host")

// stubResolver satisfies lookuper; nil function fields behave like a
// record type that does not exist.
type stubResolver struct {
	ip    func(network, host string) ([]net.IP, error)
	mx    func(name string) ([]*net.MX, error)
	ns    func(name string) ([]*net.NS, error)
	txt   func(name string) ([]string, error)
	cname func(host string) (string, error)
	addr  func(addr string) ([]string, error)
	srv   func(service, proto, name string) (string, []*net.SRV, error)
}

func (s *stubResolver) LookupIP(_ context.Context, network, host string) ([]net.IP, error) {
	if s.ip == nil {
		return nil, errNoRecords
	}
	return s.ip(network, host)
}

func (s *stubResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	if s.mx == nil {
		return nil, errNoRecords
	}
	return s.mx(name)
}

func (s *stubResolver) LookupNS(_ context.Context, name string) ([]*net.NS, error) {
	if s.ns == nil {
		return nil, errNoRecords
	}
	return s.ns(name)
}

func (s *stubResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	if s.txt == nil {
		return nil, errNoRecords
	}
	return s.txt(name)
}

func (s *stubResolver) LookupCNAME(_ context.Context, host string) (string, error) {
	if s.cname == nil {
		return "", errNoRecords
	}
	return s.cname(host)
}

func (s *stubResolver) LookupAddr(_ context.Context, addr string) ([]string, error) {
	if s.addr == nil {
		return nil, errNoRecords
	}
	return s.addr(addr)
}

func (s *stubResolver) LookupSRV(_ context.Context, service, proto, name string) (string, []*net.SRV, error) {
	if s.srv == nil {
		return "", nil, errNoRecords
	}
	return s.srv(service, proto, name)
}

func newTestRecon(resolver lookuper) *Recon {
	return &Recon{
		resolver: resolver,
		exchange: func(context.Context, *dns.Msg, string) (*dns.Msg, error) {
			return nil, errNoRecords
		},
		transfer: func(domain, addr string) (int, error) {
			return 0, errors.New("transfer refused")
		},
		server:   "stub:53",
		inFlight: defaultInFlight,
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"example.com":                      "example.com",
		"Example.COM":                      "example.com",
		"https://www.example.com/path/x":   "example.com",
		"http://example.com/":              "example.com",
		"www.example.com":                  "example.com",
		"example.com.":                     "example.com",
		"  sub.example.com  ":              "sub.example.com",
		"HTTPS://WWW.EXAMPLE.ORG/a?b=c":    "example.org",
	}
	for raw, want := range cases {
		if got := Normalize(raw); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestRunFullFootprint(t *testing.T) {
	ptrQueried := []string{}
	resolver := &stubResolver{
		ip: func(network, host string) ([]net.IP, error) {
			if network == "ip4" {
				return []net.IP{net.ParseIP("198.51.100.7"), net.ParseIP("198.51.100.8")}, nil
			}
			return nil, errNoRecords
		},
		ns: func(string) ([]*net.NS, error) {
			return []*net.NS{{Host: "ns1.example.com."}, {Host: "ns2.example.com."}}, nil
		},
		txt: func(string) ([]string, error) {
			return []string{"v=spf1 -all"}, nil
		},
		addr: func(addr string) ([]string, error) {
			ptrQueried = append(ptrQueried, addr)
			return []string{"web.example.com."}, nil
		},
		srv: func(service, proto, name string) (string, []*net.SRV, error) {
			if service == "http" {
				return "", []*net.SRV{{Target: "web.example.com.", Port: 80}}, nil
			}
			return "", nil, errNoRecords
		},
	}

	r := newTestRecon(resolver)
	result := r.Run(context.Background(), "https://www.example.com/dashboard")

	if result.Domain != "example.com" {
		t.Fatalf("domain = %q", result.Domain)
	}
	if result.TotalRecords != len(result.Records) {
		t.Fatalf("totalRecords %d != len(records) %d", result.TotalRecords, len(result.Records))
	}
	if len(result.NameServers) != 2 || result.NameServers[0] != "ns1.example.com" {
		t.Fatalf("nameServers = %v", result.NameServers)
	}
	if len(result.MailServers) != 0 {
		t.Fatalf("mailServers = %v, want empty when MX is absent", result.MailServers)
	}
	if !result.ZoneTransfer.Attempted || result.ZoneTransfer.Successful {
		t.Fatalf("zoneTransfer = %+v, want attempted and refused", result.ZoneTransfer)
	}
	if result.DNSSEC.Enabled {
		t.Fatalf("dnssec enabled without DNSKEY answers")
	}

	if len(ptrQueried) != 1 || ptrQueried[0] != "198.51.100.7" {
		t.Fatalf("PTR queried for %v, want exactly the first A record", ptrQueried)
	}
	ptr := findRecord(result.Records, "PTR")
	if ptr == nil || ptr.Value[0] != "web.example.com" {
		t.Fatalf("PTR record = %+v", ptr)
	}

	srv := findRecord(result.Records, "SRV")
	if srv == nil || srv.Name != "_http._tcp.example.com" {
		t.Fatalf("SRV record = %+v", srv)
	}
	if srv.Value[0] != "web.example.com:80" {
		t.Fatalf("SRV value = %v", srv.Value)
	}

	if mx := findRecord(result.Records, "MX"); mx != nil {
		t.Fatalf("unexpected MX record: %+v", mx)
	}
}

func TestRunAllFailuresTolerated(t *testing.T) {
	r := newTestRecon(&stubResolver{})
	result := r.Run(context.Background(), "dead.example.net")

	if result.TotalRecords != 0 || len(result.Records) != 0 {
		t.Fatalf("records = %+v, want none", result.Records)
	}
	if !result.ZoneTransfer.Attempted {
		t.Fatal("zone transfer not attempted")
	}
	if result.ZoneTransfer.Message != "no authoritative nameservers resolved" {
		t.Fatalf("message = %q", result.ZoneTransfer.Message)
	}
	if result.DNSSEC.Enabled {
		t.Fatal("dnssec enabled with no answers")
	}
}

func TestZoneTransferSuccessIsFlagged(t *testing.T) {
	resolver := &stubResolver{
		ns: func(string) ([]*net.NS, error) {
			return []*net.NS{{Host: "ns1.example.com."}}, nil
		},
	}
	r := newTestRecon(resolver)
	r.transfer = func(domain, addr string) (int, error) {
		if addr != "ns1.example.com:53" {
			t.Errorf("transfer addressed %q", addr)
		}
		return 42, nil
	}

	result := r.Run(context.Background(), "example.com")
	if !result.ZoneTransfer.Successful {
		t.Fatalf("zoneTransfer = %+v, want successful", result.ZoneTransfer)
	}
	if !strings.Contains(result.ZoneTransfer.Message, "ns1.example.com") {
		t.Fatalf("message %q does not name the nameserver", result.ZoneTransfer.Message)
	}
}

func TestDNSSECFromDNSKEYAnswers(t *testing.T) {
	r := newTestRecon(&stubResolver{})
	r.exchange = func(_ context.Context, m *dns.Msg, _ string) (*dns.Msg, error) {
		resp := new(dns.Msg)
		resp.SetReply(m)
		if m.Question[0].Qtype == dns.TypeDNSKEY {
			resp.Answer = []dns.RR{
				&dns.DNSKEY{
					Hdr:       dns.RR_Header{Name: m.Question[0].Name, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 300},
					Algorithm: dns.RSASHA256,
				},
				&dns.DNSKEY{
					Hdr:       dns.RR_Header{Name: m.Question[0].Name, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 300},
					Algorithm: dns.RSASHA256,
				},
			}
		}
		return resp, nil
	}

	status := r.checkDNSSEC(context.Background(), "example.com")
	if !status.Enabled {
		t.Fatal("dnssec not enabled despite DNSKEY answers")
	}
	if len(status.Algorithms) != 1 || status.Algorithms[0] != "RSASHA256" {
		t.Fatalf("algorithms = %v, want deduplicated [RSASHA256]", status.Algorithms)
	}
}

func TestSOARecordFromExchange(t *testing.T) {
	r := newTestRecon(&stubResolver{})
	r.exchange = func(_ context.Context, m *dns.Msg, _ string) (*dns.Msg, error) {
		resp := new(dns.Msg)
		resp.SetReply(m)
		if m.Question[0].Qtype == dns.TypeSOA {
			resp.Answer = []dns.RR{&dns.SOA{
				Hdr:     dns.RR_Header{Name: m.Question[0].Name, Rrtype: dns.TypeSOA, Class: dns.ClassINET, Ttl: 3600},
				Ns:      "ns1.example.com.",
				Mbox:    "hostmaster.example.com.",
				Serial:  2024010101,
				Refresh: 7200,
			}}
		}
		return resp, nil
	}

	rec := r.lookupSOA(context.Background(), "example.com")
	if rec == nil || rec.Type != "SOA" || rec.TTL != 3600 {
		t.Fatalf("SOA record = %+v", rec)
	}
	if !strings.Contains(rec.Value[0], "ns1.example.com") || !strings.Contains(rec.Value[0], "serial=2024010101") {
		t.Fatalf("SOA value = %q", rec.Value[0])
	}
}

func TestScanDurationRounding(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := map[time.Duration]int{
		300 * time.Millisecond:  0,
		1500 * time.Millisecond: 2,
		2400 * time.Millisecond: 2,
	}
	for elapsed, want := range cases {
		r := newTestRecon(&stubResolver{})
		times := []time.Time{base, base.Add(elapsed)}
		r.now = func() time.Time {
			next := times[0]
			if len(times) > 1 {
				times = times[1:]
			}
			return next
		}
		result := r.Run(context.Background(), "example.com")
		if result.ScanDurationSeconds != want {
			t.Errorf("elapsed %v rounded to %d, want %d", elapsed, result.ScanDurationSeconds, want)
		}
	}
}
