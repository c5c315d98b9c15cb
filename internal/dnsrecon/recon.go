package dnsrecon

import (
	"context"
	"fmt"
	"log"
	"math"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/sync/semaphore"
)

const (
	defaultServer   = "8.8.8.8:53"
	defaultInFlight = 16
	queryTimeout    = 5 * time.Second
)

// srvServices is the fixed probe set prefixed onto the target domain.
var srvServices = []struct {
	service string
	proto   string
}{
	{"http", "tcp"},
	{"https", "tcp"},
	{"ftp", "tcp"},
	{"ldap", "tcp"},
}

// lookuper is the slice of *net.Resolver the recon depends on; tests
// substitute a stub.
type lookuper interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
	LookupTXT(ctx context.Context, name string) ([]string, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
	LookupSRV(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)
}

type exchangeFunc func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error)

type transferFunc func(domain, addr string) (int, error)

// Recon enumerates a domain's DNS footprint: the standard record types
// in parallel, a fixed SRV probe set, a reverse lookup, and the zone
// transfer and DNSSEC posture checks. Every individual query is fault
// tolerant; Run never fails.
type Recon struct {
	resolver lookuper
	exchange exchangeFunc
	transfer transferFunc
	server   string
	inFlight int64
	now      func() time.Time
}

// New returns a Recon backed by the system resolver for standard record
// types and a direct DNS client for SOA, DNSKEY and AXFR.
func New() *Recon {
	client := &dns.Client{Timeout: queryTimeout}
	return &Recon{
		resolver: net.DefaultResolver,
		exchange: func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
			resp, _, err := client.ExchangeContext(ctx, m, addr)
			return resp, err
		},
		transfer: axfr,
		server:   defaultServer,
		inFlight: defaultInFlight,
	}
}

func (r *Recon) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Run performs the full reconnaissance for one domain. Record-type
// queries run concurrently under a weighted semaphore; each goroutine
// owns one result slot, so the merge needs no locking.
func (r *Recon) Run(ctx context.Context, rawDomain string) Result {
	start := r.clock()
	domain := Normalize(rawDomain)

	queries := r.queries(domain)
	slots := make([]*DNSRecord, len(queries))
	sem := semaphore.NewWeighted(r.inFlight)

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, run func(context.Context) *DNSRecord) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)
			slots[i] = run(ctx)
		}(i, q)
	}
	wg.Wait()

	records := make([]DNSRecord, 0, len(slots)+1)
	for _, rec := range slots {
		if rec != nil && len(rec.Value) > 0 {
			records = append(records, *rec)
		}
	}

	if a := findRecord(records, "A"); a != nil {
		if ptr := r.lookupPTR(ctx, a.Value[0]); ptr != nil {
			records = append(records, *ptr)
		}
	}

	result := Result{
		Domain:       domain,
		TotalRecords: len(records),
		Records:      records,
	}

	if ns := findRecord(records, "NS"); ns != nil {
		result.NameServers = ns.Value
	}
	if mx := findRecord(records, "MX"); mx != nil {
		result.MailServers = mx.Value
	}
	result.ZoneTransfer = r.checkZoneTransfer(domain, result.NameServers)
	result.DNSSEC = r.checkDNSSEC(ctx, domain)
	result.ScanDurationSeconds = int(math.Round(r.clock().Sub(start).Seconds()))
	return result
}

func (r *Recon) queries(domain string) []func(context.Context) *DNSRecord {
	qs := []func(context.Context) *DNSRecord{
		func(ctx context.Context) *DNSRecord { return r.lookupA(ctx, domain) },
		func(ctx context.Context) *DNSRecord { return r.lookupAAAA(ctx, domain) },
		func(ctx context.Context) *DNSRecord { return r.lookupMX(ctx, domain) },
		func(ctx context.Context) *DNSRecord { return r.lookupNS(ctx, domain) },
		func(ctx context.Context) *DNSRecord { return r.lookupTXT(ctx, domain) },
		func(ctx context.Context) *DNSRecord { return r.lookupCNAME(ctx, domain) },
		func(ctx context.Context) *DNSRecord { return r.lookupSOA(ctx, domain) },
	}
	for _, srv := range srvServices {
		srv := srv
		qs = append(qs, func(ctx context.Context) *DNSRecord {
			return r.lookupSRVSet(ctx, domain, srv.service, srv.proto)
		})
	}
	return qs
}

func (r *Recon) lookupA(ctx context.Context, domain string) *DNSRecord {
	ips, err := r.resolver.LookupIP(ctx, "ip4", domain)
	if err != nil {
		log.Printf("A lookup failed for %s: %v", domain, err)
		return nil
	}
	values := make([]string, 0, len(ips))
	for _, ip := range ips {
		values = append(values, ip.String())
	}
	return &DNSRecord{Type: "A", Name: domain, Value: values}
}

func (r *Recon) lookupAAAA(ctx context.Context, domain string) *DNSRecord {
	ips, err := r.resolver.LookupIP(ctx, "ip6", domain)
	if err != nil {
		log.Printf("AAAA lookup failed for %s: %v", domain, err)
		return nil
	}
	values := make([]string, 0, len(ips))
	for _, ip := range ips {
		values = append(values, ip.String())
	}
	return &DNSRecord{Type: "AAAA", Name: domain, Value: values}
}

func (r *Recon) lookupMX(ctx context.Context, domain string) *DNSRecord {
	mxs, err := r.resolver.LookupMX(ctx, domain)
	if err != nil {
		log.Printf("MX lookup failed for %s: %v", domain, err)
		return nil
	}
	values := make([]string, 0, len(mxs))
	for _, mx := range mxs {
		values = append(values, strings.TrimSuffix(mx.Host, "."))
	}
	return &DNSRecord{Type: "MX", Name: domain, Value: values}
}

func (r *Recon) lookupNS(ctx context.Context, domain string) *DNSRecord {
	nss, err := r.resolver.LookupNS(ctx, domain)
	if err != nil {
		log.Printf("NS lookup failed for %s: %v", domain, err)
		return nil
	}
	values := make([]string, 0, len(nss))
	for _, ns := range nss {
		values = append(values, strings.TrimSuffix(ns.Host, "."))
	}
	return &DNSRecord{Type: "NS", Name: domain, Value: values}
}

func (r *Recon) lookupTXT(ctx context.Context, domain string) *DNSRecord {
	txts, err := r.resolver.LookupTXT(ctx, domain)
	if err != nil {
		log.Printf("TXT lookup failed for %s: %v", domain, err)
		return nil
	}
	return &DNSRecord{Type: "TXT", Name: domain, Value: txts}
}

func (r *Recon) lookupCNAME(ctx context.Context, domain string) *DNSRecord {
	cname, err := r.resolver.LookupCNAME(ctx, domain)
	if err != nil {
		log.Printf("CNAME lookup failed for %s: %v", domain, err)
		return nil
	}
	cname = strings.TrimSuffix(cname, ".")
	// the resolver echoes the queried name back when no CNAME exists
	if strings.EqualFold(cname, domain) {
		return nil
	}
	return &DNSRecord{Type: "CNAME", Name: domain, Value: []string{cname}}
}

func (r *Recon) lookupSOA(ctx context.Context, domain string) *DNSRecord {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeSOA)
	resp, err := r.exchange(ctx, m, r.server)
	if err != nil || resp == nil {
		log.Printf("SOA lookup failed for %s: %v", domain, err)
		return nil
	}
	for _, ans := range resp.Answer {
		if soa, ok := ans.(*dns.SOA); ok {
			value := fmt.Sprintf("%s %s serial=%d refresh=%d",
				strings.TrimSuffix(soa.Ns, "."), strings.TrimSuffix(soa.Mbox, "."),
				soa.Serial, soa.Refresh)
			return &DNSRecord{Type: "SOA", Name: domain, Value: []string{value}, TTL: soa.Hdr.Ttl}
		}
	}
	return nil
}

func (r *Recon) lookupSRVSet(ctx context.Context, domain, service, proto string) *DNSRecord {
	_, srvs, err := r.resolver.LookupSRV(ctx, service, proto, domain)
	if err != nil {
		return nil
	}
	values := make([]string, 0, len(srvs))
	for _, srv := range srvs {
		values = append(values, fmt.Sprintf("%s:%d", strings.TrimSuffix(srv.Target, "."), srv.Port))
	}
	return &DNSRecord{
		Type:  "SRV",
		Name:  fmt.Sprintf("_%s._%s.%s", service, proto, domain),
		Value: values,
	}
}

func (r *Recon) lookupPTR(ctx context.Context, addr string) *DNSRecord {
	ptrs, err := r.resolver.LookupAddr(ctx, addr)
	if err != nil {
		log.Printf("PTR lookup failed for %s: %v", addr, err)
		return nil
	}
	values := make([]string, 0, len(ptrs))
	for _, ptr := range ptrs {
		values = append(values, strings.TrimSuffix(ptr, "."))
	}
	if len(values) == 0 {
		return nil
	}
	return &DNSRecord{Type: "PTR", Name: addr, Value: values}
}

// checkZoneTransfer attempts an AXFR against each authoritative
// nameserver. Refusal everywhere is the expected posture; any server
// handing over records is reported as a finding.
func (r *Recon) checkZoneTransfer(domain string, nameServers []string) ZoneTransferStatus {
	status := ZoneTransferStatus{Attempted: true}
	if len(nameServers) == 0 {
		status.Message = "no authoritative nameservers resolved"
		return status
	}
	for _, ns := range nameServers {
		host := strings.TrimSuffix(ns, ".")
		count, err := r.transfer(domain, net.JoinHostPort(host, "53"))
		if err != nil {
			continue
		}
		if count > 0 {
			status.Successful = true
			status.Message = fmt.Sprintf(
				"nameserver %s allowed a full zone transfer (%d records); the entire zone is exposed",
				host, count)
			return status
		}
	}
	status.Message = "all nameservers refused the transfer"
	return status
}

// checkDNSSEC asks for the zone's DNSKEY records with the DO bit set and
// reports the algorithms in use when any exist.
func (r *Recon) checkDNSSEC(ctx context.Context, domain string) DNSSECStatus {
	m := new(dns.Msg)
	m.SetEdns0(4096, true)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeDNSKEY)

	resp, err := r.exchange(ctx, m, r.server)
	if err != nil || resp == nil {
		log.Printf("DNSKEY lookup failed for %s: %v", domain, err)
		return DNSSECStatus{}
	}

	var status DNSSECStatus
	seen := make(map[string]struct{})
	for _, ans := range resp.Answer {
		key, ok := ans.(*dns.DNSKEY)
		if !ok {
			continue
		}
		status.Enabled = true
		name, ok := dns.AlgorithmToString[key.Algorithm]
		if !ok {
			name = fmt.Sprintf("ALG%d", key.Algorithm)
		}
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			status.Algorithms = append(status.Algorithms, name)
		}
	}
	return status
}

func axfr(domain, addr string) (int, error) {
	m := new(dns.Msg)
	m.SetAxfr(dns.Fqdn(domain))
	t := new(dns.Transfer)

	ch, err := t.In(m, addr)
	if err != nil {
		return 0, err
	}
	count := 0
	for env := range ch {
		if env.Error != nil {
			return count, env.Error
		}
		count += len(env.RR)
	}
	return count, nil
}

func findRecord(records []DNSRecord, typ string) *DNSRecord {
	for i := range records {
		if records[i].Type == typ {
			return &records[i]
		}
	}
	return nil
}
