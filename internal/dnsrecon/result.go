package dnsrecon

import "strings"

// DNSRecord holds all values returned for one record type.
type DNSRecord struct {
	Type  string   `json:"type"`
	Name  string   `json:"name"`
	Value []string `json:"value"`
	TTL   uint32   `json:"ttl,omitempty"`
}

// ZoneTransferStatus reports the AXFR posture check. Success is a
// high-severity finding; refusal is the expected state.
type ZoneTransferStatus struct {
	Attempted  bool   `json:"attempted"`
	Successful bool   `json:"successful"`
	Message    string `json:"message,omitempty"`
}

// DNSSECStatus reports whether the zone publishes DNSKEY records.
type DNSSECStatus struct {
	Enabled    bool     `json:"enabled"`
	Algorithms []string `json:"algorithms,omitempty"`
}

// Result is the final aggregate for one DNS reconnaissance request.
type Result struct {
	Domain              string             `json:"domain"`
	TotalRecords        int                `json:"totalRecords"`
	Records             []DNSRecord        `json:"records"`
	NameServers         []string           `json:"nameServers,omitempty"`
	MailServers         []string           `json:"mailServers,omitempty"`
	ZoneTransfer        ZoneTransferStatus `json:"zoneTransfer"`
	DNSSEC              DNSSECStatus       `json:"dnssec"`
	ScanDurationSeconds int                `json:"scanDurationSeconds"`
}

// Normalize strips the decoration users paste along with a domain:
// scheme, leading www., any path, trailing dot, and case.
func Normalize(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(d, "://"); i != -1 {
		d = d[i+3:]
	}
	d = strings.TrimPrefix(d, "www.")
	if i := strings.Index(d, "/"); i != -1 {
		d = d[:i]
	}
	return strings.TrimSuffix(d, ".")
}
