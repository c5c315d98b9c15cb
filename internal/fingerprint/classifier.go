package fingerprint

import (
	"fmt"
	"regexp"
	"strings"
)

// Identification is the classifier's verdict for a single open port.
type Identification struct {
	Service         string
	Version         string
	CPE             string
	Confidence      int
	Vulnerabilities []Vulnerability
}

// Rule matches one protocol family (or one product within a family)
// against a case-folded banner. Rules are evaluated in order, so
// product-specific rules must precede their generic family rule.
type Rule struct {
	Service    string
	Match      func(banner string) bool
	Version    *regexp.Regexp // capture group 1 = version, applied to the raw banner
	CPE        string         // "vendor:product", expanded to cpe:/a:vendor:product:version
	Confidence int
}

// Classifier turns (port, banner) pairs into service identifications.
// The rule list, signature table and vulnerability table are all
// injectable so new protocols can be added without touching scan logic.
type Classifier struct {
	rules []Rule
	sigs  map[int]Signature
	vulns map[vulnKey][]Vulnerability
}

// New returns a Classifier loaded with the built-in rule set, port
// signature table and version-exact vulnerability table.
func New() *Classifier {
	return &Classifier{
		rules: defaultRules,
		sigs:  defaultSignatures,
		vulns: defaultVulns,
	}
}

// NewWithRules returns a Classifier using a caller-supplied rule list in
// place of the built-in one. The signature and vulnerability tables stay.
func NewWithRules(rules []Rule) *Classifier {
	c := New()
	c.rules = rules
	return c
}

// Classify identifies the service behind an open port. With no banner it
// falls back to the port signature table (confidence 70) or Unknown
// (confidence 40). A banner is matched against the ordered rule list; a
// hit raises confidence, may extract a version, derives a CPE and
// consults the vulnerability table. Classify never fails.
func (c *Classifier) Classify(port int, banner string) Identification {
	id := Identification{Service: "Unknown", Confidence: 40}
	if sig, ok := c.sigs[port]; ok {
		id.Service = sig.Service
		id.Confidence = 70
	}

	banner = strings.TrimSpace(banner)
	if banner == "" {
		return id
	}

	folded := strings.ToLower(banner)
	for _, rule := range c.rules {
		if !rule.Match(folded) {
			continue
		}
		id.Service = rule.Service
		id.Confidence = rule.Confidence
		if rule.Version != nil {
			if m := rule.Version.FindStringSubmatch(banner); len(m) > 1 {
				id.Version = m[1]
			}
		}
		if rule.CPE != "" {
			id.CPE = fmt.Sprintf("cpe:/a:%s", rule.CPE)
			if id.Version != "" {
				id.CPE = fmt.Sprintf("cpe:/a:%s:%s", rule.CPE, id.Version)
			}
		}
		if id.Version != "" {
			id.Vulnerabilities = c.vulns[vulnKey{id.Service, id.Version}]
		}
		return id
	}

	return id
}

func contains(substrs ...string) func(string) bool {
	return func(banner string) bool {
		for _, s := range substrs {
			if strings.Contains(banner, s) {
				return true
			}
		}
		return false
	}
}

func containsAll(substrs ...string) func(string) bool {
	return func(banner string) bool {
		for _, s := range substrs {
			if !strings.Contains(banner, s) {
				return false
			}
		}
		return true
	}
}

// defaultRules is evaluated top to bottom; first match wins.
var defaultRules = []Rule{
	// SSH
	{
		Service:    "OpenSSH",
		Match:      containsAll("ssh-", "openssh"),
		Version:    regexp.MustCompile(`(?i)openssh[_-]([0-9][0-9a-z.]*)`),
		CPE:        "openbsd:openssh",
		Confidence: 98,
	},
	{
		Service:    "SSH",
		Match:      contains("ssh-"),
		Version:    regexp.MustCompile(`SSH-([0-9.]+)`),
		Confidence: 90,
	},

	// HTTP family
	{
		Service:    "Apache httpd",
		Match:      contains("apache"),
		Version:    regexp.MustCompile(`(?i)apache/([0-9][0-9.]*)`),
		CPE:        "apache:http_server",
		Confidence: 95,
	},
	{
		Service:    "nginx",
		Match:      contains("nginx"),
		Version:    regexp.MustCompile(`(?i)nginx/([0-9][0-9.]*)`),
		CPE:        "nginx:nginx",
		Confidence: 95,
	},
	{
		Service:    "Microsoft IIS",
		Match:      contains("microsoft-iis"),
		Version:    regexp.MustCompile(`(?i)microsoft-iis/([0-9][0-9.]*)`),
		CPE:        "microsoft:iis",
		Confidence: 95,
	},
	{
		Service:    "HTTP",
		Match:      contains("http/1.", "http/2"),
		Confidence: 85,
	},

	// FTP family
	{
		Service:    "vsftpd",
		Match:      contains("vsftpd"),
		Version:    regexp.MustCompile(`(?i)vsftpd ([0-9][0-9.]*)`),
		CPE:        "vsftpd:vsftpd",
		Confidence: 97,
	},
	{
		Service:    "ProFTPD",
		Match:      contains("proftpd"),
		Version:    regexp.MustCompile(`(?i)proftpd ([0-9][0-9a-z.]*)`),
		CPE:        "proftpd:proftpd",
		Confidence: 97,
	},
	{
		Service:    "FTP",
		Match:      containsAll("220", "ftp"),
		Confidence: 85,
	},

	// SMTP family
	{
		Service:    "Postfix",
		Match:      contains("postfix"),
		CPE:        "postfix:postfix",
		Confidence: 95,
	},
	{
		Service:    "Sendmail",
		Match:      contains("sendmail"),
		Version:    regexp.MustCompile(`(?i)sendmail ([0-9][0-9.]*)`),
		CPE:        "sendmail:sendmail",
		Confidence: 95,
	},
	{
		Service:    "Exim",
		Match:      contains("exim"),
		Version:    regexp.MustCompile(`(?i)exim ([0-9][0-9.]*)`),
		CPE:        "exim:exim",
		Confidence: 95,
	},
	{
		Service:    "SMTP",
		Match:      contains("smtp", "esmtp"),
		Confidence: 85,
	},

	// Databases and caches
	{
		Service:    "MySQL",
		Match:      contains("mysql", "mariadb"),
		Version:    regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`),
		CPE:        "oracle:mysql",
		Confidence: 92,
	},
	{
		Service:    "PostgreSQL",
		Match:      contains("postgresql", "postgres"),
		Version:    regexp.MustCompile(`([0-9]+\.[0-9]+)`),
		CPE:        "postgresql:postgresql",
		Confidence: 92,
	},
	{
		Service:    "Redis",
		Match:      contains("redis", "-err unknown command"),
		Version:    regexp.MustCompile(`(?i)redis_version:([0-9][0-9.]*)`),
		CPE:        "redis:redis",
		Confidence: 90,
	},
	{
		Service:    "MongoDB",
		Match:      contains("mongodb"),
		CPE:        "mongodb:mongodb",
		Confidence: 90,
	},

	// Windows services
	{
		Service:    "SMB",
		Match:      contains("smb", "samba"),
		CPE:        "microsoft:windows",
		Confidence: 85,
	},
	{
		Service:    "RDP",
		Match:      contains("rdp", "mstshash"),
		CPE:        "microsoft:remote_desktop_services",
		Confidence: 85,
	},
}
