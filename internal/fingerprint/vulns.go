package fingerprint

// Vulnerability describes a known issue tied to an exact product version.
type Vulnerability struct {
	ID          string `json:"id"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type vulnKey struct {
	Service string
	Version string
}

// defaultVulns is the version-exact advisory table consulted after a rule
// extracts a version. Keys are (service, version) pairs, matching the
// service name the rule reports.
var defaultVulns = map[vulnKey][]Vulnerability{
	{"vsftpd", "2.3.4"}: {
		{ID: "CVE-2011-2523", Severity: "CRITICAL", Description: "vsftpd 2.3.4 was distributed with a backdoor that opens a shell on port 6200"},
	},
	{"ProFTPD", "1.3.5"}: {
		{ID: "CVE-2015-3306", Severity: "CRITICAL", Description: "ProFTPD 1.3.5 mod_copy allows unauthenticated remote file read and write"},
	},
	{"OpenSSH", "7.6"}: {
		{ID: "CVE-2018-15473", Severity: "MEDIUM", Description: "OpenSSH 7.6 username enumeration via malformed authentication packets"},
	},
	{"Apache httpd", "2.4.49"}: {
		{ID: "CVE-2021-41773", Severity: "CRITICAL", Description: "Apache 2.4.49 path traversal and remote code execution"},
	},
	{"Apache httpd", "2.4.50"}: {
		{ID: "CVE-2021-42013", Severity: "CRITICAL", Description: "Apache 2.4.50 incomplete fix for CVE-2021-41773 path traversal"},
	},
	{"Exim", "4.87"}: {
		{ID: "CVE-2019-10149", Severity: "CRITICAL", Description: "Exim 4.87-4.91 remote command execution in deliver_message"},
	},
}
