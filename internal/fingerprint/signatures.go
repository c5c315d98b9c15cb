package fingerprint

// Signature is the static fallback identity for a well-known port, used
// when a service does not produce a banner worth matching.
type Signature struct {
	Service  string
	Protocol string // "tcp" | "udp"
}

// defaultSignatures maps well-known ports to their registered service.
var defaultSignatures = map[int]Signature{
	20:    {"FTP Data", "tcp"},
	21:    {"FTP", "tcp"},
	22:    {"SSH", "tcp"},
	23:    {"Telnet", "tcp"},
	25:    {"SMTP", "tcp"},
	53:    {"DNS", "tcp"},
	80:    {"HTTP", "tcp"},
	110:   {"POP3", "tcp"},
	111:   {"RPCBind", "tcp"},
	123:   {"NTP", "udp"},
	135:   {"MSRPC", "tcp"},
	139:   {"NetBIOS", "tcp"},
	143:   {"IMAP", "tcp"},
	161:   {"SNMP", "udp"},
	389:   {"LDAP", "tcp"},
	443:   {"HTTPS", "tcp"},
	445:   {"SMB", "tcp"},
	465:   {"SMTPS", "tcp"},
	587:   {"SMTP Submission", "tcp"},
	636:   {"LDAPS", "tcp"},
	993:   {"IMAPS", "tcp"},
	995:   {"POP3S", "tcp"},
	1433:  {"MSSQL", "tcp"},
	1521:  {"Oracle", "tcp"},
	2049:  {"NFS", "tcp"},
	3306:  {"MySQL", "tcp"},
	3389:  {"RDP", "tcp"},
	5432:  {"PostgreSQL", "tcp"},
	5900:  {"VNC", "tcp"},
	6379:  {"Redis", "tcp"},
	8080:  {"HTTP Proxy", "tcp"},
	8443:  {"HTTPS Alt", "tcp"},
	9200:  {"Elasticsearch", "tcp"},
	11211: {"Memcached", "tcp"},
	27017: {"MongoDB", "tcp"},
}
