package servicedetect

import (
	"github.com/Bihan-Banerjee/Cyber-X-sub000/internal/fingerprint"
	"github.com/Bihan-Banerjee/Cyber-X-sub000/internal/webfinger"
)

// ServiceInfo describes one confirmed-open port. It is built once by the
// worker that owns the port and never mutated afterwards.
type ServiceInfo struct {
	Port            int                         `json:"port"`
	Protocol        string                      `json:"protocol"`
	Service         string                      `json:"service"`
	Version         string                      `json:"version,omitempty"`
	Banner          string                      `json:"banner,omitempty"`
	CPE             string                      `json:"cpe,omitempty"`
	Confidence      int                         `json:"confidence"`
	Vulnerabilities []fingerprint.Vulnerability `json:"vulnerabilities,omitempty"`
	Technologies    []string                    `json:"technologies,omitempty"`
	TLS             *webfinger.TLSInfo          `json:"tls,omitempty"`
}

// ServiceDetectionResult is the final aggregate for one scan request.
type ServiceDetectionResult struct {
	Target              string        `json:"target"`
	TotalServices       int           `json:"totalServices"`
	Services            []ServiceInfo `json:"services"`
	ScanDurationSeconds int           `json:"scanDurationSeconds"`
}
