package servicedetect

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Bihan-Banerjee/Cyber-X-sub000/internal/ports"
	"github.com/Bihan-Banerjee/Cyber-X-sub000/internal/webfinger"
)

// newEnricher wires up wappalyzer-based technology enrichment; when its
// fingerprint data cannot be loaded the scan simply runs without it.
func newEnricher() Enricher {
	f, err := webfinger.New()
	if err != nil {
		log.Printf("Web fingerprinting disabled: %v", err)
		return nil
	}
	return f
}

// ScanRequest is the wire format for a service detection request.
type ScanRequest struct {
	Target             string `json:"target"`
	Ports              string `json:"ports,omitempty"`
	TimeoutMs          int    `json:"timeoutMs,omitempty"`
	Concurrency        int    `json:"concurrency,omitempty"`
	MaxProbesPerSecond int    `json:"maxProbesPerSecond,omitempty"`
}

const defaultPortSpec = "1-1024"

// StartServiceDetector exposes POST /service-scan. Upstream owns
// authentication and rate limiting; this handler only rejects requests
// it cannot even parse, and the engine bounds its own resource usage.
func StartServiceDetector(port string) {
	enricher := newEnricher()

	http.HandleFunc("/service-scan", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
		defer cancel()

		if r.Method != http.MethodPost {
			http.Error(w, "Only POST requests allowed", http.StatusMethodNotAllowed)
			return
		}

		var reqBody ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			http.Error(w, "Invalid JSON format", http.StatusBadRequest)
			return
		}
		if reqBody.Target == "" {
			http.Error(w, "Target is required", http.StatusBadRequest)
			return
		}
		if len(reqBody.Target) > 253 {
			http.Error(w, "Target too long", http.StatusBadRequest)
			return
		}
		if reqBody.Ports == "" {
			reqBody.Ports = defaultPortSpec
		}

		cfg := Config{
			Target:             reqBody.Target,
			Ports:              ports.Parse(reqBody.Ports),
			Timeout:            time.Duration(reqBody.TimeoutMs) * time.Millisecond,
			Concurrency:        reqBody.Concurrency,
			MaxProbesPerSecond: reqBody.MaxProbesPerSecond,
		}

		log.Printf("Starting service detection for %s (%d ports)", cfg.Target, len(cfg.Ports))

		var opts []Option
		if enricher != nil {
			opts = append(opts, WithEnricher(enricher))
		}
		result := NewScanner(cfg, opts...).Run(ctx)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	})

	log.Printf("Service detector running on port %s...\n", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Failed to start server: %v\n", err)
	}
}
