package main

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/Bihan-Banerjee/Cyber-X-sub000/internal/dnsrecon"
	"github.com/Bihan-Banerjee/Cyber-X-sub000/internal/health"
	"github.com/Bihan-Banerjee/Cyber-X-sub000/internal/servicedetect"
)

func startServiceWithRetry(name string, start func(string), port string) {
	maxRetries := 3
	retryDelay := time.Second * 5

	for attempt := 1; attempt <= maxRetries; attempt++ {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Service %s crashed on attempt %d: %v\n", name, attempt, r)
					if attempt < maxRetries {
						log.Printf("Retrying %s service in %v...\n", name, retryDelay)
						time.Sleep(retryDelay)
					} else {
						log.Printf("Service %s failed after %d attempts, giving up\n", name, maxRetries)
					}
				}
			}()

			log.Printf("Starting %s service on port %s (attempt %d)\n", name, port, attempt)
			start(port)
		}()

		// If we get here without panic, the service started successfully
		log.Printf("Service %s started successfully\n", name)
		return
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	fmt.Println("Starting reconnaissance engine services...")

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		startServiceWithRetry("Service Detector", servicedetect.StartServiceDetector, envOr("SERVICE_SCAN_PORT", "8084"))
	}()
	go func() {
		defer wg.Done()
		startServiceWithRetry("DNS Recon", dnsrecon.StartDNSRecon, envOr("DNS_RECON_PORT", "8089"))
	}()
	go func() {
		defer wg.Done()
		startServiceWithRetry("Health Check", health.StartHealthCheck, envOr("HEALTH_PORT", "8090"))
	}()

	fmt.Println("All services started. Press Ctrl+C to stop.")
	wg.Wait()
}
