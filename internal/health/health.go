package health

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// HealthStatus represents the health status of a service
type HealthStatus struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message,omitempty"`
}

// SystemHealth represents overall system health
type SystemHealth struct {
	Status   string         `json:"status"`
	Services []HealthStatus `json:"services"`
	Uptime   string         `json:"uptime"`
}

var startTime = time.Now()

// StartHealthCheck starts the health check endpoint
func StartHealthCheck(port string) {
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		health := SystemHealth{
			Status:   "healthy",
			Uptime:   time.Since(startTime).String(),
			Services: []HealthStatus{},
		}

		services := []string{"service-detector", "dns-recon"}
		for _, service := range services {
			health.Services = append(health.Services, HealthStatus{
				Service:   service,
				Status:    "running",
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(health)
	})

	log.Printf("Health check endpoint running on port %s\n", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Failed to start health check server: %v\n", err)
	}
}
