package dnsrecon

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

type reconRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// StartDNSRecon exposes POST /dns-recon. Authentication and rate
// limiting live upstream; the engine bounds its own queries.
func StartDNSRecon(port string) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	recon := New()

	router.POST("/dns-recon", func(c *gin.Context) {
		var req reconRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "Invalid request (need {\"domain\": \"...\"})"})
			return
		}
		if len(req.Domain) > 253 {
			c.JSON(400, gin.H{"error": "Domain too long"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
		defer cancel()

		log.Printf("Starting DNS recon for %s", req.Domain)
		c.JSON(200, recon.Run(ctx, req.Domain))
	})

	log.Printf("DNS recon service running on port %s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start DNS recon service: ", err)
	}
}
