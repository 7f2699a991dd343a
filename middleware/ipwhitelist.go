package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// IPWhitelist only lets through clients matching one of entries, each a
// plain IP or a CIDR range. An empty list allows everyone. Malformed
// entries are ignored.
func IPWhitelist(entries []string) gin.HandlerFunc {
	exact := make(map[string]bool)
	var nets []*net.IPNet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if strings.Contains(e, "/") {
			if _, n, err := net.ParseCIDR(e); err == nil {
				nets = append(nets, n)
			}
			continue
		}
		if ip := net.ParseIP(e); ip != nil {
			exact[ip.String()] = true
		}
	}
	open := len(exact) == 0 && len(nets) == 0

	return func(c *gin.Context) {
		if open {
			c.Next()
			return
		}
		ip := net.ParseIP(c.ClientIP())
		if ip != nil {
			if exact[ip.String()] {
				c.Next()
				return
			}
			for _, n := range nets {
				if n.Contains(ip) {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}
