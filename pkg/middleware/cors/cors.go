package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders = "Content-Type, X-Requested-With, X-Request-ID"
	exposeHeader = "X-Request-ID, Content-Disposition"
	preflightTTL = 10 * time.Minute
)

type policy struct {
	any     bool
	origins map[string]struct{}
}

func newPolicy(allowed []string) policy {
	p := policy{any: len(allowed) == 0, origins: make(map[string]struct{}, len(allowed))}
	for _, origin := range allowed {
		if origin == "*" {
			p.any = true
			continue
		}
		p.origins[normalize(origin)] = struct{}{}
	}
	return p
}

func (p policy) allows(origin string) bool {
	if p.any {
		return true
	}
	_, ok := p.origins[normalize(origin)]
	return ok
}

func normalize(origin string) string {
	return strings.ToLower(strings.TrimRight(origin, "/"))
}

// New lets the archive web front end call the gateway from the listed origins.
// An empty list or "*" allows any origin. Preflight requests end here with 204.
func New(allowedOrigins []string) gin.HandlerFunc {
	p := newPolicy(allowedOrigins)
	maxAge := strconv.Itoa(int(preflightTTL.Seconds()))

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if origin != "" && p.allows(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", exposeHeader)
		}

		if c.Request.Method == http.MethodOptions && origin != "" {
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
