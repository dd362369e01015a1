package handlers

import (
	"net/http"
	"net/url"
	"time"

	"motor_dashboard/internal/upstream"

	"github.com/gin-gonic/gin"
)

// sessionMiddleware makes the browser's session available to upstream calls
// and live channels made on behalf of this request.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	ctx := upstream.WithSession(c.Request.Context(), c.Request.Header)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.log.Debugw("http_request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"latency", time.Since(start),
	)
}

// checkOrigin accepts same-host pages, non-browser clients and the configured
// origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	return h.originAllowed(origin)
}

// originAllowed reports whether origin is in the configured list. An empty
// list allows no cross-origin callers.
func (h *Handler) originAllowed(origin string) bool {
	for _, o := range h.allowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
