package app

import (
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/rest"
	"golang.org/x/time/rate"
)

const clientIdleExpiry = 10 * time.Minute

// ClientRateLimiter keeps one token bucket per client address. Buckets of
// idle clients expire.
type ClientRateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *cache.Cache
}

// NewClientRateLimiter allows rps requests per second per client with the
// given burst. A non-positive rps disables limiting.
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientRateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: cache.New(clientIdleExpiry, time.Minute),
	}
}

func (l *ClientRateLimiter) Allow(client string) bool {
	if l.limit <= 0 {
		return true
	}
	if limiter, found := l.clients.Get(client); found {
		l.clients.SetDefault(client, limiter)
		return limiter.(*rate.Limiter).Allow()
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.clients.SetDefault(client, limiter)
	return limiter.Allow()
}

func (l *ClientRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddress(r)
		if !l.Allow(client) {
			log.Warnf("Rate limit exceeded: %s %s from %s", r.Method, r.URL.Path, client)
			rest.WriteError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
