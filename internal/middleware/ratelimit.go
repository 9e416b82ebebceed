package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"bizrecords/internal/model"
)

type clientLimiter struct {
	read     *rate.Limiter
	write    *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps two token buckets per client: one for reads and a
// stricter one for requests that change the trash.
type RateLimitMiddleware struct {
	readRPM  int
	writeRPM int
	mu       sync.Mutex
	clients  map[string]*clientLimiter
}

func NewRateLimitMiddleware(readRPM int, writeRPM int) *RateLimitMiddleware {
	if readRPM <= 0 {
		readRPM = 100
	}
	if writeRPM <= 0 {
		writeRPM = 30
	}

	return &RateLimitMiddleware{
		readRPM:  readRPM,
		writeRPM: writeRPM,
		clients:  map[string]*clientLimiter{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// websocket sessions are long-lived
		if strings.HasPrefix(strings.ToLower(r.URL.Path), "/api/v1/ws") {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := ClientIP(r)
		limiter := m.getLimiter(clientIP)

		target := limiter.read
		if isMutating(r.Method) {
			target = limiter.write
		}

		if !target.Allow() {
			w.Header().Set("Retry-After", "60")
			WriteJSON(w, http.StatusTooManyRequests, model.ErrorResponse("RATE_LIMITED", "Too many requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (m *RateLimitMiddleware) getLimiter(clientIP string) *clientLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limiter, exists := m.clients[clientIP]; exists {
		limiter.lastSeen = time.Now()
		m.gcLocked()
		return limiter
	}

	read := rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.readRPM)), m.readRPM)
	write := rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.writeRPM)), m.writeRPM)
	created := &clientLimiter{read: read, write: write, lastSeen: time.Now()}
	m.clients[clientIP] = created
	m.gcLocked()

	return created
}

func (m *RateLimitMiddleware) gcLocked() {
	if len(m.clients) < 1000 {
		return
	}

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, limiter := range m.clients {
		if limiter.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}
}

// ClientIP resolves the caller address used for rate limiting, access logs
// and the actor recorded on trash records.
func ClientIP(r *http.Request) string {
	forwarded, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	if first := strings.TrimSpace(forwarded); first != "" {
		return first
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}

	return r.RemoteAddr
}
