package server

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/giygas/iso639-converter/logging"
	"github.com/giygas/iso639-converter/metrics"
	"github.com/juju/ratelimit"
)

// The status endpoints take no input, so anything larger is rejected.
const (
	maxRequestBody = 1024
	maxHeaderSize  = 8 * 1024
)

// Token bucket settings per client.
const (
	bucketRate     = 3
	bucketCapacity = 300
)

// RequestSizeMiddleware limits the size of request headers and body
func RequestSizeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxRequestBody {
			logging.Warn("Request body too large",
				"content_length", r.ContentLength,
				"max_allowed", maxRequestBody,
				"remote_addr", r.RemoteAddr)

			respondWithError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body too large. Maximum allowed size is %d bytes", maxRequestBody))
			return
		}

		// Rough estimate of the header size
		headerSize := 0
		for key, values := range r.Header {
			headerSize += len(key)
			for _, value := range values {
				headerSize += len(value)
			}
		}

		if headerSize > maxHeaderSize {
			logging.Warn("Request headers too large",
				"header_size", headerSize,
				"max_allowed", maxHeaderSize,
				"remote_addr", r.RemoteAddr)

			respondWithError(w, http.StatusRequestHeaderFieldsTooLarge,
				fmt.Sprintf("Request headers too large. Maximum allowed size is %d bytes", maxHeaderSize))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimiter manages per-client token buckets
type RateLimiter struct {
	clients map[string]*ratelimit.Bucket
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
	started sync.Once
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*ratelimit.Bucket),
		stop:    make(chan struct{}),
	}
}

func (rl *RateLimiter) getBucket(client string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[client]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[client]; !exists {
			bucket = ratelimit.NewBucketWithRate(bucketRate, bucketCapacity)
			rl.clients[client] = bucket
			metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
		}
		rl.mu.Unlock()
	}

	return bucket
}

// cleanup removes clients whose bucket has refilled, returning how many were removed
func (rl *RateLimiter) cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for client, bucket := range rl.clients {
		if bucket.Available() == bucket.Capacity() {
			delete(rl.clients, client)
			removed++
		}
	}
	metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
	return removed
}

// StartCleanup removes idle clients every five minutes until Stop
func (rl *RateLimiter) StartCleanup() {
	rl.started.Do(func() {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()

			for {
				select {
				case <-rl.stop:
					return
				case <-ticker.C:
					rl.cleanup()
				}
			}
		}()
	})
}

// Stop ends the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// getTokenCost returns the tokens a request to path consumes
func getTokenCost(path string) int64 {
	switch path {
	case "/health":
		return 5
	case "/metrics":
		return 10
	default:
		return 20
	}
}

// clientKey identifies the client by host, ignoring the source port
func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// Handler implements rate limiting using token buckets
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket := rl.getBucket(clientKey(r.RemoteAddr))
		tokenCost := getTokenCost(r.URL.Path)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(bucketCapacity))
		w.Header().Set("X-RateLimit-Rate", strconv.Itoa(bucketRate))

		if bucket.TakeAvailable(tokenCost) < tokenCost {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		next.ServeHTTP(w, r)
	})
}
