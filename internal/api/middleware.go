package api

import (
	"bufio"
	"crypto/subtle"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"parkinson-insight/internal/common"
)

// Routes reachable without the API key and outside the rate limit. The
// browser websocket API cannot set custom headers, so the live feed is
// open as well.
var publicRoutes = map[string]bool{
	"/health":    true,
	"/metrics":   true,
	"/ws":        true,
	"/dashboard": true,
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// statusRecorder captures the response code. It forwards Hijack so
// websocket upgrades still work behind it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// observe logs and counts every routed request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := routeTemplate(r)
		if s.metrics != nil {
			s.metrics.HTTPRequestInc(route, rec.status)
		}
		log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.APIKey == "" || publicRoutes[routeTemplate(r)] {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(common.APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.APIKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || publicRoutes[routeTemplate(r)] {
			next.ServeHTTP(w, r)
			return
		}

		if !s.limiter.Allow() {
			if s.metrics != nil {
				s.metrics.RateLimitedInc()
			}
			w.Header().Set("Retry-After", strconv.Itoa(s.retryAfterSeconds()))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds is how long until the limiter frees a token, rounded
// up to whole seconds and at least one.
func (s *Server) retryAfterSeconds() int {
	r := s.limiter.Reserve()
	if !r.OK() {
		return 1
	}
	delay := r.Delay()
	r.Cancel()

	secs := int(math.Ceil(delay.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
